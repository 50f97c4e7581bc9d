package forecast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neexbeast/skycast/internal/forecast"
)

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Clear sky", forecast.Describe(0))
	assert.Equal(t, "Thunderstorm with heavy hail", forecast.Describe(99))
	assert.Equal(t, "", forecast.Describe(42))
}

func TestIconFor(t *testing.T) {
	tests := []struct {
		code  int
		isDay bool
		want  forecast.Icon
	}{
		{0, true, forecast.IconClearDay},
		{0, false, forecast.IconClearNight},
		{2, true, forecast.IconPartlyCloudyDay},
		{1, false, forecast.IconPartlyCloudyNight},
		{3, false, forecast.IconOvercast},
		{48, true, forecast.IconFog},
		{56, true, forecast.IconDrizzle},
		{81, true, forecast.IconRain},
		{86, false, forecast.IconSnow},
		{96, true, forecast.IconThunderstorm},
		{42, false, forecast.IconClearDay},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, forecast.IconFor(tt.code, tt.isDay), "code %d day=%v", tt.code, tt.isDay)
	}
}

func TestUnitFormat(t *testing.T) {
	assert.Equal(t, "21 °C", forecast.Celsius.Format(21.4))
	assert.Equal(t, "71 °F", forecast.Fahrenheit.Format(21.4))
	assert.Equal(t, "-4 °C", forecast.Celsius.Format(-3.6))

	u, err := forecast.ParseUnit("f")
	assert.NoError(t, err)
	assert.Equal(t, forecast.Fahrenheit, u)

	_, err = forecast.ParseUnit("K")
	assert.ErrorIs(t, err, forecast.ErrInvalidInput)
}

func TestNotice(t *testing.T) {
	assert.Equal(t, "Enter a valid city.", forecast.Notice(forecast.ErrInvalidInput))
	assert.Contains(t, forecast.Notice(forecast.ErrNotFound), "not found")
	assert.Equal(t, "An error occurred. Please try again later.", forecast.Notice(forecast.ErrMalformedResponse))
	assert.Equal(t, "", forecast.Notice(nil))
}
