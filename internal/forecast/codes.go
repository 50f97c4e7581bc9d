package forecast

// Open-Meteo WMO weather interpretation codes.
var descriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Describe returns the human-readable description for code, or "" if unmapped.
func Describe(code int) string {
	return descriptions[code]
}

// Icon names one of the weather icon buckets.
type Icon string

const (
	IconClearDay          Icon = "clear-day"
	IconClearNight        Icon = "clear-night"
	IconPartlyCloudyDay   Icon = "partly-cloudy-day"
	IconPartlyCloudyNight Icon = "partly-cloudy-night"
	IconOvercast          Icon = "overcast"
	IconFog               Icon = "fog"
	IconDrizzle           Icon = "drizzle"
	IconRain              Icon = "rain"
	IconSnow              Icon = "snow"
	IconThunderstorm      Icon = "thunderstorm"
)

// IconFor buckets a weather code. Unknown codes fall back to clear-day.
func IconFor(code int, isDay bool) Icon {
	switch code {
	case 0:
		if isDay {
			return IconClearDay
		}
		return IconClearNight
	case 1, 2:
		if isDay {
			return IconPartlyCloudyDay
		}
		return IconPartlyCloudyNight
	case 3:
		return IconOvercast
	case 45, 48:
		return IconFog
	case 51, 53, 55, 56, 57:
		return IconDrizzle
	case 61, 63, 65, 66, 67, 80, 81, 82:
		return IconRain
	case 71, 73, 75, 77, 85, 86:
		return IconSnow
	case 95, 96, 99:
		return IconThunderstorm
	}
	return IconClearDay
}
