package forecast

import "errors"

// Pipeline failure taxonomy. Callers match with errors.Is.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrTransport          = errors.New("transport error")
)

// Notice returns the single user-facing message for a failed run.
func Notice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "Enter a valid city."
	case errors.Is(err, ErrNotFound):
		return "The city was not found. Check the spelling or try another one."
	default:
		return "An error occurred. Please try again later."
	}
}
