// Package favorites handles a user's saved place names: the comma-joined
// wire format and an HTTP client for the favorites API.
package favorites

import (
	"errors"
	"strings"
)

// Errors returned by favorites stores and clients.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrDuplicate    = errors.New("place already in favorites")
	ErrInvalidPlace = errors.New("invalid place name")
	ErrUnauthorized = errors.New("unauthorized")
)

// Split parses the stored comma-joined form. Empty entries are dropped.
func Split(joined string) []string {
	if joined == "" {
		return []string{}
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Join renders places in the stored comma-joined form.
func Join(places []string) string {
	return strings.Join(places, ",")
}

// Contains reports whether place is already saved, ignoring case and
// surrounding space.
func Contains(places []string, place string) bool {
	place = strings.TrimSpace(place)
	for _, p := range places {
		if strings.EqualFold(p, place) {
			return true
		}
	}
	return false
}

// Validate trims place and rejects names the joined format cannot carry.
func Validate(place string) (string, error) {
	place = strings.TrimSpace(place)
	if place == "" || strings.Contains(place, ",") {
		return "", ErrInvalidPlace
	}
	return place, nil
}
