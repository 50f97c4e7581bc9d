// Package session carries who is searching: identity, credential and the
// paging tier derived from them. A Session is passed explicitly to the
// components that need it rather than read from process-wide state.
package session

import "context"

// Tier decides how far past "now" a caller may page the hourly series.
type Tier int

const (
	Anonymous Tier = iota
	Authenticated
)

func (t Tier) String() string {
	if t == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Session identifies the current user. The zero value is an anonymous session.
type Session struct {
	UserID int64
	Token  string
}

// Tier returns Authenticated when the session holds a user and a credential.
func (s *Session) Tier() Tier {
	if s != nil && s.UserID > 0 && s.Token != "" {
		return Authenticated
	}
	return Anonymous
}

// Horizons holds the horizon cap, in hourly rows past "now", per tier.
type Horizons struct {
	Authenticated int
	Anonymous     int
}

// DefaultHorizons gives authenticated callers four pages and anonymous callers two.
var DefaultHorizons = Horizons{Authenticated: 20, Anonymous: 10}

// For returns the cap for t.
func (h Horizons) For(t Tier) int {
	if t == Authenticated {
		return h.Authenticated
	}
	return h.Anonymous
}

type tierKey struct{}

// WithTier returns a copy of ctx carrying t.
func WithTier(ctx context.Context, t Tier) context.Context {
	return context.WithValue(ctx, tierKey{}, t)
}

// TierFrom returns the tier stored in ctx, or Anonymous.
func TierFrom(ctx context.Context) Tier {
	if t, ok := ctx.Value(tierKey{}).(Tier); ok {
		return t
	}
	return Anonymous
}
