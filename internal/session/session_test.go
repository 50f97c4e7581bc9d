package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neexbeast/skycast/internal/session"
)

func TestSessionTier(t *testing.T) {
	var nilSession *session.Session
	assert.Equal(t, session.Anonymous, nilSession.Tier())
	assert.Equal(t, session.Anonymous, (&session.Session{}).Tier())
	assert.Equal(t, session.Anonymous, (&session.Session{UserID: 3}).Tier())
	assert.Equal(t, session.Authenticated, (&session.Session{UserID: 3, Token: "tok"}).Tier())
}

func TestHorizonsFor(t *testing.T) {
	h := session.DefaultHorizons
	assert.Greater(t, h.For(session.Authenticated), h.For(session.Anonymous))
	assert.Equal(t, 20, h.For(session.Authenticated))
}

func TestTierContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, session.Anonymous, session.TierFrom(ctx))
	assert.Equal(t, session.Authenticated, session.TierFrom(session.WithTier(ctx, session.Authenticated)))
}
