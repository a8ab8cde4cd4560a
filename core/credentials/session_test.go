package credentials_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/sessionguard/core/credentials"
)

func TestNew(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sess := credentials.New(userID, "access", "refresh", "v1:abc")

	assert.Equal(t, userID, sess.UserID)
	assert.Equal(t, "access", sess.AccessToken)
	assert.Equal(t, "refresh", sess.RefreshToken)
	assert.Equal(t, "v1:abc", sess.Fingerprint)
	assert.False(t, sess.CreatedAt.IsZero())
	assert.Equal(t, sess.CreatedAt, sess.LastSeenAt)
	assert.False(t, sess.IsZero())
}

func TestSessionWithTokens(t *testing.T) {
	t.Parallel()

	original := credentials.New(uuid.New(), "old-access", "old-refresh", "v1:abc")

	rotated := original.WithTokens("new-access", "new-refresh")

	assert.Equal(t, "new-access", rotated.AccessToken)
	assert.Equal(t, "new-refresh", rotated.RefreshToken)
	assert.Equal(t, original.UserID, rotated.UserID)
	assert.Equal(t, original.CreatedAt, rotated.CreatedAt)

	// Value semantics: the original is untouched.
	assert.Equal(t, "old-access", original.AccessToken)
}

func TestSessionTouched(t *testing.T) {
	t.Parallel()

	t.Run("advances after interval elapsed", func(t *testing.T) {
		t.Parallel()

		sess := credentials.New(uuid.New(), "a", "r", "")
		sess.LastSeenAt = time.Now().Add(-time.Minute)

		touched, changed := sess.Touched(30 * time.Second)
		assert.True(t, changed)
		assert.True(t, touched.LastSeenAt.After(sess.LastSeenAt))
	})

	t.Run("no-op within interval", func(t *testing.T) {
		t.Parallel()

		sess := credentials.New(uuid.New(), "a", "r", "")

		touched, changed := sess.Touched(30 * time.Second)
		assert.False(t, changed)
		assert.Equal(t, sess.LastSeenAt, touched.LastSeenAt)
	})
}

func TestSessionIsZero(t *testing.T) {
	t.Parallel()

	assert.True(t, credentials.Session{}.IsZero())
	assert.False(t, credentials.Session{AccessToken: "a"}.IsZero())
	assert.False(t, credentials.Session{RefreshToken: "r"}.IsZero())
}
