package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("testsecret")
	id := Identity{UserID: 7, Email: "buyer@example.com", Role: RoleAdmin}

	token, err := m.Issue(id)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	t.Run("Success", func(t *testing.T) {
		got, err := m.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
		assert.True(t, got.IsAdmin())
	})

	t.Run("InvalidToken", func(t *testing.T) {
		_, err := m.Parse("invalid-token-string")
		assert.Error(t, err)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		_, err := NewTokenManager("other").Parse(token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "signature is invalid")
	})

	t.Run("Expired", func(t *testing.T) {
		late := NewTokenManager("testsecret")
		late.now = func() time.Time { return time.Now().Add(48 * time.Hour) }

		_, err := late.Parse(token)
		assert.Error(t, err)
	})
}

func TestTokenManager_NoSecret(t *testing.T) {
	m := NewTokenManager("")

	_, err := m.Issue(Identity{UserID: 1})
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = m.Parse("whatever")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: 3, Role: RoleUser})
	uid, ok := UserIDFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, uint(3), uid)

	anon := WithIdentity(context.Background(), Identity{})
	_, ok = IdentityFrom(anon)
	assert.False(t, ok)
}
