package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	tok, err := Generate("secret", "gin-blog", "u1", "alice", time.Hour)
	require.NoError(t, err)

	claims, err := Parse("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "gin-blog", claims.Issuer)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := Generate("secret", "gin-blog", "u1", "alice", time.Hour)
	require.NoError(t, err)

	_, err = Parse("other-secret", tok)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	tok, err := Generate("secret", "gin-blog", "u1", "alice", -time.Minute)
	require.NoError(t, err)

	_, err = Parse("secret", tok)
	assert.Error(t, err)
}
