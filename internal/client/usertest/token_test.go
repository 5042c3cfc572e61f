package usertest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	tok, err := GenerateToken(7, "u@x.io", 3, secret, time.Hour)
	require.NoError(t, err)

	c, err := ParseToken(tok, secret)
	require.NoError(t, err)
	id, err := c.UserID()
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	assert.Equal(t, "u@x.io", c.Email)
	assert.Equal(t, 3, c.Generation)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken(1, "a@b.c", 0, secret, -time.Second)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(2, "a@b.c", 0, []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("wrong-secret"))
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseToken_Garbage(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not-a-jwt", []byte("k"))
	require.Error(t, err)
}
