package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)

	token, err := issuer.Generate(Identity{UserID: 7, Name: "alice"})
	require.NoError(t, err)

	id, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: 7, Name: "alice"}, id)
}

func TestIssuer_Parse_Invalid(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	valid, err := issuer.Generate(Identity{UserID: 1, Name: "alice"})
	require.NoError(t, err)

	expired := NewIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Generate(Identity{UserID: 1, Name: "alice"})
	require.NoError(t, err)

	otherSecret, err := NewIssuer("other", time.Hour).Generate(Identity{UserID: 1, Name: "alice"})
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           1,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"tampered", valid + "x"},
		{"expired", expiredToken},
		{"wrong secret", otherSecret},
		{"alg none", noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("1234")
	require.NoError(t, err)
	assert.NotEqual(t, "1234", hash)

	ok, err := CheckPassword(hash, "1234")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "4321")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: 3, Name: "bob"})
	id, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, uint(3), id.UserID)
	assert.Equal(t, "bob", id.Name)
}
