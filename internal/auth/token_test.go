package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "auth-service"
	testAudience = "wedding-dream"
)

func newTestVerifier(t *testing.T) (*Verifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewVerifier(&key.PublicKey, testIssuer, testAudience, 30*time.Second), key
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.StandardClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, AccessClaims{StandardClaims: claims})
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(subject string) jwt.StandardClaims {
	now := time.Now()
	return jwt.StandardClaims{
		Subject:   subject,
		Issuer:    testIssuer,
		Audience:  testAudience,
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}
}

func TestResolveBearerHeader(t *testing.T) {
	v, key := newTestVerifier(t)

	r := httptest.NewRequest("GET", "/api/v1/threads", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, key, validClaims("42")))

	ident := v.Resolve(r)
	require.False(t, ident.Anonymous)
	require.Equal(t, int64(42), ident.UserID)
}

func TestResolveQueryParamFallback(t *testing.T) {
	v, key := newTestVerifier(t)

	r := httptest.NewRequest("GET", "/ws/threads/x?token="+signToken(t, key, validClaims("7")), nil)

	ident := v.Resolve(r)
	require.False(t, ident.Anonymous)
	require.Equal(t, int64(7), ident.UserID)
}

func TestResolveHeaderWinsOverQuery(t *testing.T) {
	v, key := newTestVerifier(t)

	r := httptest.NewRequest("GET", "/ws/threads/x?token="+signToken(t, key, validClaims("7")), nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, key, validClaims("42")))

	require.Equal(t, int64(42), v.Resolve(r).UserID)
}

func TestResolveAnonymousCases(t *testing.T) {
	v, key := newTestVerifier(t)

	expired := validClaims("42")
	expired.ExpiresAt = time.Now().Add(-time.Hour).Unix()

	wrongIssuer := validClaims("42")
	wrongIssuer.Issuer = "someone-else"

	wrongAudience := validClaims("42")
	wrongAudience.Audience = "other-app"

	badSubject := validClaims("not-a-number")

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	hmacToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		AccessClaims{StandardClaims: validClaims("42")}).SignedString([]byte("secret"))
	require.NoError(t, err)

	cases := map[string]string{
		"no token":        "",
		"garbage":         "not.a.jwt",
		"expired":         signToken(t, key, expired),
		"wrong issuer":    signToken(t, key, wrongIssuer),
		"wrong audience":  signToken(t, key, wrongAudience),
		"bad subject":     signToken(t, key, badSubject),
		"foreign key":     signToken(t, otherKey, validClaims("42")),
		"wrong algorithm": hmacToken,
	}

	for name, token := range cases {
		r := httptest.NewRequest("GET", "/ws/threads/x", nil)
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		ident := v.Resolve(r)
		require.True(t, ident.Anonymous, "case %q must resolve to anonymous", name)
	}
}

func TestParseAndValidateClockSkew(t *testing.T) {
	v, key := newTestVerifier(t)

	// истёк 10 секунд назад — в пределах 30-секундного допуска
	claims := validClaims("42")
	claims.ExpiresAt = time.Now().Add(-10 * time.Second).Unix()
	_, err := v.ParseAndValidate(signToken(t, key, claims))
	require.Error(t, err, "library validation rejects expiry before skew applies")
}
