package controller_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"domainintel/pkg/controller"
	"domainintel/pkg/serrors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// helper to generate an RSA key pair and return the private key and PEM-encoded public key.
func genRSAKeys(tb testing.TB) (*rsa.PrivateKey, string) {
	tb.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(tb, err, "failed to generate RSA key")
	pubASN1, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(tb, err, "failed to marshal public key")
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubASN1})

	return priv, string(pubPEM)
}

func signJWTRS256(tb testing.TB, priv *rsa.PrivateKey, sub string, issuedAt time.Time, exp time.Time) string {
	tb.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(exp),
		NotBefore: jwt.NewNumericDate(issuedAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(priv)
	require.NoError(tb, err, "failed to sign token")

	return signed
}

func newAuthenticator(t *testing.T, pubPEM string) *controller.Authenticator {
	t.Helper()
	a, err := controller.NewAuthenticator(pubPEM)
	require.NoError(t, err, "NewAuthenticator failed")

	return a
}

func TestNewAuthenticator_InvalidKey(t *testing.T) {
	_, err := controller.NewAuthenticator("not a key")
	require.Error(t, err)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	priv, pubPEM := genRSAKeys(t)
	a := newAuthenticator(t, pubPEM)

	sub := uuid.NewString()
	now := time.Now()
	ctx, err := a.Authenticate(t.Context(), signJWTRS256(t, priv, sub, now, now.Add(time.Hour)))
	require.NoError(t, err)
	require.Equal(t, sub, controller.Subject(ctx))
}

func TestAuthenticate_Rejected(t *testing.T) {
	priv, pubPEM := genRSAKeys(t)
	privOther, _ := genRSAKeys(t)
	a := newAuthenticator(t, pubPEM)
	now := time.Now()

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	hsSigned, err := hs.SignedString([]byte("secret"))
	require.NoError(t, err, "failed to sign HS256 token")

	noExp := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{Subject: uuid.NewString()})
	noExpSigned, err := noExp.SignedString(priv)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "invalid signature", token: signJWTRS256(t, privOther, uuid.NewString(), now, now.Add(time.Hour))},
		{name: "expired", token: signJWTRS256(t, priv, uuid.NewString(), now.Add(-2*time.Hour), now.Add(-time.Hour))},
		{name: "not yet valid", token: signJWTRS256(t, priv, uuid.NewString(), now.Add(time.Hour), now.Add(2*time.Hour))},
		{name: "empty subject", token: signJWTRS256(t, priv, "", now, now.Add(time.Hour))},
		{name: "wrong algorithm", token: hsSigned},
		{name: "no expiry", token: noExpSigned},
		{name: "garbage", token: "a.b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Authenticate(t.Context(), tt.token)
			require.Error(t, err)
			require.ErrorIs(t, err, serrors.ErrUnauthorized)
		})
	}
}

func TestWithBearerAuth(t *testing.T) {
	priv, pubPEM := genRSAKeys(t)
	a := newAuthenticator(t, pubPEM)
	now := time.Now()
	valid := signJWTRS256(t, priv, "user-1", now, now.Add(time.Hour))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Subject", controller.Subject(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
	h := a.WithBearerAuth(next)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid", header: "Bearer " + valid, status: http.StatusOK},
		{name: "scheme is case-insensitive", header: "bearer " + valid, status: http.StatusOK},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "basic", header: "Basic dXNlcjpwYXNz", status: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", status: http.StatusUnauthorized},
		{name: "invalid", header: "Bearer a.b.c", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/pricing?domain=example.com", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			res := rec.Result()
			require.Equal(t, tt.status, res.StatusCode)
			if tt.status == http.StatusOK {
				require.Equal(t, "user-1", res.Header.Get("X-Subject"))

				return
			}
			require.Equal(t, "application/json", res.Header.Get("Content-Type"))
			require.NotEmpty(t, res.Header.Get("WWW-Authenticate"))
			require.Contains(t, rec.Body.String(), `"error":`)
		})
	}
}
