package controller

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"

	"domainintel/pkg/logger"
	"domainintel/pkg/serrors"

	"github.com/go-faster/jx"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// SubjectKey is the context key under which the authenticated token subject is stored.
const SubjectKey CtxKey = "Subject"

// Subject returns the authenticated token subject stored in ctx, or an empty string.
func Subject(ctx context.Context) string {
	sub, _ := ctx.Value(SubjectKey).(string)

	return sub
}

// Authenticator verifies RS256 bearer tokens issued by the external identity provider.
type Authenticator struct {
	key    *rsa.PublicKey
	parser *jwt.Parser
}

// NewAuthenticator parses a PEM encoded RSA public key.
func NewAuthenticator(publicKeyPEM string) (*Authenticator, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	return &Authenticator{
		key: key,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// Authenticate validates token and returns a copy of ctx carrying its subject.
// Every failure is reported as serrors.ErrUnauthorized.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (context.Context, error) {
	var claims jwt.RegisteredClaims
	_, err := a.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.key, nil
	})
	if err != nil {
		return ctx, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token")
	}
	if claims.Subject == "" {
		return ctx, serrors.With(serrors.ErrUnauthorized, "token has no subject")
	}

	ctx = context.WithValue(ctx, SubjectKey, claims.Subject)

	return logger.WithFields(ctx, zap.String("subject", claims.Subject)), nil
}

// WithBearerAuth returns a middleware that rejects requests without a valid
// "Authorization: Bearer <token>" header with 401 Unauthorized.
func (a *Authenticator) WithBearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w, "missing bearer token")

			return
		}

		ctx, err := a.Authenticate(r.Context(), token)
		if err != nil {
			logger.Debug(r.Context(), "rejected bearer token", zap.Error(err))
			unauthorized(w, serrors.Message(err, "unauthorized"))

			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)

	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("error")
	e.Str(msg)
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="domainintel"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write(e.Bytes())
}
