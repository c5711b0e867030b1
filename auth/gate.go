package auth

import (
	"net/http"
	"strings"

	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Gate is the request boundary adapter that produces an Identity.
type Gate struct {
	resolver Resolver
	logger   zerolog.Logger
}

func NewGate(resolver Resolver) Gate {
	return Gate{
		resolver: resolver,
		logger:   log.With().Str("component", "authGate").Logger(),
	}
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < len("Bearer ") || !strings.EqualFold(authHeader[:len("Bearer ")], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[len("Bearer "):])
}

// Identify resolves the request's identity. A missing or invalid token yields
// a nil identity and no error; only a failing provider is reported.
func (g Gate) Identify(r *http.Request) (*Identity, error) {
	token := BearerToken(r)
	if token == "" {
		return nil, nil
	}

	identity, err := g.resolver.ResolveToken(r.Context(), token)
	if errs.IsInvalidTokenError(err) {
		g.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected access token")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return identity, nil
}
