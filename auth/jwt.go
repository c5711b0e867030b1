package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/models"
)

// GrantStore persists role grants for locally verified tokens.
type GrantStore interface {
	Find(ctx context.Context, email string) (*models.RoleGrant, error)
	Upsert(ctx context.Context, grant *models.RoleGrant) error
}

// Claims defines the structure of the data stored inside the JWT.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver verifies HS256 tokens signed with a shared secret. A stored
// role grant for the token's email takes precedence over the role claim.
type JWTResolver struct {
	secret []byte
	issuer string
	grants GrantStore
	now    func() time.Time
}

func NewJWTResolver(secret, issuer string, grants GrantStore) *JWTResolver {
	return &JWTResolver{
		secret: []byte(secret),
		issuer: issuer,
		grants: grants,
		now:    time.Now,
	}
}

func (r *JWTResolver) ResolveToken(ctx context.Context, token string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(r.now),
	}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return r.secret, nil
	}, opts...)
	if err != nil {
		return nil, errs.NewInvalidTokenError(err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errs.NewInvalidTokenError(errors.New("token has no subject"))
	}

	identity := &Identity{ID: claims.Subject, Email: claims.Email, Role: claims.Role}
	if r.grants == nil || identity.Email == "" {
		return identity, nil
	}

	grant, err := r.grants.Find(ctx, identity.Email)
	switch {
	case err == nil:
		identity.Role = grant.Role
	case errs.IsNotFound(err):
	default:
		return nil, err
	}
	return identity, nil
}

// IssueToken signs a token for identity that expires after ttl.
func (r *JWTResolver) IssueToken(identity Identity, ttl time.Duration) (string, error) {
	now := r.now()
	claims := &Claims{
		Email: identity.Email,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			Issuer:    r.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

// AssignRole stores a grant that applies to every token carrying email.
// Locally verified tokens have no user directory, so any address is accepted.
func (r *JWTResolver) AssignRole(ctx context.Context, email, role, grantedBy string) (*Identity, error) {
	if r.grants == nil {
		return nil, errs.NewNotConfiguredError("role grants")
	}

	grant := &models.RoleGrant{
		Email:     email,
		Role:      role,
		GrantedBy: grantedBy,
		GrantedAt: r.now().UTC(),
	}
	if err := r.grants.Upsert(ctx, grant); err != nil {
		return nil, err
	}
	return &Identity{Email: grant.Email, Role: grant.Role}, nil
}
