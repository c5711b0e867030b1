// Package auth resolves the caller of a request and decides whether it may
// perform protected operations. Identities are resolved once at the HTTP
// boundary and then passed explicitly to every protected operation.
package auth

import (
	"context"

	"github.com/rpupo63/portfolio-blog-backend/errs"
)

const RoleAdmin = "admin"

// Identity is an authenticated principal.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Resolver turns a bearer token into an identity. An invalid or expired token
// is an errs.ErrInvalidToken error; anything else is an infrastructure failure.
type Resolver interface {
	ResolveToken(ctx context.Context, token string) (*Identity, error)
}

// RoleAssigner sets the role claim of the identity registered under email.
// It fails with errs.ErrNotFound when the provider knows no such identity.
type RoleAssigner interface {
	AssignRole(ctx context.Context, email, role, grantedBy string) (*Identity, error)
}

// RequireAuthenticated fails with 401 when there is no identity.
func RequireAuthenticated(identity *Identity) error {
	if identity == nil {
		return errs.Unauthorized
	}
	return nil
}

// RequireAdmin fails with 401 when there is no identity and with 403 when the
// identity's role is not admin.
func RequireAdmin(identity *Identity) error {
	if err := RequireAuthenticated(identity); err != nil {
		return err
	}
	if !identity.IsAdmin() {
		return errs.NewInsufficientRoleError(RoleAdmin)
	}
	return nil
}
