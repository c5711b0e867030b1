package auth

import (
	"context"
	"fmt"

	"github.com/descope/go-sdk/descope"
	"github.com/descope/go-sdk/descope/client"
	"github.com/rpupo63/portfolio-blog-backend/errs"
)

type sessionValidator interface {
	ValidateSessionWithToken(ctx context.Context, sessionToken string) (bool, *descope.Token, error)
}

type userDirectory interface {
	SearchAll(ctx context.Context, options *descope.UserSearchOptions) ([]*descope.UserResponse, int, error)
	AddRoles(ctx context.Context, loginID string, roles []string) (*descope.UserResponse, error)
}

// DescopeResolver validates session tokens issued by Descope and manages roles
// through the Descope management API.
type DescopeResolver struct {
	sessions sessionValidator
	users    userDirectory
}

func NewDescopeResolver(projectID, managementKey string) (*DescopeResolver, error) {
	descopeClient, err := client.NewWithConfig(&client.Config{
		ProjectID:     projectID,
		ManagementKey: managementKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create descope client: %w", err)
	}

	resolver := &DescopeResolver{sessions: descopeClient.Auth}
	if managementKey != "" {
		resolver.users = descopeClient.Management.User()
	}
	return resolver, nil
}

func (d *DescopeResolver) ResolveToken(ctx context.Context, token string) (*Identity, error) {
	ok, sessionToken, err := d.sessions.ValidateSessionWithToken(ctx, token)
	if err != nil {
		return nil, errs.NewInvalidTokenError(err)
	}
	if !ok || sessionToken == nil {
		return nil, errs.NewInvalidTokenError(nil)
	}

	identity := &Identity{
		ID:   sessionToken.ID,
		Role: roleFromClaims(sessionToken.Claims),
	}
	if email, ok := sessionToken.Claims["email"].(string); ok {
		identity.Email = email
	}
	return identity, nil
}

// roleFromClaims reads the project level "roles" claim. admin wins when the
// identity holds several roles.
func roleFromClaims(claims map[string]any) string {
	rawRoles, ok := claims["roles"].([]any)
	if !ok {
		return ""
	}

	role := ""
	for _, raw := range rawRoles {
		name, ok := raw.(string)
		if !ok {
			continue
		}
		if name == RoleAdmin {
			return RoleAdmin
		}
		if role == "" {
			role = name
		}
	}
	return role
}

func (d *DescopeResolver) AssignRole(ctx context.Context, email, role, _ string) (*Identity, error) {
	if d.users == nil {
		return nil, errs.NewNotConfiguredError("DESCOPE_MANAGEMENT_KEY")
	}

	users, _, err := d.users.SearchAll(ctx, &descope.UserSearchOptions{
		Emails: []string{email},
		Limit:  1,
	})
	if err != nil {
		return nil, errs.NewServiceError("descope user search", err)
	}
	if len(users) == 0 || len(users[0].LoginIDs) == 0 {
		return nil, errs.NewNotFoundError("user")
	}

	updated, err := d.users.AddRoles(ctx, users[0].LoginIDs[0], []string{role})
	if err != nil {
		return nil, errs.NewServiceError("descope add roles", err)
	}

	return &Identity{
		ID:    updated.UserID,
		Email: updated.Email,
		Role:  role,
	}, nil
}
