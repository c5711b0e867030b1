package auth

import (
	"fmt"
	"strings"

	"github.com/rpupo63/portfolio-blog-backend/config"
	"github.com/rpupo63/portfolio-blog-backend/errs"
)

const (
	ProviderDescope = "descope"
	ProviderJWT     = "jwt"
)

// NewProvider picks the identity provider named by AUTH_PROVIDER. Both
// providers resolve tokens and assign roles; grants is only used by the
// local JWT provider.
func NewProvider(cfg map[string]string, grants GrantStore) (Resolver, RoleAssigner, error) {
	switch provider := strings.ToLower(config.GetString(cfg, "AUTH_PROVIDER", ProviderDescope)); provider {
	case ProviderDescope:
		projectID := config.GetString(cfg, "DESCOPE_PROJECT_ID", "")
		if projectID == "" {
			return nil, nil, errs.NewNotConfiguredError("DESCOPE_PROJECT_ID")
		}
		resolver, err := NewDescopeResolver(projectID, config.GetString(cfg, "DESCOPE_MANAGEMENT_KEY", ""))
		if err != nil {
			return nil, nil, err
		}
		return resolver, resolver, nil
	case ProviderJWT:
		secret := config.GetString(cfg, "JWT_SECRET", "")
		if secret == "" {
			return nil, nil, errs.NewNotConfiguredError("JWT_SECRET")
		}
		resolver := NewJWTResolver(secret, config.GetString(cfg, "JWT_ISSUER", ""), grants)
		return resolver, resolver, nil
	default:
		return nil, nil, fmt.Errorf("unsupported AUTH_PROVIDER %q", provider)
	}
}
