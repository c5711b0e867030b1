package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-blog-backend/auth"
	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/validators"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type adminHandler struct {
	responder Responder
	logger    zerolog.Logger
	gate      auth.Gate
	roles     auth.RoleAssigner
}

func newAdminHandler(gate auth.Gate, roles auth.RoleAssigner) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder: NewResponder(logger),
		logger:    logger,
		gate:      gate,
		roles:     roles,
	}
}

// setAdmin grants the admin role to the identity registered under an email.
// Only admins may grant it.
// @Router /api/set-admin [post]
func (h adminHandler) setAdmin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := h.gate.Identify(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := auth.RequireAdmin(identity); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		body, err := readBody(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		email, err := validators.ParseAdminRequest(body)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if h.roles == nil {
			h.responder.WriteError(w, errs.NewNotConfiguredError("role assignment"))
			return
		}

		granted, err := h.roles.AssignRole(r.Context(), email, auth.RoleAdmin, identity.Email)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("email", email).Str("grantedBy", identity.ID).Msg("Granted admin role")
		h.responder.WriteJSON(w, SetAdminResponse{
			Message:  "Admin role set successfully",
			Identity: granted,
		})
	}
}

// getMe returns the identity the bearer token resolves to.
// @Router /api/me [get]
func (h adminHandler) getMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := h.gate.Identify(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := auth.RequireAuthenticated(identity); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, identity)
	}
}
