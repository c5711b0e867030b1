package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/validators"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contactHandler struct {
	responder Responder
	logger    zerolog.Logger
	mailer    ContactSender
}

func newContactHandler(mailer ContactSender) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder: NewResponder(logger),
		logger:    logger,
		mailer:    mailer,
	}
}

// sendContact forwards a visitor's message to the site owners.
// @Router /api/contact [post]
func (h contactHandler) sendContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		msg, err := validators.ParseContactRequest(body)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if h.mailer == nil {
			h.responder.WriteError(w, errs.NewNotConfiguredError("contact form"))
			return
		}
		if err := h.mailer.SendContact(r.Context(), msg); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusAccepted, MessageResponse{Message: "Message sent"})
	}
}
