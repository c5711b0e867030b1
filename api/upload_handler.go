package api

import (
	"errors"
	"net/http"

	"github.com/rpupo63/portfolio-blog-backend/auth"
	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 1 << 20

type uploadHandler struct {
	responder Responder
	logger    zerolog.Logger
	gate      auth.Gate
	images    ImageUploader
}

func newUploadHandler(gate auth.Gate, images ImageUploader) uploadHandler {
	logger := log.With().Str("handlerName", "uploadHandler").Logger()

	return uploadHandler{
		responder: NewResponder(logger),
		logger:    logger,
		gate:      gate,
		images:    images,
	}
}

// uploadImage stores the multipart "file" field as a post cover image.
// @Router /api/uploads/images [post]
func (h uploadHandler) uploadImage() http.HandlerFunc {
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
		if h.images == nil {
			h.responder.WriteError(w, errs.NewNotConfiguredError("image uploads"))
			return
		}

		limit := h.images.MaxBytes() + multipartOverhead
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		if err := r.ParseMultipartForm(limit); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(h.images.MaxBytes()))
				return
			}
			h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart form", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("file"))
			return
		}
		defer file.Close()

		image, err := h.images.Upload(r.Context(), header.Filename, file)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, image)
	}
}
