package api

import (
	"errors"
	"net/http"

	"github.com/mindocean/mindocean/internal/api/respond"
	"github.com/mindocean/mindocean/internal/llm"
	"github.com/mindocean/mindocean/internal/model"
)

// writeDomainError maps the service error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var upstream *llm.UpstreamError
	switch {
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrInsufficientData),
		errors.Is(err, model.ErrNoMemoriesExtracted):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrConflict):
		respond.WriteError(w, http.StatusConflict, err.Error())
	case errors.As(err, &upstream):
		respond.WriteBadGateway(w, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}
