package handler

import (
	"errors"
	"net/http"

	"magasin-api/internal/engine"
	"magasin-api/pkg/apierror"
	"magasin-api/pkg/response"
)

// writeEngineError maps engine errors to the API error envelope.
func writeEngineError(w http.ResponseWriter, err error) {
	var vErr *engine.ValidationError
	var uErr *engine.UpstreamError

	switch {
	case errors.As(err, &vErr):
		if vErr.Field != "" {
			response.Error(w, apierror.ValidationError(vErr.Message, apierror.FieldError{
				Field:   vErr.Field,
				Message: vErr.Message,
			}))
			return
		}
		response.Error(w, apierror.ValidationError(vErr.Message))
	case errors.Is(err, engine.ErrNotFound):
		response.Error(w, apierror.NotFound(""))
	case errors.Is(err, engine.ErrInsufficientStock):
		response.Error(w, apierror.Conflict("stock insuffisant"))
	case errors.Is(err, engine.ErrNegativeStock):
		response.Error(w, apierror.BadRequest("la quantité ne peut pas être négative"))
	case errors.Is(err, engine.ErrEmptyCart):
		response.Error(w, apierror.BadRequest("le panier est vide"))
	case errors.As(err, &uErr):
		response.Error(w, apierror.ServiceUnavailable(""))
	default:
		response.Error(w, err)
	}
}
