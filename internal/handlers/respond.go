package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/learnhub/backend/internal/apperr"
	"github.com/learnhub/backend/internal/emails"
	"github.com/learnhub/backend/internal/logging"
	"github.com/learnhub/backend/internal/repositories"
)

const maxJSONBody = 1 << 20

var errForbidden = errors.New("forbidden")

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

func respondMessage(ctx context.Context, w http.ResponseWriter, status int, message string) {
	respondJSON(ctx, w, status, map[string]string{"error": message})
}

// respondError maps domain errors onto status codes. Provider details are
// logged here and replaced by a generic message.
func respondError(ctx context.Context, w http.ResponseWriter, err error, providerMessage string) {
	var validation *apperr.ValidationError
	switch {
	case errors.As(err, &validation):
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{
			"error": validation.Message,
			"field": validation.Field,
		})
	case errors.Is(err, repositories.ErrNotFound):
		respondMessage(ctx, w, http.StatusNotFound, "not found")
	case errors.Is(err, errForbidden), errors.Is(err, emails.ErrNotOwner):
		respondMessage(ctx, w, http.StatusForbidden, "you do not have access to this resource")
	case errors.Is(err, apperr.ErrProvider):
		var provider *apperr.ProviderError
		if errors.As(err, &provider) {
			logging.FromContext(ctx).Error("provider call failed",
				slog.String("provider", provider.Provider),
				slog.String("operation", provider.Operation),
				slog.Any("error", provider.Err),
			)
		}
		respondMessage(ctx, w, http.StatusBadGateway, providerMessage)
	default:
		logging.FromContext(ctx).Error("unexpected error", slog.Any("error", err))
		respondMessage(ctx, w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}
