package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"storefront-be/internal/apperror"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var ErrInvalidBody = apperror.Validation("invalid request body")

func WriteJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, map[string]string{"error": message})
}

// WriteError maps err onto a status code. Internal failures are logged and
// replaced with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperror.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	WriteJSONError(w, apperror.PublicMessage(err), code)
}

// DecodeJSON reads a single JSON object, rejecting unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrInvalidBody
	}
	return nil
}
