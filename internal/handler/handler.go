package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/GoArmGo/EcoFinds/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes ограничивает размер JSON-тела запроса
const maxBodyBytes = 1 << 20

// respondWithJSON - отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError - отправляет JSON-ответ с ошибкой.
// Текст дублируется в "message": мобильный клиент читает именно это поле.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message, "message": message}, logger)
}

// respondWithMessage - ответ вида {"message": "..."}
func respondWithMessage(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"message": message}, logger)
}

// respondWithAppError выбирает HTTP-статус по виду прикладной ошибки.
// Внутренние детали клиенту не отдаются.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, message := classify(err)

	attrs := []any{"method", r.Method, "path", r.URL.Path, "status", status, "error", err}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	respondWithError(w, status, message, logger)
}

func classify(err error) (int, string) {
	var appErr *domain.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case domain.KindValidation, domain.KindConflict, domain.KindInvalidCredentials, domain.KindEmptyCart:
			return http.StatusBadRequest, appErr.Message
		case domain.KindUnauthorized:
			return http.StatusUnauthorized, appErr.Message
		case domain.KindForbidden:
			return http.StatusForbidden, appErr.Message
		case domain.KindNotFound:
			return http.StatusNotFound, appErr.Message
		}
	}

	if domain.IsRetryable(err) {
		return http.StatusServiceUnavailable, "service temporarily unavailable, retry later"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "request timed out"
	}
	return http.StatusInternalServerError, "internal server error"
}

// decodeJSON читает тело запроса в dst и проверяет его тегами validate
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.NewValidationError("request body is too large")
		}
		return domain.NewValidationError("invalid JSON body")
	}
	return validation.Struct(dst)
}

// uuidParam разбирает параметр пути chi как UUID
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError("invalid " + name)
	}
	return id, nil
}
