package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/service"
	"taskManager/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeRequest checks the content type, decodes the body into dst and runs
// struct validation. On failure the response is already written.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: wrong content type",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}

	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("HTTP: failed to decode JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := validateStruct(dst); err != nil {
		handleBusinessError(w, err)
		return false
	}
	return true
}

func validateStruct(v any) error {
	err := validation.Struct(v)
	if err == nil {
		return nil
	}

	var fe *validation.FieldError
	if !errors.As(err, &fe) {
		return service.NewValidationError("body", err.Error())
	}

	logger.Warn("HTTP: validation failed",
		zap.String("field", fe.Field),
		zap.String("rule", fe.Rule))
	return service.NewValidationError(fe.Field, fe.Message)
}

// parseDate accepts RFC 3339 timestamps and plain dates. Falsy input gives
// the zero time, which the options treat as omitted.
func parseDate(raw json.RawMessage) (time.Time, error) {
	if isFalsy(raw) {
		return time.Time{}, nil
	}

	var value string
	if err := json.Unmarshal(raw, &value); err == nil {
		for _, layout := range []string{time.RFC3339, time.DateOnly} {
			if parsed, err := time.Parse(layout, value); err == nil {
				return parsed, nil
			}
		}
	}
	return time.Time{}, service.NewValidationError("dueDate", "dueDate must be a valid date")
}

// parseIDs decodes a raw JSON array of user ids. Absent and null input give
// nil without error, anything that is not an array of ids fails with message.
func parseIDs(raw json.RawMessage, message string) ([]uuid.UUID, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	ids := []uuid.UUID{}
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, service.NewValidationError("assignedTo", message)
	}
	return ids, nil
}

func parseChecklist(raw json.RawMessage) ([]dto.ChecklistItem, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	items := []dto.ChecklistItem{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, service.NewValidationError("todoChecklist", "todoChecklist must be an array")
	}
	return items, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

// isFalsy also counts "", false and 0 as omitted.
func isFalsy(raw json.RawMessage) bool {
	if isAbsent(raw) {
		return true
	}
	switch strings.TrimSpace(string(raw)) {
	case `""`, "false", "0":
		return true
	}
	return false
}

func parseID(w http.ResponseWriter, r *http.Request, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		logger.Warn("HTTP: invalid task id",
			zap.String("id", raw),
			zap.String("client_ip", r.RemoteAddr))
		handleBusinessError(w, service.NewValidationError("id", "Invalid task id"))
		return uuid.Nil, false
	}
	return id, true
}
