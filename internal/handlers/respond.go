package handlers

import (
	"Chest/internal/middleware"
	"Chest/internal/model"
	"Chest/internal/opt"
	"Chest/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"
	maxBody    = 1 << 20
)

// badRequest ошибка разбора запроса; текст уходит клиенту как есть.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func badRequestf(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError переводит ошибку сервиса в HTTP-ответ. Причину StorageError
// пишем только в лог.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	var br *badRequest
	var ve *service.ValidationError
	switch {
	case errors.As(err, &br):
		logger.Debugw(op+": bad request", "error", err)
		writeErrorMessage(w, http.StatusBadRequest, br.msg)
	case errors.As(err, &ve):
		writeErrorMessage(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, service.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, "not found")
	default:
		logger.Errorw(op+": service error", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON читает тело запроса в dst. Неизвестные поля игнорируются.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequestf("invalid request body")
	}
	return nil
}

// requireUser достаёт владельца из контекста; иначе сразу отвечает 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return uid, true
}

// parseDate принимает YYYY-MM-DD или RFC3339 и отбрасывает время.
func parseDate(field, s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, badRequestf("invalid %s: %q", field, s)
	}
	return model.DateOnly(t.UTC()), nil
}

func parseTimestamp(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, badRequestf("invalid %s: %q", field, s)
	}
	return t.UTC(), nil
}

// notNull снимает указатель с поля, которое нельзя обнулить.
func notNull[T any](field string, o opt.Option[*T]) (opt.Option[T], error) {
	v, ok := o.Get()
	if !ok {
		return opt.None[T](), nil
	}
	if v == nil {
		return opt.None[T](), badRequestf("%s must not be null", field)
	}
	return opt.Some(*v), nil
}

// optionalDate разбирает дату, где null означает очистку.
func optionalDate(field string, o opt.Option[*string]) (opt.Option[*time.Time], error) {
	v, ok := o.Get()
	if !ok {
		return opt.None[*time.Time](), nil
	}
	if v == nil {
		return opt.Some[*time.Time](nil), nil
	}
	t, err := parseDate(field, *v)
	if err != nil {
		return opt.None[*time.Time](), err
	}
	return opt.Some(&t), nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}
