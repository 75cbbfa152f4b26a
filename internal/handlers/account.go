package handlers

import (
	"Chest/internal/config"
	"Chest/internal/service"
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// AccountHandler удаляет данные владельца, отдаёт общую статистику и проверку живости.
type AccountHandler struct {
	Accounts *service.AccountService
	Stats    *service.StatsService
	Ping     func(ctx context.Context) error
	Logger   *zap.SugaredLogger
	Config   *config.Config
}

// NewAccountHandler создаёт хендлер аккаунта
func NewAccountHandler(
	accounts *service.AccountService,
	stats *service.StatsService,
	ping func(ctx context.Context) error,
	logger *zap.SugaredLogger,
	cfg *config.Config,
) *AccountHandler {
	return &AccountHandler{Accounts: accounts, Stats: stats, Ping: ping, Logger: logger, Config: cfg}
}

// Delete стирает все данные владельца. Учётка у провайдера идентичности не трогается
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.Accounts.Delete(r.Context(), userID); err != nil {
		writeError(w, h.Logger, "DeleteAccount", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GlobalStats агрегаты по всем пользователям
func (h *AccountHandler) GlobalStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	st, err := h.Stats.Global(r.Context())
	if err != nil {
		writeError(w, h.Logger, "GlobalStats", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Health пингует БД
func (h *AccountHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if h.Ping != nil {
		if err := h.Ping(ctx); err != nil {
			h.Logger.Warnw("Health: database unavailable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
