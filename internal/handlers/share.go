package handlers

import (
	"Chest/internal/config"
	"Chest/internal/model"
	"Chest/internal/opt"
	"Chest/internal/service"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ShareHandler управляет share-ссылками владельца и отдаёт их публичную сторону.
type ShareHandler struct {
	Service *service.ShareService
	Logger  *zap.SugaredLogger
	Config  *config.Config
}

// NewShareHandler создаёт хендлер share-ссылок
func NewShareHandler(shares *service.ShareService, logger *zap.SugaredLogger, cfg *config.Config) *ShareHandler {
	return &ShareHandler{Service: shares, Logger: logger, Config: cfg}
}

type ShareDTO struct {
	ID                     string    `json:"id"`
	UserID                 string    `json:"user_id"`
	Token                  string    `json:"token"`
	Name                   *string   `json:"name"`
	ExpiresAt              time.Time `json:"expires_at"`
	DateFrom               *string   `json:"date_from"`
	DateTo                 *string   `json:"date_to"`
	IncludedPartnerIDs     []string  `json:"included_partner_ids"`
	IncludeNoPartnerEvents bool      `json:"include_no_partner_events"`
	CreatedAt              time.Time `json:"created_at"`
	ShareURL               string    `json:"shareUrl"`
}

// PublicShareDTO то, что видит держатель ссылки: без токена и владельца.
type PublicShareDTO struct {
	Name                   *string   `json:"name"`
	ExpiresAt              time.Time `json:"expires_at"`
	DateFrom               *string   `json:"date_from"`
	DateTo                 *string   `json:"date_to"`
	IncludeNoPartnerEvents bool      `json:"include_no_partner_events"`
	CreatedAt              time.Time `json:"created_at"`
}

// ShareRequest тело POST/PUT. expiresAt в RFC3339, даты в YYYY-MM-DD или RFC3339.
type ShareRequest struct {
	Name                   opt.Option[*string]  `json:"name"`
	ExpiresAt              opt.Option[*string]  `json:"expiresAt"`
	DateFrom               opt.Option[*string]  `json:"dateFrom"`
	DateTo                 opt.Option[*string]  `json:"dateTo"`
	IncludedPartnerIDs     opt.Option[[]string] `json:"includedPartnerIds"`
	IncludeNoPartnerEvents opt.Option[*bool]    `json:"includeNoPartnerEvents"`
}

func toShareDTO(l model.ShareLink) ShareDTO {
	ids := []string(l.IncludedPartnerIDs)
	if ids == nil {
		ids = []string{}
	}
	return ShareDTO{
		ID:                     l.ID,
		UserID:                 l.OwnerID,
		Token:                  l.Token,
		Name:                   l.Name,
		ExpiresAt:              l.ExpiresAt.UTC(),
		DateFrom:               formatDate(l.DateFrom),
		DateTo:                 formatDate(l.DateTo),
		IncludedPartnerIDs:     ids,
		IncludeNoPartnerEvents: l.IncludeNoPartnerEvents,
		CreatedAt:              l.CreatedAt.UTC(),
		ShareURL:               l.URLPath(),
	}
}

func toPublicShareDTO(l *model.ShareLink) PublicShareDTO {
	return PublicShareDTO{
		Name:                   l.Name,
		ExpiresAt:              l.ExpiresAt.UTC(),
		DateFrom:               formatDate(l.DateFrom),
		DateTo:                 formatDate(l.DateTo),
		IncludeNoPartnerEvents: l.IncludeNoPartnerEvents,
		CreatedAt:              l.CreatedAt.UTC(),
	}
}

func (req ShareRequest) patch() (service.SharePatch, error) {
	var p service.SharePatch
	var err error
	if v, ok := req.ExpiresAt.Get(); ok {
		if v == nil {
			return p, badRequestf("expiresAt must not be null")
		}
		t, err := parseTimestamp("expiresAt", *v)
		if err != nil {
			return p, err
		}
		p.ExpiresAt = opt.Some(t)
	}
	if p.DateFrom, err = optionalDate("dateFrom", req.DateFrom); err != nil {
		return p, err
	}
	if p.DateTo, err = optionalDate("dateTo", req.DateTo); err != nil {
		return p, err
	}
	if p.IncludeNoPartnerEvents, err = notNull("includeNoPartnerEvents", req.IncludeNoPartnerEvents); err != nil {
		return p, err
	}
	p.Name = req.Name
	p.IncludedPartnerIDs = req.IncludedPartnerIDs
	return p, nil
}

func (req ShareRequest) input() (service.ShareInput, error) {
	if v := req.ExpiresAt.Value(); v == nil {
		return service.ShareInput{}, badRequestf("expiresAt is required")
	}
	p, err := req.patch()
	if err != nil {
		return service.ShareInput{}, err
	}
	in := service.ShareInput{
		Name:               p.Name.Value(),
		ExpiresAt:          p.ExpiresAt.Value(),
		DateFrom:           p.DateFrom.Value(),
		DateTo:             p.DateTo.Value(),
		IncludedPartnerIDs: p.IncludedPartnerIDs.Value(),
	}
	if v, ok := p.IncludeNoPartnerEvents.Get(); ok {
		in.IncludeNoPartnerEvents = &v
	}
	return in, nil
}

// List ссылки владельца, новые первыми
func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	links, err := h.Service.ListByOwner(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, "ListShares", err)
		return
	}
	out := make([]ShareDTO, 0, len(links))
	for _, l := range links {
		out = append(out, toShareDTO(l))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create новая ссылка
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req ShareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.Logger, "CreateShare", err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, h.Logger, "CreateShare", err)
		return
	}
	l, err := h.Service.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, h.Logger, "CreateShare", err)
		return
	}
	writeJSON(w, http.StatusCreated, toShareDTO(*l))
}

// Update частичное обновление ссылки
func (h *ShareHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req ShareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.Logger, "UpdateShare", err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(w, h.Logger, "UpdateShare", err)
		return
	}
	l, err := h.Service.Update(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.Logger, "UpdateShare", err)
		return
	}
	writeJSON(w, http.StatusOK, toShareDTO(*l))
}

// Delete удаляет ссылку
func (h *ShareHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.Service.Remove(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, "DeleteShare", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PublicGet метаданные действующей ссылки; неизвестный и истёкший токен дают 404
func (h *ShareHandler) PublicGet(w http.ResponseWriter, r *http.Request) {
	l, err := h.Service.ResolvePublic(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, h.Logger, "PublicShare", err)
		return
	}
	writeJSON(w, http.StatusOK, toPublicShareDTO(l))
}

// PublicEvents события, открытые ссылкой, без user_id
func (h *ShareHandler) PublicEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Service.ResolveEvents(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, h.Logger, "PublicShareEvents", err)
		return
	}
	out := toEventDTOs(events)
	for i := range out {
		out[i].UserID = ""
	}
	writeJSON(w, http.StatusOK, out)
}
