package handlers

import (
	"Chest/internal/config"
	"Chest/internal/opt"
	"Chest/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PartnerHandler обслуживает реестр партнёров.
type PartnerHandler struct {
	Service *service.PartnerService
	Logger  *zap.SugaredLogger
	Config  *config.Config
}

// NewPartnerHandler создаёт хендлер партнёров
func NewPartnerHandler(partners *service.PartnerService, logger *zap.SugaredLogger, cfg *config.Config) *PartnerHandler {
	return &PartnerHandler{Service: partners, Logger: logger, Config: cfg}
}

type PartnerDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	IsVisible bool   `json:"is_visible"`
	IsDefault bool   `json:"is_default"`
}

// PartnerRequest тело POST/PUT в camelCase, как у клиента.
type PartnerRequest struct {
	Name      opt.Option[*string] `json:"name"`
	Color     opt.Option[*string] `json:"color"`
	IsVisible opt.Option[*bool]   `json:"isVisible"`
	IsDefault opt.Option[*bool]   `json:"isDefault"`
}

func toPartnerDTO(v service.PartnerView) PartnerDTO {
	return PartnerDTO{
		ID:        v.ID,
		UserID:    v.OwnerID,
		Name:      v.Name,
		Color:     v.Color,
		IsVisible: v.IsVisible,
		IsDefault: v.IsDefault,
	}
}

func (req PartnerRequest) patch() (service.PartnerPatch, error) {
	var p service.PartnerPatch
	var err error
	if p.Name, err = notNull("name", req.Name); err != nil {
		return p, err
	}
	if p.Color, err = notNull("color", req.Color); err != nil {
		return p, err
	}
	if p.IsVisible, err = notNull("isVisible", req.IsVisible); err != nil {
		return p, err
	}
	if p.IsDefault, err = notNull("isDefault", req.IsDefault); err != nil {
		return p, err
	}
	return p, nil
}

func (req PartnerRequest) input() service.PartnerInput {
	var name string
	if v := req.Name.Value(); v != nil {
		name = *v
	}
	return service.PartnerInput{
		Name:      name,
		Color:     req.Color.Value(),
		IsVisible: req.IsVisible.Value(),
		IsDefault: req.IsDefault.Value(),
	}
}

// List все партнёры владельца, включая скрытых
func (h *PartnerHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	views, err := h.Service.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, "ListPartners", err)
		return
	}
	out := make([]PartnerDTO, 0, len(views))
	for _, v := range views {
		out = append(out, toPartnerDTO(v))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get один партнёр
func (h *PartnerHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	v, err := h.Service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, "GetPartner", err)
		return
	}
	writeJSON(w, http.StatusOK, toPartnerDTO(*v))
}

// Create новый партнёр
func (h *PartnerHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req PartnerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.Logger, "CreatePartner", err)
		return
	}
	v, err := h.Service.Create(r.Context(), userID, req.input())
	if err != nil {
		writeError(w, h.Logger, "CreatePartner", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPartnerDTO(*v))
}

// Update частичное обновление партнёра
func (h *PartnerHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req PartnerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.Logger, "UpdatePartner", err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(w, h.Logger, "UpdatePartner", err)
		return
	}
	v, err := h.Service.Update(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.Logger, "UpdatePartner", err)
		return
	}
	writeJSON(w, http.StatusOK, toPartnerDTO(*v))
}

// Delete удаляет партнёра; если он был по умолчанию, указатель в профиле снимается
func (h *PartnerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.Service.Remove(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, "DeletePartner", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
