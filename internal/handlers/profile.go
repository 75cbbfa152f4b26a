package handlers

import (
	"Chest/internal/config"
	"Chest/internal/model"
	"Chest/internal/opt"
	"Chest/internal/service"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ProfileHandler обслуживает профиль и настройки по умолчанию.
type ProfileHandler struct {
	Service *service.ProfileService
	Logger  *zap.SugaredLogger
	Config  *config.Config
}

// NewProfileHandler создаёт хендлер профиля
func NewProfileHandler(profiles *service.ProfileService, logger *zap.SugaredLogger, cfg *config.Config) *ProfileHandler {
	return &ProfileHandler{Service: profiles, Logger: logger, Config: cfg}
}

type ProfileDTO struct {
	ID                     string    `json:"id"`
	UserID                 string    `json:"user_id"`
	AgeRange               *string   `json:"age_range"`
	Location               *string   `json:"location"`
	BirthCountry           *string   `json:"birth_country"`
	Sex                    *string   `json:"sex"`
	MaritalStatus          *string   `json:"marital_status"`
	DefaultPartnerID       *string   `json:"default_partner_id"`
	IncludeNoPartnerEvents bool      `json:"include_no_partner_events"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// ProfileRequest тело PUT. Для анкетных полей null очищает значение.
type ProfileRequest struct {
	AgeRange               opt.Option[*string] `json:"age_range"`
	Location               opt.Option[*string] `json:"location"`
	BirthCountry           opt.Option[*string] `json:"birth_country"`
	Sex                    opt.Option[*string] `json:"sex"`
	MaritalStatus          opt.Option[*string] `json:"marital_status"`
	DefaultPartnerID       opt.Option[*string] `json:"default_partner_id"`
	IncludeNoPartnerEvents opt.Option[*bool]   `json:"include_no_partner_events"`
}

func toProfileDTO(p *model.Profile) ProfileDTO {
	return ProfileDTO{
		ID:                     p.ID,
		UserID:                 p.OwnerID,
		AgeRange:               p.AgeRange,
		Location:               p.Location,
		BirthCountry:           p.BirthCountry,
		Sex:                    p.Sex,
		MaritalStatus:          p.MaritalStatus,
		DefaultPartnerID:       p.DefaultPartnerID,
		IncludeNoPartnerEvents: p.IncludeNoPartnerEvents,
		CreatedAt:              p.CreatedAt.UTC(),
		UpdatedAt:              p.UpdatedAt.UTC(),
	}
}

func (req ProfileRequest) patch() (service.ProfilePatch, error) {
	include, err := notNull("include_no_partner_events", req.IncludeNoPartnerEvents)
	if err != nil {
		return service.ProfilePatch{}, err
	}
	return service.ProfilePatch{
		AgeRange:               req.AgeRange,
		Location:               req.Location,
		BirthCountry:           req.BirthCountry,
		Sex:                    req.Sex,
		MaritalStatus:          req.MaritalStatus,
		DefaultPartnerID:       req.DefaultPartnerID,
		IncludeNoPartnerEvents: include,
	}, nil
}

// Get профиль владельца; создаётся при первом обращении
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	p, err := h.Service.Get(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, "GetProfile", err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

// Update частичное обновление профиля
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.Logger, "UpdateProfile", err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(w, h.Logger, "UpdateProfile", err)
		return
	}
	p, err := h.Service.Update(r.Context(), userID, patch)
	if err != nil {
		writeError(w, h.Logger, "UpdateProfile", err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

// Delete удаляет профиль
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), userID); err != nil {
		writeError(w, h.Logger, "DeleteProfile", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
