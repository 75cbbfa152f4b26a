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

// EventHandler обслуживает журнал событий владельца.
type EventHandler struct {
	Service *service.EventService
	Logger  *zap.SugaredLogger
	Config  *config.Config
}

// NewEventHandler создаёт хендлер событий
func NewEventHandler(events *service.EventService, logger *zap.SugaredLogger, cfg *config.Config) *EventHandler {
	return &EventHandler{Service: events, Logger: logger, Config: cfg}
}

type eventPartnerDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// EventDTO описывает событие в ответе. В публичном представлении user_id пустой и опускается.
type EventDTO struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id,omitempty"`
	Date      string            `json:"date"`
	Intensity int               `json:"intensity"`
	TimeOfDay model.TimeOfDay   `json:"time_of_day"`
	IsCycle   bool              `json:"is_cycle"`
	Notes     *string           `json:"notes"`
	Partners  []eventPartnerDTO `json:"partners"`
	CreatedAt time.Time         `json:"created_at"`
}

// EventRequest тело POST/PUT. Отсутствующий ключ не меняет поле,
// partnerIds: null равносилен пустому списку.
type EventRequest struct {
	Date       opt.Option[*string]          `json:"date"`
	Intensity  opt.Option[*int]             `json:"intensity"`
	TimeOfDay  opt.Option[*model.TimeOfDay] `json:"time_of_day"`
	IsCycle    opt.Option[*bool]            `json:"is_cycle"`
	Notes      opt.Option[*string]          `json:"notes"`
	PartnerIDs opt.Option[[]string]         `json:"partnerIds"`
}

func toEventDTO(e model.Event) EventDTO {
	partners := make([]eventPartnerDTO, 0, len(e.Partners))
	for _, p := range e.Partners {
		partners = append(partners, eventPartnerDTO{ID: p.ID, Name: p.Name, Color: p.Color})
	}
	return EventDTO{
		ID:        e.ID,
		UserID:    e.OwnerID,
		Date:      e.Date.UTC().Format(dateLayout),
		Intensity: e.Intensity,
		TimeOfDay: e.TimeOfDay,
		IsCycle:   e.IsCycle,
		Notes:     e.Notes,
		Partners:  partners,
		CreatedAt: e.CreatedAt.UTC(),
	}
}

func toEventDTOs(events []model.Event) []EventDTO {
	out := make([]EventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, toEventDTO(e))
	}
	return out
}

func (req EventRequest) patch() (service.EventPatch, error) {
	var p service.EventPatch
	var err error
	if v, ok := req.Date.Get(); ok {
		if v == nil {
			return p, badRequestf("date must not be null")
		}
		d, err := parseDate("date", *v)
		if err != nil {
			return p, err
		}
		p.Date = opt.Some(d)
	}
	if p.Intensity, err = notNull("intensity", req.Intensity); err != nil {
		return p, err
	}
	if p.TimeOfDay, err = notNull("time_of_day", req.TimeOfDay); err != nil {
		return p, err
	}
	if p.IsCycle, err = notNull("is_cycle", req.IsCycle); err != nil {
		return p, err
	}
	p.Notes = req.Notes
	p.PartnerIDs = req.PartnerIDs
	return p, nil
}

func (req EventRequest) input() (service.EventInput, error) {
	p, err := req.patch()
	if err != nil {
		return service.EventInput{}, err
	}
	return service.EventInput{
		Date:       p.Date.Value(),
		Intensity:  p.Intensity.Value(),
		TimeOfDay:  p.TimeOfDay.Value(),
		IsCycle:    p.IsCycle.Value(),
		Notes:      p.Notes.Value(),
		PartnerIDs: p.PartnerIDs,
	}, nil
}

// List события владельца после фильтра видимости
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	events, err := h.Service.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, "ListEvents", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

// Get одно событие без фильтра видимости
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	e, err := h.Service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, "GetEvent", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(*e))
}

// Create новое событие
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req EventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.Logger, "CreateEvent", err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, h.Logger, "CreateEvent", err)
		return
	}
	e, err := h.Service.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, h.Logger, "CreateEvent", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventDTO(*e))
}

// Update частичное обновление события
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req EventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.Logger, "UpdateEvent", err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(w, h.Logger, "UpdateEvent", err)
		return
	}
	e, err := h.Service.Update(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.Logger, "UpdateEvent", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(*e))
}

// Delete удаляет событие вместе со связями
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.Service.Remove(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, "DeleteEvent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
