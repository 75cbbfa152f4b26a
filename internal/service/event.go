package service

import (
	"Chest/internal/model"
	"Chest/internal/opt"
	"Chest/internal/repo"
	"Chest/internal/visibility"
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxNotesLen = 300

// DefaultsProvider отдаёт настройки владельца, от которых зависят события.
type DefaultsProvider interface {
	Defaults(ctx context.Context, ownerID string) (defaultPartnerID *string, includeNoPartner bool, err error)
}

// EventInput — данные нового события. Отсутствующий PartnerIDs означает
// «взять партнёра по умолчанию», пустой список означает «без партнёра».
type EventInput struct {
	Date       time.Time
	Intensity  int
	TimeOfDay  model.TimeOfDay
	IsCycle    bool
	Notes      *string
	PartnerIDs opt.Option[[]string]
}

// EventPatch частичное обновление. Переданный PartnerIDs заменяет набор партнёров целиком.
type EventPatch struct {
	Date       opt.Option[time.Time]
	Intensity  opt.Option[int]
	TimeOfDay  opt.Option[model.TimeOfDay]
	IsCycle    opt.Option[bool]
	Notes      opt.Option[*string]
	PartnerIDs opt.Option[[]string]
}

// EventService ведёт события владельца и их связи с партнёрами.
type EventService struct {
	events   repo.EventRepository
	partners repo.PartnerRepository
	defaults DefaultsProvider
	tx       repo.TxManager
	logger   *zap.SugaredLogger
}

// NewEventService создаёт сервис событий.
func NewEventService(
	events repo.EventRepository,
	partners repo.PartnerRepository,
	defaults DefaultsProvider,
	tx repo.TxManager,
	logger *zap.SugaredLogger,
) *EventService {
	return &EventService{events: events, partners: partners, defaults: defaults, tx: tx, logger: logger}
}

// List возвращает события, видимые владельцу, по возрастанию даты.
func (s *EventService) List(ctx context.Context, ownerID string) (_ []model.Event, err error) {
	ctx, span := startSpan(ctx, "EventService.List", ownerID)
	defer func() { endSpan(span, err) }()

	events, err := s.events.ListByOwner(ctx, ownerID, repo.DateRange{})
	if err != nil {
		return nil, wrapErr("list events", err)
	}
	partners, err := s.partners.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, wrapErr("list partners", err)
	}
	_, includeNoPartner, err := s.defaults.Defaults(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return visibility.FilterOwnerView(events, visibility.VisibilityMap(partners), includeNoPartner), nil
}

// Get возвращает событие владельца без фильтра видимости.
func (s *EventService) Get(ctx context.Context, ownerID, id string) (_ *model.Event, err error) {
	ctx, span := startSpan(ctx, "EventService.Get", ownerID)
	defer func() { endSpan(span, err) }()

	e, err := s.events.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, wrapErr("get event", err)
	}
	return e, nil
}

// Create сохраняет событие. Принадлежность партнёров проверяется в той же
// транзакции до любой записи.
func (s *EventService) Create(ctx context.Context, ownerID string, in EventInput) (_ *model.Event, err error) {
	ctx, span := startSpan(ctx, "EventService.Create", ownerID)
	defer func() { endSpan(span, err) }()

	if in.Date.IsZero() {
		return nil, validationf("date is required")
	}
	if err := validateEventFields(in.Intensity, in.TimeOfDay, in.Notes); err != nil {
		return nil, err
	}

	e := model.Event{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Date:      model.DateOnly(in.Date),
		Intensity: in.Intensity,
		TimeOfDay: in.TimeOfDay,
		IsCycle:   in.IsCycle,
		Notes:     in.Notes,
	}

	var out *model.Event
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		partnerIDs, explicit := in.PartnerIDs.Get()
		if !explicit {
			def, _, err := s.defaults.Defaults(ctx, ownerID)
			if err != nil {
				return err
			}
			if def != nil {
				partnerIDs = []string{*def}
			}
		}
		partnerIDs = dedupe(partnerIDs)
		if err := s.verifyPartners(ctx, ownerID, partnerIDs); err != nil {
			return err
		}

		if err := s.events.Create(ctx, &e); err != nil {
			return wrapErr("create event", err)
		}
		if err := s.events.ReplacePartners(ctx, e.ID, partnerIDs); err != nil {
			return wrapErr("link partners", err)
		}
		got, err := s.events.GetByID(ctx, ownerID, e.ID)
		if err != nil {
			return wrapErr("get event", err)
		}
		out = got
		return nil
	})
	if err != nil {
		return nil, wrapErr("create event", err)
	}
	return out, nil
}

// Update применяет патч; связи с партнёрами заменяются, только если PartnerIDs передан.
func (s *EventService) Update(ctx context.Context, ownerID, id string, patch EventPatch) (_ *model.Event, err error) {
	ctx, span := startSpan(ctx, "EventService.Update", ownerID)
	defer func() { endSpan(span, err) }()

	updates := map[string]any{}
	if v, ok := patch.Date.Get(); ok {
		if v.IsZero() {
			return nil, validationf("date is required")
		}
		updates["date"] = model.DateOnly(v)
	}
	if v, ok := patch.Intensity.Get(); ok {
		if err := validateIntensity(v); err != nil {
			return nil, err
		}
		updates["intensity"] = v
	}
	if v, ok := patch.TimeOfDay.Get(); ok {
		if !v.Valid() {
			return nil, validationf("time_of_day must be one of: day, night")
		}
		updates["time_of_day"] = v
	}
	if v, ok := patch.IsCycle.Get(); ok {
		updates["is_cycle"] = v
	}
	if v, ok := patch.Notes.Get(); ok {
		if err := validateNotes(v); err != nil {
			return nil, err
		}
		updates["notes"] = v
	}

	var out *model.Event
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.events.GetByID(ctx, ownerID, id); err != nil {
			return wrapErr("get event", err)
		}

		partnerIDs, replace := patch.PartnerIDs.Get()
		if replace {
			partnerIDs = dedupe(partnerIDs)
			if err := s.verifyPartners(ctx, ownerID, partnerIDs); err != nil {
				return err
			}
		}

		if _, err := s.events.Update(ctx, ownerID, id, updates); err != nil {
			return wrapErr("update event", err)
		}
		if replace {
			if err := s.events.ReplacePartners(ctx, id, partnerIDs); err != nil {
				return wrapErr("link partners", err)
			}
		}
		got, err := s.events.GetByID(ctx, ownerID, id)
		if err != nil {
			return wrapErr("get event", err)
		}
		out = got
		return nil
	})
	if err != nil {
		return nil, wrapErr("update event", err)
	}
	return out, nil
}

// Remove удаляет событие. Если строк не удалено, ErrNotFound.
func (s *EventService) Remove(ctx context.Context, ownerID, id string) (err error) {
	ctx, span := startSpan(ctx, "EventService.Remove", ownerID)
	defer func() { endSpan(span, err) }()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := s.events.Delete(ctx, ownerID, id)
		if err != nil {
			return wrapErr("delete event", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	return wrapErr("delete event", err)
}

func (s *EventService) verifyPartners(ctx context.Context, ownerID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := s.partners.CountOwned(ctx, ownerID, ids)
	if err != nil {
		return wrapErr("verify partners", err)
	}
	if n != int64(len(ids)) {
		return validationf("one or more partners do not belong to you")
	}
	return nil
}

func validateEventFields(intensity int, tod model.TimeOfDay, notes *string) error {
	if err := validateIntensity(intensity); err != nil {
		return err
	}
	if !tod.Valid() {
		return validationf("time_of_day must be one of: day, night")
	}
	return validateNotes(notes)
}

func validateIntensity(v int) error {
	if v < 1 || v > 5 {
		return validationf("intensity must be between 1 and 5")
	}
	return nil
}

func validateNotes(notes *string) error {
	if notes != nil && utf8.RuneCountInString(*notes) > maxNotesLen {
		return validationf("notes must be at most %d characters", maxNotesLen)
	}
	return nil
}

// dedupe убирает повторы, сохраняя порядок. nil превращается в пустой список.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
