package service

import (
	"Chest/internal/model"
	"Chest/internal/opt"
	"Chest/internal/repo"
	"Chest/internal/visibility"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	shareTokenBytes   = 32
	shareTokenRetries = 3
)

// NewShareToken возвращает 256 бит из crypto/rand в base64url без паддинга.
func NewShareToken() (string, error) {
	b := make([]byte, shareTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ShareInput данные новой ссылки.
type ShareInput struct {
	Name                   *string
	ExpiresAt              time.Time
	DateFrom               *time.Time
	DateTo                 *time.Time
	IncludedPartnerIDs     []string
	IncludeNoPartnerEvents *bool
}

// SharePatch частичное обновление ссылки. Some(nil) очищает поле.
type SharePatch struct {
	Name                   opt.Option[*string]
	ExpiresAt              opt.Option[time.Time]
	DateFrom               opt.Option[*time.Time]
	DateTo                 opt.Option[*time.Time]
	IncludedPartnerIDs     opt.Option[[]string]
	IncludeNoPartnerEvents opt.Option[bool]
}

// ShareService управляет ссылками и отдаёт анонимному держателю
// отфильтрованный срез событий владельца.
type ShareService struct {
	links    repo.ShareLinkRepository
	events   repo.EventRepository
	tx       repo.TxManager
	logger   *zap.SugaredLogger
	clock    func() time.Time
	newToken func() (string, error)
}

// NewShareService создаёт менеджер share-ссылок.
func NewShareService(links repo.ShareLinkRepository, events repo.EventRepository, tx repo.TxManager, logger *zap.SugaredLogger) *ShareService {
	return &ShareService{
		links:    links,
		events:   events,
		tx:       tx,
		logger:   logger,
		clock:    time.Now,
		newToken: NewShareToken,
	}
}

func (s *ShareService) now() time.Time {
	return s.clock().UTC()
}

// Create создаёт ссылку. expiresAt должен быть строго в будущем.
// При совпадении токена попытка повторяется с новым токеном.
func (s *ShareService) Create(ctx context.Context, ownerID string, in ShareInput) (_ *model.ShareLink, err error) {
	ctx, span := startSpan(ctx, "ShareService.Create", ownerID)
	defer func() { endSpan(span, err) }()

	now := s.now()
	if !in.ExpiresAt.After(now) {
		return nil, validationf("expiration date must be in the future")
	}
	from, to := dateOrNil(in.DateFrom), dateOrNil(in.DateTo)
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	l := &model.ShareLink{
		ID:                     uuid.NewString(),
		OwnerID:                ownerID,
		Name:                   nonEmpty(in.Name),
		ExpiresAt:              in.ExpiresAt.UTC(),
		DateFrom:               from,
		DateTo:                 to,
		IncludedPartnerIDs:     model.IDList(dedupe(in.IncludedPartnerIDs)),
		IncludeNoPartnerEvents: in.IncludeNoPartnerEvents == nil || *in.IncludeNoPartnerEvents,
		CreatedAt:              now,
	}

	for attempt := 1; ; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return nil, &StorageError{Op: "generate share token", Err: err}
		}
		l.Token = token

		err = s.links.Create(ctx, l)
		if err == nil {
			break
		}
		if !repo.IsUniqueViolation(err) || attempt >= shareTokenRetries {
			return nil, &StorageError{Op: "create share link", Err: err}
		}
		s.logger.Warnw("share token collision, retrying", "owner_id", ownerID, "attempt", attempt)
	}

	s.logger.Debugw("share link created", "owner_id", ownerID, "share_id", l.ID, "expires_at", l.ExpiresAt)
	return l, nil
}

// ListByOwner возвращает ссылки владельца, новые первыми, включая истёкшие.
func (s *ShareService) ListByOwner(ctx context.Context, ownerID string) (_ []model.ShareLink, err error) {
	ctx, span := startSpan(ctx, "ShareService.ListByOwner", ownerID)
	defer func() { endSpan(span, err) }()

	links, err := s.links.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, wrapErr("list share links", err)
	}
	return links, nil
}

// ResolvePublic ищет действующую ссылку по токену. Неизвестный и истёкший
// токен неотличимы: оба дают ErrNotFound.
func (s *ShareService) ResolvePublic(ctx context.Context, token string) (_ *model.ShareLink, err error) {
	ctx, span := tracer.Start(ctx, "ShareService.ResolvePublic")
	defer func() { endSpan(span, err) }()

	return s.resolve(ctx, token)
}

func (s *ShareService) resolve(ctx context.Context, token string) (*model.ShareLink, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	l, err := s.links.GetByToken(ctx, token)
	if err != nil {
		return nil, wrapErr("get share link", err)
	}
	if l.Expired(s.now()) {
		return nil, ErrNotFound
	}
	return l, nil
}

// ResolveEvents возвращает события, открытые ссылкой: диапазон дат включительный,
// партнёрские события проходят только через белый список. У каждого события
// остаются только партнёры из белого списка.
func (s *ShareService) ResolveEvents(ctx context.Context, token string) (_ []model.Event, err error) {
	ctx, span := tracer.Start(ctx, "ShareService.ResolveEvents")
	defer func() { endSpan(span, err) }()

	l, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListByOwner(ctx, l.OwnerID, repo.DateRange{From: l.DateFrom, To: l.DateTo})
	if err != nil {
		return nil, wrapErr("list shared events", err)
	}

	visible := visibility.FilterShareView(events, l.IncludedPartnerIDs, l.IncludeNoPartnerEvents)
	for i := range visible {
		visible[i].Partners = whitelisted(visible[i].Partners, l.IncludedPartnerIDs)
	}
	return visible, nil
}

// Update применяет патч к ссылке владельца независимо от её срока действия.
func (s *ShareService) Update(ctx context.Context, ownerID, id string, patch SharePatch) (_ *model.ShareLink, err error) {
	ctx, span := startSpan(ctx, "ShareService.Update", ownerID)
	defer func() { endSpan(span, err) }()

	updates := map[string]any{}
	if v, ok := patch.ExpiresAt.Get(); ok {
		if !v.After(s.now()) {
			return nil, validationf("expiration date must be in the future")
		}
		updates["expires_at"] = v.UTC()
	}
	if v, ok := patch.Name.Get(); ok {
		updates["name"] = nonEmpty(v)
	}
	if v, ok := patch.DateFrom.Get(); ok {
		updates["date_from"] = dateOrNil(v)
	}
	if v, ok := patch.DateTo.Get(); ok {
		updates["date_to"] = dateOrNil(v)
	}
	if v, ok := patch.IncludedPartnerIDs.Get(); ok {
		updates["included_partner_ids"] = model.IDList(dedupe(v))
	}
	if v, ok := patch.IncludeNoPartnerEvents.Get(); ok {
		updates["include_no_partner_events"] = v
	}

	var out *model.ShareLink
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		cur, err := s.links.GetByID(ctx, ownerID, id)
		if err != nil {
			return wrapErr("get share link", err)
		}

		from := cur.DateFrom
		if v, ok := patch.DateFrom.Get(); ok {
			from = dateOrNil(v)
		}
		to := cur.DateTo
		if v, ok := patch.DateTo.Get(); ok {
			to = dateOrNil(v)
		}
		if err := validateRange(from, to); err != nil {
			return err
		}

		if _, err := s.links.Update(ctx, ownerID, id, updates); err != nil {
			return wrapErr("update share link", err)
		}
		got, err := s.links.GetByID(ctx, ownerID, id)
		if err != nil {
			return wrapErr("get share link", err)
		}
		out = got
		return nil
	})
	if err != nil {
		return nil, wrapErr("update share link", err)
	}
	return out, nil
}

// Remove удаляет ссылку по паре (id, владелец). Ноль строк даёт ErrNotFound,
// одинаково для несуществующей и чужой ссылки.
func (s *ShareService) Remove(ctx context.Context, ownerID, id string) (err error) {
	ctx, span := startSpan(ctx, "ShareService.Remove", ownerID)
	defer func() { endSpan(span, err) }()

	n, err := s.links.Delete(ctx, ownerID, id)
	if err != nil {
		return wrapErr("delete share link", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func validateRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return validationf("dateFrom must not be after dateTo")
	}
	return nil
}

func dateOrNil(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := model.DateOnly(*t)
	return &d
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func whitelisted(partners []model.Partner, ids model.IDList) []model.Partner {
	out := make([]model.Partner, 0, len(partners))
	for _, p := range partners {
		if ids.Contains(p.ID) {
			out = append(out, p)
		}
	}
	return out
}
