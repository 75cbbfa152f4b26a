package service

import (
	"Chest/internal/model"
	"Chest/internal/opt"
	"Chest/internal/repo"
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSetter единственная точка смены партнёра по умолчанию.
type DefaultSetter interface {
	SetDefault(ctx context.Context, ownerID string, partnerID *string) error
}

// ProfilePatch частичное обновление профиля. Для строковых полей
// Some(nil) очищает значение.
type ProfilePatch struct {
	AgeRange      opt.Option[*string]
	Location      opt.Option[*string]
	BirthCountry  opt.Option[*string]
	Sex           opt.Option[*string]
	MaritalStatus opt.Option[*string]

	DefaultPartnerID       opt.Option[*string]
	IncludeNoPartnerEvents opt.Option[bool]
}

// ProfileService — профиль владельца и его настройки по умолчанию.
type ProfileService struct {
	profiles repo.ProfileRepository
	defaults DefaultSetter
	tx       repo.TxManager
	logger   *zap.SugaredLogger
}

// NewProfileService создаёт сервис профилей.
func NewProfileService(profiles repo.ProfileRepository, defaults DefaultSetter, tx repo.TxManager, logger *zap.SugaredLogger) *ProfileService {
	return &ProfileService{profiles: profiles, defaults: defaults, tx: tx, logger: logger}
}

// loadProfile возвращает профиль владельца, создавая его с настройками по умолчанию.
// Параллельные первые обращения не создают дубликатов: вставка идёт через ON CONFLICT DO NOTHING.
func loadProfile(ctx context.Context, profiles repo.ProfileRepository, ownerID string) (*model.Profile, error) {
	_, err := profiles.CreateIfAbsent(ctx, &model.Profile{
		ID:                     uuid.NewString(),
		OwnerID:                ownerID,
		IncludeNoPartnerEvents: true,
	})
	if err != nil {
		return nil, wrapErr("create profile", err)
	}
	p, err := profiles.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, wrapErr("get profile", err)
	}
	return p, nil
}

// Get возвращает профиль; отсутствующий профиль создаётся, 404 здесь не бывает.
func (s *ProfileService) Get(ctx context.Context, ownerID string) (_ *model.Profile, err error) {
	ctx, span := startSpan(ctx, "ProfileService.Get", ownerID)
	defer func() { endSpan(span, err) }()

	return loadProfile(ctx, s.profiles, ownerID)
}

// Defaults отдаёт настройки, которые используют события: партнёра по умолчанию
// и флаг показа событий без партнёров.
func (s *ProfileService) Defaults(ctx context.Context, ownerID string) (defaultPartnerID *string, includeNoPartner bool, err error) {
	p, err := loadProfile(ctx, s.profiles, ownerID)
	if err != nil {
		return nil, false, err
	}
	return p.DefaultPartnerID, p.IncludeNoPartnerEvents, nil
}

// Update применяет патч. Смена партнёра по умолчанию идёт через DefaultSetter
// в той же транзакции, что и остальные поля.
func (s *ProfileService) Update(ctx context.Context, ownerID string, patch ProfilePatch) (_ *model.Profile, err error) {
	ctx, span := startSpan(ctx, "ProfileService.Update", ownerID)
	defer func() { endSpan(span, err) }()

	updates := map[string]any{}
	setString := func(column string, o opt.Option[*string]) {
		if v, ok := o.Get(); ok {
			updates[column] = v
		}
	}
	setString("age_range", patch.AgeRange)
	setString("location", patch.Location)
	setString("birth_country", patch.BirthCountry)
	setString("sex", patch.Sex)
	setString("marital_status", patch.MaritalStatus)
	if v, ok := patch.IncludeNoPartnerEvents.Get(); ok {
		updates["include_no_partner_events"] = v
	}

	var out *model.Profile
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := loadProfile(ctx, s.profiles, ownerID); err != nil {
			return err
		}
		if _, err := s.profiles.Update(ctx, ownerID, updates); err != nil {
			return wrapErr("update profile", err)
		}
		if v, ok := patch.DefaultPartnerID.Get(); ok {
			if v != nil && *v == "" {
				v = nil
			}
			if err := s.defaults.SetDefault(ctx, ownerID, v); err != nil {
				return err
			}
		}
		p, err := s.profiles.GetByOwner(ctx, ownerID)
		if err != nil {
			return wrapErr("get profile", err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, wrapErr("update profile", err)
	}
	return out, nil
}

// Delete удаляет профиль. Если профиля нет, ErrNotFound.
func (s *ProfileService) Delete(ctx context.Context, ownerID string) (err error) {
	ctx, span := startSpan(ctx, "ProfileService.Delete", ownerID)
	defer func() { endSpan(span, err) }()

	n, err := s.profiles.Delete(ctx, ownerID)
	if err != nil {
		return wrapErr("delete profile", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.logger.Infow("profile deleted", "owner_id", ownerID)
	return nil
}
