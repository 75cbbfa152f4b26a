package service

import (
	"Chest/internal/model"
	"Chest/internal/opt"
	"Chest/internal/repo"
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPartnerColor = "#000000"

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// PartnerView — партнёр с выведенным признаком «по умолчанию».
type PartnerView struct {
	model.Partner
	IsDefault bool
}

// PartnerInput данные для создания партнёра. nil означает значение по умолчанию.
type PartnerInput struct {
	Name      string
	Color     *string
	IsVisible *bool
	IsDefault *bool
}

// PartnerPatch частичное обновление партнёра.
type PartnerPatch struct {
	Name      opt.Option[string]
	Color     opt.Option[string]
	IsVisible opt.Option[bool]
	IsDefault opt.Option[bool]
}

// PartnerService — реестр партнёров. Указатель на партнёра по умолчанию
// живёт в профиле и меняется только здесь.
type PartnerService struct {
	partners repo.PartnerRepository
	profiles repo.ProfileRepository
	tx       repo.TxManager
	logger   *zap.SugaredLogger
}

// NewPartnerService создаёт реестр партнёров.
func NewPartnerService(partners repo.PartnerRepository, profiles repo.ProfileRepository, tx repo.TxManager, logger *zap.SugaredLogger) *PartnerService {
	return &PartnerService{partners: partners, profiles: profiles, tx: tx, logger: logger}
}

func view(p model.Partner, prof *model.Profile) PartnerView {
	return PartnerView{Partner: p, IsDefault: prof.IsDefaultPartner(p.ID)}
}

// List возвращает партнёров владельца в порядке создания.
func (s *PartnerService) List(ctx context.Context, ownerID string) (_ []PartnerView, err error) {
	ctx, span := startSpan(ctx, "PartnerService.List", ownerID)
	defer func() { endSpan(span, err) }()

	partners, err := s.partners.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, wrapErr("list partners", err)
	}
	prof, err := loadProfile(ctx, s.profiles, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]PartnerView, 0, len(partners))
	for _, p := range partners {
		out = append(out, view(p, prof))
	}
	return out, nil
}

// Get возвращает партнёра владельца.
func (s *PartnerService) Get(ctx context.Context, ownerID, id string) (_ *PartnerView, err error) {
	ctx, span := startSpan(ctx, "PartnerService.Get", ownerID)
	defer func() { endSpan(span, err) }()

	return s.load(ctx, ownerID, id)
}

func (s *PartnerService) load(ctx context.Context, ownerID, id string) (*PartnerView, error) {
	p, err := s.partners.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, wrapErr("get partner", err)
	}
	prof, err := loadProfile(ctx, s.profiles, ownerID)
	if err != nil {
		return nil, err
	}
	v := view(*p, prof)
	return &v, nil
}

// Create добавляет партнёра. Скрытый партнёр не может стать партнёром по умолчанию:
// isDefault в этом случае молча сбрасывается.
func (s *PartnerService) Create(ctx context.Context, ownerID string, in PartnerInput) (_ *PartnerView, err error) {
	ctx, span := startSpan(ctx, "PartnerService.Create", ownerID)
	defer func() { endSpan(span, err) }()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationf("name is required")
	}
	color := defaultPartnerColor
	if in.Color != nil {
		color = *in.Color
		if !hexColor.MatchString(color) {
			return nil, validationf("color must be a hex color")
		}
	}
	visible := in.IsVisible == nil || *in.IsVisible
	makeDefault := in.IsDefault != nil && *in.IsDefault && visible

	p := model.Partner{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Color:     color,
		IsVisible: visible,
	}

	var out *PartnerView
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.partners.Create(ctx, &p); err != nil {
			return wrapErr("create partner", err)
		}
		if makeDefault {
			if err := s.setDefault(ctx, ownerID, &p.ID); err != nil {
				return err
			}
		}
		v, err := s.load(ctx, ownerID, p.ID)
		out = v
		return err
	})
	if err != nil {
		return nil, wrapErr("create partner", err)
	}
	s.logger.Debugw("partner created", "owner_id", ownerID, "partner_id", p.ID, "default", makeDefault)
	return out, nil
}

// Update применяет патч. Проверка владельца, запись полей и правка указателя
// по умолчанию выполняются в одной транзакции: скрытый партнёр не остаётся
// партнёром по умолчанию ни в каком промежуточном состоянии.
func (s *PartnerService) Update(ctx context.Context, ownerID, id string, patch PartnerPatch) (_ *PartnerView, err error) {
	ctx, span := startSpan(ctx, "PartnerService.Update", ownerID)
	defer func() { endSpan(span, err) }()

	updates := map[string]any{}
	if v, ok := patch.Name.Get(); ok {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, validationf("name must not be empty")
		}
		updates["name"] = v
	}
	if v, ok := patch.Color.Get(); ok {
		if !hexColor.MatchString(v) {
			return nil, validationf("color must be a hex color")
		}
		updates["color"] = v
	}
	if v, ok := patch.IsVisible.Get(); ok {
		updates["is_visible"] = v
	}

	var out *PartnerView
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		cur, err := s.partners.GetByID(ctx, ownerID, id)
		if err != nil {
			return wrapErr("get partner", err)
		}
		if _, err := s.partners.Update(ctx, ownerID, id, updates); err != nil {
			return wrapErr("update partner", err)
		}

		visible := patch.IsVisible.OrElse(cur.IsVisible)
		wantDefault, defaultSet := patch.IsDefault.Get()
		switch {
		case !visible, defaultSet && !wantDefault:
			if _, err := s.profiles.ClearDefaultPartner(ctx, ownerID, id); err != nil {
				return wrapErr("clear default partner", err)
			}
		case defaultSet && wantDefault:
			if err := s.setDefault(ctx, ownerID, &id); err != nil {
				return err
			}
		}

		v, err := s.load(ctx, ownerID, id)
		out = v
		return err
	})
	if err != nil {
		return nil, wrapErr("update partner", err)
	}
	return out, nil
}

// Remove удаляет партнёра и его связи с событиями; сами события остаются.
func (s *PartnerService) Remove(ctx context.Context, ownerID, id string) (err error) {
	ctx, span := startSpan(ctx, "PartnerService.Remove", ownerID)
	defer func() { endSpan(span, err) }()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.profiles.ClearDefaultPartner(ctx, ownerID, id); err != nil {
			return wrapErr("clear default partner", err)
		}
		n, err := s.partners.Delete(ctx, ownerID, id)
		if err != nil {
			return wrapErr("delete partner", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return wrapErr("delete partner", err)
	}
	s.logger.Debugw("partner deleted", "owner_id", ownerID, "partner_id", id)
	return nil
}

// SetDefault переназначает партнёра по умолчанию (nil сбрасывает). Партнёр должен
// принадлежать владельцу и быть видимым.
func (s *PartnerService) SetDefault(ctx context.Context, ownerID string, partnerID *string) (err error) {
	ctx, span := startSpan(ctx, "PartnerService.SetDefault", ownerID)
	defer func() { endSpan(span, err) }()

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if partnerID != nil {
			p, err := s.partners.GetByID(ctx, ownerID, *partnerID)
			if err != nil {
				err = wrapErr("get partner", err)
				if errors.Is(err, ErrNotFound) {
					return validationf("partner does not belong to you")
				}
				return err
			}
			if !p.IsVisible {
				return validationf("hidden partner cannot be the default")
			}
		}
		return s.setDefault(ctx, ownerID, partnerID)
	})
}

// setDefault пишет указатель в профиль, создавая профиль при необходимости.
// Вызывается внутри транзакции.
func (s *PartnerService) setDefault(ctx context.Context, ownerID string, partnerID *string) error {
	if _, err := loadProfile(ctx, s.profiles, ownerID); err != nil {
		return err
	}
	if _, err := s.profiles.SetDefaultPartner(ctx, ownerID, partnerID); err != nil {
		return wrapErr("set default partner", err)
	}
	return nil
}
