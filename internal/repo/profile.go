package repo

import (
	"Chest/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository даёт доступ к профилю владельца.
type ProfileRepository interface {
	GetByOwner(ctx context.Context, ownerID string) (*model.Profile, error)

	// CreateIfAbsent пытается создать профиль. Если у владельца профиль уже есть, ничего не делает.
	// Возвращает created=true если запись была создана в этой операции.
	CreateIfAbsent(ctx context.Context, p *model.Profile) (created bool, err error)

	Update(ctx context.Context, ownerID string, updates map[string]any) (int64, error)

	// SetDefaultPartner переписывает указатель на партнёра по умолчанию (nil сбрасывает).
	SetDefaultPartner(ctx context.Context, ownerID string, partnerID *string) (int64, error)

	// ClearDefaultPartner сбрасывает указатель, только если он указывает на partnerID.
	ClearDefaultPartner(ctx context.Context, ownerID, partnerID string) (int64, error)

	Delete(ctx context.Context, ownerID string) (int64, error)
}

type profileRepo struct {
	db *gorm.DB
}

// NewProfileRepository создаёт реализацию репозитория для Profile.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByOwner(ctx context.Context, ownerID string) (*model.Profile, error) {
	var p model.Profile
	if err := conn(ctx, r.db).Where("owner_id = ?", ownerID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) CreateIfAbsent(ctx context.Context, p *model.Profile) (bool, error) {
	tx := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoNothing: true,
	}).Create(p)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *profileRepo) Update(ctx context.Context, ownerID string, updates map[string]any) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	tx := conn(ctx, r.db).
		Model(&model.Profile{}).
		Where("owner_id = ?", ownerID).
		Updates(updates)
	return tx.RowsAffected, tx.Error
}

func (r *profileRepo) SetDefaultPartner(ctx context.Context, ownerID string, partnerID *string) (int64, error) {
	tx := conn(ctx, r.db).
		Model(&model.Profile{}).
		Where("owner_id = ?", ownerID).
		Update("default_partner_id", partnerID)
	return tx.RowsAffected, tx.Error
}

func (r *profileRepo) ClearDefaultPartner(ctx context.Context, ownerID, partnerID string) (int64, error) {
	tx := conn(ctx, r.db).
		Model(&model.Profile{}).
		Where("owner_id = ? AND default_partner_id = ?", ownerID, partnerID).
		Update("default_partner_id", nil)
	return tx.RowsAffected, tx.Error
}

func (r *profileRepo) Delete(ctx context.Context, ownerID string) (int64, error) {
	tx := conn(ctx, r.db).Where("owner_id = ?", ownerID).Delete(&model.Profile{})
	return tx.RowsAffected, tx.Error
}
