package repo

import (
	"Chest/internal/model"
	"context"

	"gorm.io/gorm"
)

// PartnerRepository даёт доступ к партнёрам; все выборки ограничены владельцем.
type PartnerRepository interface {
	// ListByOwner возвращает партнёров владельца в порядке создания.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Partner, error)

	// GetByID ищет партнёра по id и владельцу. Если не найден, gorm.ErrRecordNotFound.
	GetByID(ctx context.Context, ownerID, id string) (*model.Partner, error)

	Create(ctx context.Context, p *model.Partner) error

	// Update применяет изменения и возвращает число затронутых строк.
	Update(ctx context.Context, ownerID, id string, updates map[string]any) (int64, error)

	// Delete удаляет партнёра вместе со строками event_partners, но не события.
	Delete(ctx context.Context, ownerID, id string) (int64, error)

	// CountOwned считает, сколько из ids принадлежит владельцу.
	CountOwned(ctx context.Context, ownerID string, ids []string) (int64, error)
}

type partnerRepo struct {
	db *gorm.DB
}

// NewPartnerRepository создаёт реализацию репозитория для Partner.
func NewPartnerRepository(db *gorm.DB) PartnerRepository {
	return &partnerRepo{db: db}
}

func (r *partnerRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Partner, error) {
	var partners []model.Partner
	err := conn(ctx, r.db).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&partners).Error
	if err != nil {
		return nil, err
	}
	return partners, nil
}

func (r *partnerRepo) GetByID(ctx context.Context, ownerID, id string) (*model.Partner, error) {
	var p model.Partner
	err := conn(ctx, r.db).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *partnerRepo) Create(ctx context.Context, p *model.Partner) error {
	return conn(ctx, r.db).Create(p).Error
}

func (r *partnerRepo) Update(ctx context.Context, ownerID, id string, updates map[string]any) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	tx := conn(ctx, r.db).
		Model(&model.Partner{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(updates)
	return tx.RowsAffected, tx.Error
}

func (r *partnerRepo) Delete(ctx context.Context, ownerID, id string) (int64, error) {
	db := conn(ctx, r.db)

	tx := db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.Partner{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	if tx.RowsAffected == 0 {
		return 0, nil
	}
	// каскад на уровне схемы есть, но не полагаемся на PRAGMA foreign_keys
	if err := db.Where("partner_id = ?", id).Delete(&model.EventPartner{}).Error; err != nil {
		return 0, err
	}
	return tx.RowsAffected, nil
}

func (r *partnerRepo) CountOwned(ctx context.Context, ownerID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := conn(ctx, r.db).
		Model(&model.Partner{}).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Count(&n).Error
	return n, err
}
