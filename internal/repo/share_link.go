package repo

import (
	"Chest/internal/model"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ShareLinkRepository даёт доступ к share-ссылкам.
type ShareLinkRepository interface {
	Create(ctx context.Context, l *model.ShareLink) error

	// ListByOwner возвращает ссылки владельца, новые первыми.
	ListByOwner(ctx context.Context, ownerID string) ([]model.ShareLink, error)

	// GetByToken ищет ссылку по токену без учёта срока действия.
	GetByToken(ctx context.Context, token string) (*model.ShareLink, error)

	GetByID(ctx context.Context, ownerID, id string) (*model.ShareLink, error)

	Update(ctx context.Context, ownerID, id string, updates map[string]any) (int64, error)

	Delete(ctx context.Context, ownerID, id string) (int64, error)
}

type shareLinkRepo struct {
	db *gorm.DB
}

// NewShareLinkRepository создаёт реализацию репозитория для ShareLink.
func NewShareLinkRepository(db *gorm.DB) ShareLinkRepository {
	return &shareLinkRepo{db: db}
}

func (r *shareLinkRepo) Create(ctx context.Context, l *model.ShareLink) error {
	return conn(ctx, r.db).Create(l).Error
}

func (r *shareLinkRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.ShareLink, error) {
	var links []model.ShareLink
	err := conn(ctx, r.db).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *shareLinkRepo) GetByToken(ctx context.Context, token string) (*model.ShareLink, error) {
	var l model.ShareLink
	if err := conn(ctx, r.db).Where("token = ?", token).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *shareLinkRepo) GetByID(ctx context.Context, ownerID, id string) (*model.ShareLink, error) {
	var l model.ShareLink
	err := conn(ctx, r.db).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *shareLinkRepo) Update(ctx context.Context, ownerID, id string, updates map[string]any) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	tx := conn(ctx, r.db).
		Model(&model.ShareLink{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(updates)
	return tx.RowsAffected, tx.Error
}

func (r *shareLinkRepo) Delete(ctx context.Context, ownerID, id string) (int64, error) {
	tx := conn(ctx, r.db).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.ShareLink{})
	return tx.RowsAffected, tx.Error
}

// IsUniqueViolation распознаёт нарушение уникального ограничения в postgres и sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite: UNIQUE constraint failed
		strings.Contains(msg, "duplicate key value") || // postgres: SQLSTATE 23505
		strings.Contains(msg, "sqlstate 23505")
}
