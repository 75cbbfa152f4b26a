package repo

import (
	"Chest/internal/model"
	"context"

	"gorm.io/gorm"
)

// AccountRepository удаляет все данные владельца.
type AccountRepository interface {
	// DeleteOwnerData удаляет ссылки, связи, события, партнёров и профиль владельца.
	// Вызывающий оборачивает вызов в транзакцию.
	DeleteOwnerData(ctx context.Context, ownerID string) error
}

type accountRepo struct {
	db *gorm.DB
}

// NewAccountRepository создаёт реализацию AccountRepository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) DeleteOwnerData(ctx context.Context, ownerID string) error {
	db := conn(ctx, r.db)

	if err := db.Where("owner_id = ?", ownerID).Delete(&model.ShareLink{}).Error; err != nil {
		return err
	}
	ownedEvents := db.Model(&model.Event{}).Select("id").Where("owner_id = ?", ownerID)
	if err := db.Where("event_id IN (?)", ownedEvents).Delete(&model.EventPartner{}).Error; err != nil {
		return err
	}
	if err := db.Where("owner_id = ?", ownerID).Delete(&model.Event{}).Error; err != nil {
		return err
	}
	// профиль раньше партнёров: default_partner_id ссылается на partners
	if err := db.Where("owner_id = ?", ownerID).Delete(&model.Profile{}).Error; err != nil {
		return err
	}
	return db.Where("owner_id = ?", ownerID).Delete(&model.Partner{}).Error
}
