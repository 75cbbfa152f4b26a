package repo

import (
	"Chest/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DateRange — включительный диапазон дат; nil-граница означает отсутствие ограничения.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// EventRepository адаптер хранилища событий и их связей с партнёрами.
type EventRepository interface {
	// ListByOwner возвращает события владельца по возрастанию даты вместе с партнёрами.
	ListByOwner(ctx context.Context, ownerID string, dates DateRange) ([]model.Event, error)

	GetByID(ctx context.Context, ownerID, id string) (*model.Event, error)

	// Create сохраняет событие без связей; связи пишет ReplacePartners.
	Create(ctx context.Context, e *model.Event) error

	Update(ctx context.Context, ownerID, id string, updates map[string]any) (int64, error)

	// ReplacePartners заменяет весь набор связей события (удалить всё, затем вставить).
	// Атомарность обеспечивает вызывающий через TxManager.
	ReplacePartners(ctx context.Context, eventID string, partnerIDs []string) error

	// Delete удаляет событие и его связи.
	Delete(ctx context.Context, ownerID, id string) (int64, error)
}

type eventRepo struct {
	db *gorm.DB
}

// NewEventRepository создаёт реализацию репозитория для Event.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func withPartners(db *gorm.DB) *gorm.DB {
	return db.Order("partners.created_at ASC")
}

func (r *eventRepo) ListByOwner(ctx context.Context, ownerID string, dates DateRange) ([]model.Event, error) {
	q := conn(ctx, r.db).
		Preload("Partners", withPartners).
		Where("owner_id = ?", ownerID)
	if dates.From != nil {
		q = q.Where("date >= ?", model.DateOnly(*dates.From))
	}
	if dates.To != nil {
		q = q.Where("date <= ?", model.DateOnly(*dates.To))
	}

	var events []model.Event
	if err := q.Order("date ASC").Order("created_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepo) GetByID(ctx context.Context, ownerID, id string) (*model.Event, error) {
	var e model.Event
	err := conn(ctx, r.db).
		Preload("Partners", withPartners).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepo) Create(ctx context.Context, e *model.Event) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(e).Error
}

func (r *eventRepo) Update(ctx context.Context, ownerID, id string, updates map[string]any) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	tx := conn(ctx, r.db).
		Model(&model.Event{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(updates)
	return tx.RowsAffected, tx.Error
}

func (r *eventRepo) ReplacePartners(ctx context.Context, eventID string, partnerIDs []string) error {
	db := conn(ctx, r.db)
	if err := db.Where("event_id = ?", eventID).Delete(&model.EventPartner{}).Error; err != nil {
		return err
	}
	if len(partnerIDs) == 0 {
		return nil
	}
	rows := make([]model.EventPartner, 0, len(partnerIDs))
	for _, pid := range partnerIDs {
		rows = append(rows, model.EventPartner{EventID: eventID, PartnerID: pid})
	}
	return db.Create(&rows).Error
}

func (r *eventRepo) Delete(ctx context.Context, ownerID, id string) (int64, error) {
	db := conn(ctx, r.db)
	tx := db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.Event{})
	if tx.Error != nil || tx.RowsAffected == 0 {
		return tx.RowsAffected, tx.Error
	}
	if err := db.Where("event_id = ?", id).Delete(&model.EventPartner{}).Error; err != nil {
		return 0, err
	}
	return tx.RowsAffected, nil
}
