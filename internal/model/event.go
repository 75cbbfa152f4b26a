package model

import "time"

// TimeOfDay — время суток события.
type TimeOfDay string

const (
	TimeOfDayDay   TimeOfDay = "day"
	TimeOfDayNight TimeOfDay = "night"
)

// Valid сообщает, является ли значение допустимым.
func (t TimeOfDay) Valid() bool {
	return t == TimeOfDayDay || t == TimeOfDayNight
}

// Event — запись журнала пользователя.
type Event struct {
	ID      string `gorm:"primaryKey;type:text"`
	OwnerID string `gorm:"not null;index"`

	// Дата без времени, нормализованная к полуночи UTC
	Date      time.Time `gorm:"type:date;not null"`
	Intensity int       `gorm:"not null"`
	TimeOfDay TimeOfDay `gorm:"not null"`
	IsCycle   bool      `gorm:"not null"`
	Notes     *string

	// Связь многие-ко-многим через event_partners
	Partners []Partner `gorm:"many2many:event_partners;"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// PartnerIDs возвращает идентификаторы связанных партнёров.
func (e *Event) PartnerIDs() []string {
	ids := make([]string, 0, len(e.Partners))
	for _, p := range e.Partners {
		ids = append(ids, p.ID)
	}
	return ids
}

// EventPartner — строка ассоциативной таблицы. Пара (EventID, PartnerID) уникальна.
type EventPartner struct {
	EventID   string `gorm:"primaryKey"`
	PartnerID string `gorm:"primaryKey"`
}

func (EventPartner) TableName() string {
	return "event_partners"
}

// DateOnly отбрасывает время и приводит момент к полуночи UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
