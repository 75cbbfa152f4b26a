package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ShareLink — ссылка с ограниченным сроком действия, открывающая часть событий владельца.
type ShareLink struct {
	ID      string `gorm:"primaryKey;type:text"`
	OwnerID string `gorm:"not null;index"`
	Token   string `gorm:"not null;uniqueIndex"`

	Name      *string
	ExpiresAt time.Time `gorm:"not null"`
	DateFrom  *time.Time `gorm:"type:date"`
	DateTo    *time.Time `gorm:"type:date"`

	// Белый список партнёров. Пустой список скрывает все события с партнёрами.
	IncludedPartnerIDs     IDList `gorm:"type:text;not null"`
	IncludeNoPartnerEvents bool   `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// URLPath возвращает относительный адрес публичной страницы ссылки.
func (l *ShareLink) URLPath() string {
	return "/share/" + l.Token
}

// Expired сообщает, истекла ли ссылка к моменту now.
func (l *ShareLink) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// IDList хранится в БД как JSON-массив строк.
type IDList []string

// Value реализует driver.Valuer.
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan реализует sql.Scanner.
func (l *IDList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = IDList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("IDList: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		*l = IDList{}
		return nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("IDList: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	*l = ids
	return nil
}

// Contains сообщает, есть ли id в списке.
func (l IDList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}
