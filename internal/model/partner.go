package model

import "time"

// Partner — партнёр пользователя. Признак «по умолчанию» здесь не хранится:
// он выводится из Profile.DefaultPartnerID.
type Partner struct {
	ID      string `gorm:"primaryKey;type:text"`
	OwnerID string `gorm:"not null;index"`

	Name      string `gorm:"not null"`
	Color     string `gorm:"not null"`
	IsVisible bool   `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
