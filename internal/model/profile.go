package model

import "time"

// Profile — настройки и анкетные данные пользователя. Один профиль на владельца.
type Profile struct {
	ID      string `gorm:"primaryKey;type:text"`
	OwnerID string `gorm:"not null;uniqueIndex"`

	// Единственный указатель на партнёра по умолчанию
	DefaultPartnerID       *string
	IncludeNoPartnerEvents bool `gorm:"not null"`

	AgeRange      *string
	Location      *string
	BirthCountry  *string
	Sex           *string
	MaritalStatus *string

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// IsDefaultPartner сообщает, указывает ли профиль на данного партнёра.
func (p *Profile) IsDefaultPartner(partnerID string) bool {
	return p != nil && p.DefaultPartnerID != nil && *p.DefaultPartnerID == partnerID
}
