package models

import (
	"strings"
	"time"
)

type Organization struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug         string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	ContactEmail string    `gorm:"type:varchar(255);not null" json:"contact_email"`
	OwnerID      uint64    `gorm:"not null" json:"owner_id"`
	InviteCode   string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}

// Ref places the organization at the root of the ownership chain.
func (o *Organization) Ref() Ref {
	return Ref{OrganizationID: o.ID}
}

// SlugFromName derives the default slug used when none is supplied: the
// lower-cased name with spaces and underscores turned into hyphens and any
// other punctuation dropped.
func SlugFromName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ', r == '_':
			b.WriteByte('-')
		}
	}
	return b.String()
}
