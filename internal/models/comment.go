package models

import "time"

type Comment struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	TaskID      uint64    `gorm:"not null" json:"task_id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	AuthorEmail string    `gorm:"type:varchar(255);not null" json:"author_email"`
	Timestamp   time.Time `gorm:"not null;autoCreateTime" json:"timestamp"`
	CreatorID   *uint64   `json:"creator_id"`

	// Relations
	Task    Task  `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
	Creator *User `gorm:"foreignKey:CreatorID;constraint:OnDelete:SET NULL" json:"-"`
}
