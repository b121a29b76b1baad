package model

import (
	"time"
)

type ChatSession struct {
	Id           string    `gorm:"type:varchar(128);primaryKey"`
	Owner        string    `gorm:"type:varchar(255);not null;index"` // Ownership for data isolation
	CreatedAt    time.Time `gorm:"not null"`
	LastActivity time.Time `gorm:"not null;index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
