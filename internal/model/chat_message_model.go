package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatMessage struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ChatSessionId string         `gorm:"type:varchar(128);not null;uniqueIndex:idx_chat_messages_session_seq"`
	Seq           int64          `gorm:"not null;uniqueIndex:idx_chat_messages_session_seq"`
	Sender        string         `gorm:"type:varchar(16);not null"`
	Content       string         `gorm:"type:text;not null"`
	Metadata      datatypes.JSON `gorm:"type:jsonb"`
	Timestamp     time.Time      `gorm:"not null"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
