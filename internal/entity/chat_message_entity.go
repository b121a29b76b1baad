package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId string
	Seq           int64
	Sender        string
	Content       string
	Metadata      map[string]interface{}
	Timestamp     time.Time
}
