package entity

import (
	"time"
)

type ChatSession struct {
	Id           string
	Owner        string
	CreatedAt    time.Time
	LastActivity time.Time
}
