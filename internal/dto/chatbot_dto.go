package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	SessionId string `json:"session_id" validate:"omitempty,max=128"`
}

type CreateSessionResponse struct {
	SessionId string `json:"session_id"`
	Status    string `json:"status"`
}

type GetAllSessionsResponse struct {
	SessionId   string `json:"session_id"`
	LastUpdated string `json:"last_updated"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type SendChatRequest struct {
	Message string `json:"message"`
}

type SendChatResponse struct {
	UserMessage string `json:"user_message"`
	BotResponse string `json:"bot_response"`
}

type DeleteSessionResponse struct {
	Message string `json:"message"`
}

// ChatEventMessage is what travels on the in-process event topic.
type ChatEventMessage struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// UnauthenticatedResponse is returned with HTTP 200 when no owner could be resolved.
type UnauthenticatedResponse struct {
	Authenticated bool   `json:"authenticated"`
	Error         string `json:"error"`
}
