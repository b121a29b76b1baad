package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"healthassist-be/internal/constant"
	"healthassist-be/internal/entity"
	"healthassist-be/internal/pkg/logger"
	"healthassist-be/internal/repository/contract"
	"healthassist-be/pkg/conversation"

	"github.com/google/uuid"
)

const logModule = "SESSION"

// Manager owns session creation, listing, deletion and message appends.
// Reads degrade to empty results when the store is down; ownership
// failures surface as conversation.ErrNotFound.
type Manager struct {
	repo   contract.ChatSessionRepository
	logger logger.ILogger
	now    func() time.Time
}

// NewManager creates a new session manager
func NewManager(repo contract.ChatSessionRepository, log logger.ILogger) *Manager {
	return &Manager{
		repo:   repo,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// NewSessionID returns a timestamp-derived id (UTC, microseconds, digits only).
func NewSessionID(t time.Time) string {
	return strings.ReplaceAll(t.UTC().Format(constant.SessionIdLayout), ".", "")
}

// Create registers a session for owner. Re-creating an id the owner already
// holds returns the existing session untouched; an id held by someone else
// yields conversation.ErrSessionConflict.
func (m *Manager) Create(ctx context.Context, owner string, requestedId string) (*entity.ChatSession, error) {
	if owner == "" {
		return nil, conversation.ErrUnauthenticated
	}

	now := m.now()
	id := strings.TrimSpace(requestedId)
	if id == "" {
		id = NewSessionID(now)
	}

	chatSession := &entity.ChatSession{
		Id:           id,
		Owner:        owner,
		CreatedAt:    now,
		LastActivity: now,
	}

	err := m.repo.Create(ctx, chatSession)
	if err == nil {
		m.logger.Info(logModule, "Chat session created", map[string]interface{}{"session_id": id, "owner": owner})
		return chatSession, nil
	}

	if errors.Is(err, contract.ErrDuplicateSession) {
		existing, findErr := m.repo.FindOwned(ctx, owner, id)
		if findErr != nil {
			return nil, findErr
		}
		if existing != nil {
			return existing, nil
		}
		return nil, conversation.ErrSessionConflict
	}

	if errors.Is(err, contract.ErrStoreUnavailable) {
		// Nothing was persisted; the first append will create it once the store is back.
		m.logger.Warn(logModule, "Store unavailable, session not persisted", map[string]interface{}{"session_id": id, "error": err.Error()})
		return chatSession, nil
	}

	return nil, err
}

// Confirm checks that sessionId is either unused or held by owner, so a send
// may proceed. Sessions are created lazily by the first Append. A store
// outage is logged and treated as confirmed.
func (m *Manager) Confirm(ctx context.Context, owner, sessionId string) error {
	if owner == "" {
		return conversation.ErrUnauthenticated
	}

	existing, err := m.repo.FindByID(ctx, sessionId)
	if err != nil {
		m.logger.Warn(logModule, "Could not confirm session ownership", map[string]interface{}{"session_id": sessionId, "error": err.Error()})
		return nil
	}
	if existing != nil && existing.Owner != owner {
		return conversation.ErrNotFound
	}
	return nil
}

// List returns the owner's sessions, most recently active first.
func (m *Manager) List(ctx context.Context, owner string) ([]*entity.ChatSession, error) {
	if owner == "" {
		return nil, conversation.ErrUnauthenticated
	}

	sessions, err := m.repo.FindAllOwned(ctx, owner)
	if err != nil {
		m.logger.Error(logModule, "Failed to get sessions", map[string]interface{}{"owner": owner, "error": err.Error()})
		return []*entity.ChatSession{}, nil
	}
	return sessions, nil
}

// Delete removes the session and its messages if owner holds it. A store
// outage is logged and reported as success.
func (m *Manager) Delete(ctx context.Context, owner, sessionId string) error {
	if owner == "" {
		return conversation.ErrUnauthenticated
	}

	deleted, err := m.repo.DeleteOwned(ctx, owner, sessionId)
	if errors.Is(err, contract.ErrStoreUnavailable) {
		// Nothing can be removed; the caller still gets a confirmation.
		m.logger.Warn(logModule, "Store unavailable, session not deleted", map[string]interface{}{"session_id": sessionId, "error": err.Error()})
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionId, err)
	}
	if !deleted {
		return conversation.ErrNotFound
	}
	m.logger.Info(logModule, "Chat session deleted", map[string]interface{}{"session_id": sessionId, "owner": owner})
	return nil
}

// Messages returns the owner's messages for sessionId in stored order; empty
// when the session is missing, owned by someone else, or the store is down.
func (m *Manager) Messages(ctx context.Context, owner, sessionId string) ([]*entity.ChatMessage, error) {
	if owner == "" {
		return nil, conversation.ErrUnauthenticated
	}

	messages, err := m.repo.FindMessagesOwned(ctx, owner, sessionId)
	if err != nil {
		m.logger.Error(logModule, "Failed to get messages", map[string]interface{}{"session_id": sessionId, "error": err.Error()})
		return []*entity.ChatMessage{}, nil
	}
	return messages, nil
}

// Append stores one message, creating the session for owner if needed.
func (m *Manager) Append(ctx context.Context, owner, sessionId, content, sender string, metadata map[string]interface{}) (*entity.ChatMessage, error) {
	if owner == "" {
		return nil, conversation.ErrUnauthenticated
	}

	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		Sender:        sender,
		Content:       content,
		Metadata:      metadata,
		Timestamp:     m.now(),
	}

	if err := m.repo.AppendMessage(ctx, owner, msg); err != nil {
		if errors.Is(err, contract.ErrOwnerMismatch) {
			return nil, conversation.ErrNotFound
		}
		return nil, err
	}
	return msg, nil
}
