package contract

import (
	"context"
	"errors"

	"healthassist-be/internal/entity"
)

var (
	// ErrStoreUnavailable is returned by every operation when the persistence backend could not be reached.
	ErrStoreUnavailable = errors.New("chat store unavailable")
	// ErrDuplicateSession is returned by Create when the session id is already taken.
	ErrDuplicateSession = errors.New("chat session already exists")
	// ErrOwnerMismatch is returned by AppendMessage when the session belongs to someone else.
	ErrOwnerMismatch = errors.New("chat session owned by another user")
)

// ChatSessionRepository is the document-style store behind sessions and their messages.
// Find* methods return nil, nil when nothing matches.
type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	FindByID(ctx context.Context, id string) (*entity.ChatSession, error)
	FindOwned(ctx context.Context, owner, id string) (*entity.ChatSession, error)
	FindAllOwned(ctx context.Context, owner string) ([]*entity.ChatSession, error) // last_activity desc
	DeleteOwned(ctx context.Context, owner, id string) (bool, error)

	// AppendMessage upserts the session for owner, assigns the next sequence number,
	// stores the message and bumps last_activity, all atomically.
	AppendMessage(ctx context.Context, owner string, message *entity.ChatMessage) error
	FindMessagesOwned(ctx context.Context, owner, sessionId string) ([]*entity.ChatMessage, error) // seq asc

	Ping(ctx context.Context) error
}
