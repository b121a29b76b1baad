package memory

import (
	"context"
	"sort"
	"sync"

	"healthassist-be/internal/entity"
	"healthassist-be/internal/repository/contract"
)

type sessionRecord struct {
	session  entity.ChatSession
	messages []entity.ChatMessage
}

// ChatSessionRepository keeps sessions in process memory. It backs DB_DRIVER=memory
// and the terminal client; nothing survives a restart.
type ChatSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*sessionRecord
}

var _ contract.ChatSessionRepository = (*ChatSessionRepository)(nil)

func NewChatSessionRepository() *ChatSessionRepository {
	return &ChatSessionRepository{
		sessions: make(map[string]*sessionRecord),
	}
}

func (r *ChatSessionRepository) Create(ctx context.Context, session *entity.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.Id]; exists {
		return contract.ErrDuplicateSession
	}
	r.sessions[session.Id] = &sessionRecord{session: *session}
	return nil
}

func (r *ChatSessionRepository) FindByID(ctx context.Context, id string) (*entity.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	s := rec.session
	return &s, nil
}

func (r *ChatSessionRepository) FindOwned(ctx context.Context, owner, id string) (*entity.ChatSession, error) {
	s, err := r.FindByID(ctx, id)
	if err != nil || s == nil || s.Owner != owner {
		return nil, err
	}
	return s, nil
}

func (r *ChatSessionRepository) FindAllOwned(ctx context.Context, owner string) ([]*entity.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entity.ChatSession, 0)
	for _, rec := range r.sessions {
		if rec.session.Owner != owner {
			continue
		}
		s := rec.session
		result = append(result, &s)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].LastActivity.Equal(result[j].LastActivity) {
			return result[i].Id > result[j].Id
		}
		return result[i].LastActivity.After(result[j].LastActivity)
	})
	return result, nil
}

func (r *ChatSessionRepository) DeleteOwned(ctx context.Context, owner, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[id]
	if !ok || rec.session.Owner != owner {
		return false, nil
	}
	delete(r.sessions, id)
	return true, nil
}

func (r *ChatSessionRepository) AppendMessage(ctx context.Context, owner string, message *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[message.ChatSessionId]
	if !ok {
		rec = &sessionRecord{session: entity.ChatSession{
			Id:        message.ChatSessionId,
			Owner:     owner,
			CreatedAt: message.Timestamp,
		}}
		r.sessions[message.ChatSessionId] = rec
	}
	if rec.session.Owner != owner {
		return contract.ErrOwnerMismatch
	}

	message.Seq = int64(len(rec.messages)) + 1
	rec.messages = append(rec.messages, *message)
	rec.session.LastActivity = message.Timestamp
	return nil
}

func (r *ChatSessionRepository) FindMessagesOwned(ctx context.Context, owner, sessionId string) ([]*entity.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.sessions[sessionId]
	if !ok || rec.session.Owner != owner {
		return []*entity.ChatMessage{}, nil
	}
	result := make([]*entity.ChatMessage, len(rec.messages))
	for i := range rec.messages {
		msg := rec.messages[i]
		result[i] = &msg
	}
	return result, nil
}

func (r *ChatSessionRepository) Ping(ctx context.Context) error {
	return nil
}
