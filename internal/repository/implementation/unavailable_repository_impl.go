package implementation

import (
	"context"
	"fmt"

	"healthassist-be/internal/entity"
	"healthassist-be/internal/repository/contract"
)

// UnavailableRepository stands in for the store when the database could not be
// opened at start-up. Every call fails with contract.ErrStoreUnavailable.
type UnavailableRepository struct {
	cause error
}

func NewUnavailableRepository(cause error) contract.ChatSessionRepository {
	return &UnavailableRepository{cause: cause}
}

func (r *UnavailableRepository) err() error {
	if r.cause == nil {
		return contract.ErrStoreUnavailable
	}
	return fmt.Errorf("%w: %v", contract.ErrStoreUnavailable, r.cause)
}

func (r *UnavailableRepository) Create(ctx context.Context, session *entity.ChatSession) error {
	return r.err()
}

func (r *UnavailableRepository) FindByID(ctx context.Context, id string) (*entity.ChatSession, error) {
	return nil, r.err()
}

func (r *UnavailableRepository) FindOwned(ctx context.Context, owner, id string) (*entity.ChatSession, error) {
	return nil, r.err()
}

func (r *UnavailableRepository) FindAllOwned(ctx context.Context, owner string) ([]*entity.ChatSession, error) {
	return nil, r.err()
}

func (r *UnavailableRepository) DeleteOwned(ctx context.Context, owner, id string) (bool, error) {
	return false, r.err()
}

func (r *UnavailableRepository) AppendMessage(ctx context.Context, owner string, message *entity.ChatMessage) error {
	return r.err()
}

func (r *UnavailableRepository) FindMessagesOwned(ctx context.Context, owner, sessionId string) ([]*entity.ChatMessage, error) {
	return nil, r.err()
}

func (r *UnavailableRepository) Ping(ctx context.Context) error {
	return r.err()
}
