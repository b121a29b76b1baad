package history

import (
	"context"
	"strings"

	"healthassist-be/internal/constant"
	"healthassist-be/internal/entity"
	"healthassist-be/internal/repository/contract"
	"healthassist-be/pkg/llm"
)

// Loader turns stored session messages into the role-tagged sequence the
// generation backend expects.
type Loader struct {
	repo contract.ChatSessionRepository
}

// NewLoader creates a new history loader
func NewLoader(repo contract.ChatSessionRepository) *Loader {
	return &Loader{repo: repo}
}

// Load reads the owner's messages for sessionId and reconstructs them.
// It never writes, so calling it twice in one reply cycle is harmless.
func (l *Loader) Load(ctx context.Context, owner, sessionId string) ([]llm.Message, error) {
	stored, err := l.repo.FindMessagesOwned(ctx, owner, sessionId)
	if err != nil {
		return nil, err
	}
	return Reconstruct(stored), nil
}

// Reconstruct maps user messages to the user role and bot messages to the
// assistant role, keeping stored order. Blank legacy records are skipped.
func Reconstruct(stored []*entity.ChatMessage) []llm.Message {
	messages := make([]llm.Message, 0, len(stored))
	for _, msg := range stored {
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			continue
		}

		role := constant.LLMRoleAssistant
		if msg.Sender == constant.ChatSenderUser {
			role = constant.LLMRoleUser
		}
		messages = append(messages, llm.Message{
			Role:    role,
			Content: msg.Content,
		})
	}
	return messages
}
