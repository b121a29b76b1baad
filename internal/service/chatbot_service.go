package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"healthassist-be/internal/constant"
	"healthassist-be/internal/dto"
	"healthassist-be/internal/pkg/logger"
	"healthassist-be/pkg/conversation"
	"healthassist-be/pkg/conversation/history"
	"healthassist-be/pkg/conversation/response"
	"healthassist-be/pkg/conversation/session"
	"healthassist-be/pkg/events"
	"healthassist-be/pkg/lock"
)

const chatbotModule = "CHATBOT"

// IChatbotService defines the chatbot service interface
type IChatbotService interface {
	CreateSession(ctx context.Context, owner string, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	ListSessions(ctx context.Context, owner string) ([]*dto.GetAllSessionsResponse, error)
	GetMessages(ctx context.Context, owner string, sessionId string) ([]*dto.GetChatHistoryResponse, error)
	SendMessage(ctx context.Context, owner string, sessionId string, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	DeleteSession(ctx context.Context, owner string, sessionId string) (*dto.DeleteSessionResponse, error)
}

// chatbotService coordinates domain components
type chatbotService struct {
	sessionManager    *session.Manager
	historyLoader     *history.Loader
	responseGenerator *response.Generator
	locker            lock.Locker
	lockTimeout       time.Duration
	publisher         IPublisherService
	logger            logger.ILogger
}

// NewChatbotService creates a new chatbot service with all domain components.
// publisher may be nil.
func NewChatbotService(
	sessionManager *session.Manager,
	historyLoader *history.Loader,
	responseGenerator *response.Generator,
	locker lock.Locker,
	lockTimeout time.Duration,
	publisher IPublisherService,
	log logger.ILogger,
) IChatbotService {
	return &chatbotService{
		sessionManager:    sessionManager,
		historyLoader:     historyLoader,
		responseGenerator: responseGenerator,
		locker:            locker,
		lockTimeout:       lockTimeout,
		publisher:         publisher,
		logger:            log,
	}
}

func (s *chatbotService) CreateSession(ctx context.Context, owner string, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	requestedId := ""
	if request != nil {
		requestedId = request.SessionId
	}

	chatSession, err := s.sessionManager.Create(ctx, owner, requestedId)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewSessionCreated(chatSession.Id, owner))

	return &dto.CreateSessionResponse{
		SessionId: chatSession.Id,
		Status:    "created",
	}, nil
}

func (s *chatbotService) ListSessions(ctx context.Context, owner string) ([]*dto.GetAllSessionsResponse, error) {
	sessions, err := s.sessionManager.List(ctx, owner)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, chatSession := range sessions {
		res = append(res, &dto.GetAllSessionsResponse{
			SessionId:   chatSession.Id,
			LastUpdated: chatSession.LastActivity.UTC().Format(constant.LastUpdatedLayout),
		})
	}
	return res, nil
}

func (s *chatbotService) GetMessages(ctx context.Context, owner string, sessionId string) ([]*dto.GetChatHistoryResponse, error) {
	messages, err := s.sessionManager.Messages(ctx, owner, sessionId)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		res = append(res, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Sender:    msg.Sender,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}
	return res, nil
}

// SendMessage stores the user's text, generates a reply from the prior history
// and stores that too. Persistence failures are logged; the user always gets
// an answer.
func (s *chatbotService) SendMessage(ctx context.Context, owner string, sessionId string, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	if owner == "" {
		return nil, conversation.ErrUnauthenticated
	}
	if strings.TrimSpace(sessionId) == "" {
		return nil, conversation.ErrNotFound
	}
	if request == nil || strings.TrimSpace(request.Message) == "" {
		return nil, conversation.ErrNoMessageProvided
	}
	userText := request.Message

	if err := s.sessionManager.Confirm(ctx, owner, sessionId); err != nil {
		return nil, err
	}

	unlock := s.acquire(ctx, sessionId)
	defer unlock()

	// History is read before the new message is stored so it is not sent twice
	priorHistory, err := s.historyLoader.Load(ctx, owner, sessionId)
	if err != nil {
		s.logger.Warn(chatbotModule, "Failed to load history, continuing without it", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		priorHistory = nil
	}

	if _, err := s.sessionManager.Append(ctx, owner, sessionId, userText, constant.ChatSenderUser, nil); err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			return nil, err
		}
		s.logger.Error(chatbotModule, "Failed to store user message", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}

	reply := s.responseGenerator.Generate(ctx, sessionId, priorHistory, userText)

	metadata := map[string]interface{}{"source": reply.Source}
	if reply.Provider != "" {
		metadata["provider"] = reply.Provider
	}
	if _, err := s.sessionManager.Append(ctx, owner, sessionId, reply.Text, constant.ChatSenderBot, metadata); err != nil {
		s.logger.Error(chatbotModule, "Failed to store bot response", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}

	s.publish(ctx, events.NewMessageExchanged(sessionId, owner, reply.Source, len([]rune(userText)), len([]rune(reply.Text))))
	if reply.Source == constant.ReplySourceFallback {
		s.publish(ctx, events.NewFallbackUsed(sessionId, owner))
	}

	return &dto.SendChatResponse{
		UserMessage: userText,
		BotResponse: reply.Text,
	}, nil
}

func (s *chatbotService) DeleteSession(ctx context.Context, owner string, sessionId string) (*dto.DeleteSessionResponse, error) {
	if err := s.sessionManager.Delete(ctx, owner, sessionId); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewSessionDeleted(sessionId, owner))

	return &dto.DeleteSessionResponse{Message: "Session deleted"}, nil
}

// acquire takes the per-session lock. When it cannot be had in time the send
// goes ahead unserialised.
func (s *chatbotService) acquire(ctx context.Context, sessionId string) lock.Unlock {
	noop := func() {}
	if s.locker == nil {
		return noop
	}

	lockCtx := ctx
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}

	unlock, err := s.locker.Lock(lockCtx, sessionId)
	if err != nil {
		s.logger.Warn(chatbotModule, "Session lock not acquired, proceeding", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return noop
	}
	return unlock
}

func (s *chatbotService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(chatbotModule, "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
