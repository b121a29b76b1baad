package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"healthassist-be/internal/constant"
	"healthassist-be/internal/dto"
	"healthassist-be/internal/pkg/logger"
	"healthassist-be/internal/repository/contract"
	"healthassist-be/internal/repository/implementation"
	"healthassist-be/internal/repository/memory"
	"healthassist-be/pkg/conversation"
	"healthassist-be/pkg/conversation/fallback"
	"healthassist-be/pkg/conversation/history"
	"healthassist-be/pkg/conversation/response"
	"healthassist-be/pkg/conversation/session"
	"healthassist-be/pkg/events"
	"healthassist-be/pkg/llm"
	"healthassist-be/pkg/lock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "alice@example.com"
	bob   = "bob@example.com"
)

type stubLLM struct {
	mu        sync.Mutex
	reply     string
	err       error
	histories [][]llm.Message
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories = append(s.histories, history)
	return s.reply, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: constant.LLMRoleUser, Content: prompt}}, opts...)
}

func (s *stubLLM) Name() string { return "stub" }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type failingLocker struct{}

func (failingLocker) Lock(ctx context.Context, key string) (lock.Unlock, error) {
	return nil, context.DeadlineExceeded
}

func newTestService(repo contract.ChatSessionRepository, provider llm.LLMProvider, locker lock.Locker, pub IPublisherService) IChatbotService {
	log := logger.NewNopLogger()
	generator := response.NewGenerator(provider, fallback.NewDefaultResponder(), "system", time.Second, log)
	return NewChatbotService(
		session.NewManager(repo, log),
		history.NewLoader(repo),
		generator,
		locker,
		50*time.Millisecond,
		pub,
		log,
	)
}

func send(t *testing.T, svc IChatbotService, owner, sessionId, text string) *dto.SendChatResponse {
	t.Helper()
	res, err := svc.SendMessage(context.Background(), owner, sessionId, &dto.SendChatRequest{Message: text})
	require.NoError(t, err)
	return res
}

func TestChatbotService_SendMessage_FallbackWhenBackendDown(t *testing.T) {
	repo := memory.NewChatSessionRepository()
	pub := &recordingPublisher{}
	svc := newTestService(repo, nil, lock.NewMemoryLocker(time.Minute), pub)

	res := send(t, svc, alice, "s1", "I have a fever")

	assert.Equal(t, "I have a fever", res.UserMessage)
	assert.Equal(t, fallback.NewDefaultResponder().Respond("fever"), res.BotResponse)

	msgs, err := svc.GetMessages(context.Background(), alice, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, constant.ChatSenderUser, msgs[0].Sender)
	assert.Equal(t, "I have a fever", msgs[0].Content)
	assert.Equal(t, constant.ChatSenderBot, msgs[1].Sender)
	assert.Equal(t, res.BotResponse, msgs[1].Content)

	stored, err := repo.FindMessagesOwned(context.Background(), alice, "s1")
	require.NoError(t, err)
	assert.Equal(t, constant.ReplySourceFallback, stored[1].Metadata["source"])

	assert.Equal(t, []string{events.MessageExchanged, events.FallbackUsed}, pub.types())
}

func TestChatbotService_SendMessage_HistoryExcludesCurrentText(t *testing.T) {
	provider := &stubLLM{reply: "Stay hydrated."}
	svc := newTestService(memory.NewChatSessionRepository(), provider, lock.NewMemoryLocker(time.Minute), nil)

	send(t, svc, alice, "s1", "first question")
	res := send(t, svc, alice, "s1", "second question")
	assert.Equal(t, "Stay hydrated.", res.BotResponse)

	require.Len(t, provider.histories, 2)
	// system + current text on the first call
	assert.Len(t, provider.histories[0], 2)
	// system + one prior pair + current text on the second
	second := provider.histories[1]
	require.Len(t, second, 4)
	assert.Equal(t, llm.Message{Role: constant.LLMRoleUser, Content: "first question"}, second[1])
	assert.Equal(t, llm.Message{Role: constant.LLMRoleAssistant, Content: "Stay hydrated."}, second[2])
	assert.Equal(t, llm.Message{Role: constant.LLMRoleUser, Content: "second question"}, second[3])
}

func TestChatbotService_SendMessage_Rejections(t *testing.T) {
	repo := memory.NewChatSessionRepository()
	svc := newTestService(repo, nil, lock.NewMemoryLocker(time.Minute), nil)
	send(t, svc, alice, "s1", "hello")

	tests := []struct {
		name      string
		owner     string
		sessionId string
		req       *dto.SendChatRequest
		wantErr   error
	}{
		{name: "empty message", owner: alice, sessionId: "s1", req: &dto.SendChatRequest{Message: ""}, wantErr: conversation.ErrNoMessageProvided},
		{name: "whitespace message", owner: alice, sessionId: "s1", req: &dto.SendChatRequest{Message: "  \n"}, wantErr: conversation.ErrNoMessageProvided},
		{name: "nil request", owner: alice, sessionId: "s1", req: nil, wantErr: conversation.ErrNoMessageProvided},
		{name: "no owner", owner: "", sessionId: "s1", req: &dto.SendChatRequest{Message: "hi"}, wantErr: conversation.ErrUnauthenticated},
		{name: "someone else's session", owner: bob, sessionId: "s1", req: &dto.SendChatRequest{Message: "hi"}, wantErr: conversation.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendMessage(context.Background(), tt.owner, tt.sessionId, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)

			msgs, err := repo.FindMessagesOwned(context.Background(), alice, "s1")
			require.NoError(t, err)
			assert.Len(t, msgs, 2)
		})
	}
}

func TestChatbotService_Availability(t *testing.T) {
	tests := []struct {
		name      string
		repo      contract.ChatSessionRepository
		provider  llm.LLMProvider
		wantReply string
		wantSaved int
	}{
		{name: "store up, backend up", repo: memory.NewChatSessionRepository(), provider: &stubLLM{reply: "LLM says rest"}, wantReply: "LLM says rest", wantSaved: 2},
		{name: "store up, backend down", repo: memory.NewChatSessionRepository(), provider: nil, wantReply: fallback.NewDefaultResponder().Respond("cough"), wantSaved: 2},
		{name: "store up, backend erroring", repo: memory.NewChatSessionRepository(), provider: &stubLLM{err: errors.New("503")}, wantReply: fallback.NewDefaultResponder().Respond("cough"), wantSaved: 2},
		{name: "store down, backend up", repo: implementation.NewUnavailableRepository(errors.New("refused")), provider: &stubLLM{reply: "LLM says rest"}, wantReply: "LLM says rest"},
		{name: "store down, backend down", repo: implementation.NewUnavailableRepository(errors.New("refused")), provider: nil, wantReply: fallback.NewDefaultResponder().Respond("cough")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.repo, tt.provider, lock.NewMemoryLocker(time.Minute), nil)

			res := send(t, svc, alice, "s1", "my cough is bad")
			assert.Equal(t, tt.wantReply, res.BotResponse)

			msgs, err := svc.GetMessages(context.Background(), alice, "s1")
			require.NoError(t, err)
			assert.Len(t, msgs, tt.wantSaved)

			deleted, err := svc.DeleteSession(context.Background(), alice, "s1")
			require.NoError(t, err)
			assert.Equal(t, "Session deleted", deleted.Message)
		})
	}
}

func TestChatbotService_SendMessage_LockTimeoutStillAnswers(t *testing.T) {
	svc := newTestService(memory.NewChatSessionRepository(), nil, failingLocker{}, nil)

	res := send(t, svc, alice, "s1", "headache")
	assert.NotEmpty(t, res.BotResponse)
}

func TestChatbotService_ConcurrentSendsKeepPairs(t *testing.T) {
	repo := memory.NewChatSessionRepository()
	svc := newTestService(repo, &stubLLM{reply: "ok"}, lock.NewMemoryLocker(time.Minute), nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SendMessage(context.Background(), alice, "s1", &dto.SendChatRequest{Message: "hello"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	msgs, err := repo.FindMessagesOwned(context.Background(), alice, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 20)
	for i := 0; i < len(msgs); i += 2 {
		assert.Equal(t, constant.ChatSenderUser, msgs[i].Sender)
		assert.Equal(t, constant.ChatSenderBot, msgs[i+1].Sender)
	}
}

func TestChatbotService_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestService(memory.NewChatSessionRepository(), nil, lock.NewMemoryLocker(time.Minute), pub)

	created, err := svc.CreateSession(ctx, alice, &dto.CreateSessionRequest{SessionId: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "s1", created.SessionId)
	assert.Equal(t, "created", created.Status)

	t.Run("duplicate create by owner is idempotent", func(t *testing.T) {
		again, err := svc.CreateSession(ctx, alice, &dto.CreateSessionRequest{SessionId: "s1"})
		require.NoError(t, err)
		assert.Equal(t, "s1", again.SessionId)

		list, err := svc.ListSessions(ctx, alice)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("duplicate create by another owner conflicts", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, bob, &dto.CreateSessionRequest{SessionId: "s1"})
		assert.ErrorIs(t, err, conversation.ErrSessionConflict)
	})

	t.Run("generated id", func(t *testing.T) {
		generated, err := svc.CreateSession(ctx, alice, nil)
		require.NoError(t, err)
		assert.Len(t, generated.SessionId, 20)
	})

	t.Run("list renders last_updated", func(t *testing.T) {
		list, err := svc.ListSessions(ctx, alice)
		require.NoError(t, err)
		require.NotEmpty(t, list)
		_, err = time.Parse(constant.LastUpdatedLayout, list[0].LastUpdated)
		assert.NoError(t, err)
	})

	t.Run("other owners see nothing", func(t *testing.T) {
		list, err := svc.ListSessions(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, list)

		msgs, err := svc.GetMessages(ctx, bob, "s1")
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("cross owner delete is not found", func(t *testing.T) {
		_, err := svc.DeleteSession(ctx, bob, "s1")
		assert.ErrorIs(t, err, conversation.ErrNotFound)

		list, err := svc.ListSessions(ctx, alice)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("owner delete", func(t *testing.T) {
		res, err := svc.DeleteSession(ctx, alice, "s1")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Message)

		_, err = svc.DeleteSession(ctx, alice, "s1")
		assert.ErrorIs(t, err, conversation.ErrNotFound)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, "", nil)
		assert.ErrorIs(t, err, conversation.ErrUnauthenticated)
		_, err = svc.ListSessions(ctx, "")
		assert.ErrorIs(t, err, conversation.ErrUnauthenticated)
		_, err = svc.GetMessages(ctx, "", "s1")
		assert.ErrorIs(t, err, conversation.ErrUnauthenticated)
		_, err = svc.DeleteSession(ctx, "", "s1")
		assert.ErrorIs(t, err, conversation.ErrUnauthenticated)
	})

	assert.Contains(t, pub.types(), events.SessionCreated)
	assert.Contains(t, pub.types(), events.SessionDeleted)
}
