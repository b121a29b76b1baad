package response

import (
	"context"
	"errors"
	"testing"
	"time"

	"healthassist-be/internal/constant"
	"healthassist-be/internal/pkg/logger"
	"healthassist-be/pkg/conversation/fallback"
	"healthassist-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	reply    string
	err      error
	delay    time.Duration
	panicMsg string

	gotHistory []llm.Message
	gotOptions llm.Options
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	s.gotHistory = history
	s.gotOptions = llm.Apply(llm.Options{}, opts...)
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.reply, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: constant.LLMRoleUser, Content: prompt}}, opts...)
}

func (s *stubProvider) Name() string { return "stub" }

func newTestGenerator(p llm.LLMProvider, timeout time.Duration) *Generator {
	return NewGenerator(p, fallback.NewDefaultResponder(), "system prompt", timeout, logger.NewNopLogger())
}

func TestGenerator_Generate(t *testing.T) {
	feverReply := fallback.NewDefaultResponder().Respond("fever")

	tests := []struct {
		name       string
		provider   *stubProvider
		nilBackend bool
		timeout    time.Duration
		wantText   string
		wantSource string
	}{
		{
			name:       "backend answers",
			provider:   &stubProvider{reply: "Drink water."},
			wantText:   "Drink water.",
			wantSource: constant.ReplySourceLLM,
		},
		{
			name:       "bullets on their own line",
			provider:   &stubProvider{reply: "Try:• rest• fluids"},
			wantText:   "Try:\n• rest\n• fluids",
			wantSource: constant.ReplySourceLLM,
		},
		{
			name:       "no backend configured",
			nilBackend: true,
			wantText:   feverReply,
			wantSource: constant.ReplySourceFallback,
		},
		{
			name:       "backend error",
			provider:   &stubProvider{err: errors.New("503")},
			wantText:   feverReply,
			wantSource: constant.ReplySourceFallback,
		},
		{
			name:       "empty answer",
			provider:   &stubProvider{reply: "  \n"},
			wantText:   feverReply,
			wantSource: constant.ReplySourceFallback,
		},
		{
			name:       "backend too slow",
			provider:   &stubProvider{reply: "late", delay: 200 * time.Millisecond},
			timeout:    20 * time.Millisecond,
			wantText:   feverReply,
			wantSource: constant.ReplySourceFallback,
		},
		{
			name:       "backend panics",
			provider:   &stubProvider{panicMsg: "boom"},
			wantText:   feverReply,
			wantSource: constant.ReplySourceFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p llm.LLMProvider
			if !tt.nilBackend {
				p = tt.provider
			}
			g := newTestGenerator(p, tt.timeout)

			reply := g.Generate(context.Background(), "s1", nil, "I have a fever")

			assert.Equal(t, tt.wantText, reply.Text)
			assert.Equal(t, tt.wantSource, reply.Source)
			assert.NotEmpty(t, reply.Text)
		})
	}
}

func TestGenerator_SendsPromptHistoryAndThread(t *testing.T) {
	p := &stubProvider{reply: "ok"}
	g := newTestGenerator(p, time.Second)
	history := []llm.Message{
		{Role: constant.LLMRoleUser, Content: "hi"},
		{Role: constant.LLMRoleAssistant, Content: "hello"},
	}

	reply := g.Generate(context.Background(), "thread-42", history, "and now?")

	require.Len(t, p.gotHistory, 4)
	assert.Equal(t, llm.Message{Role: constant.LLMRoleSystem, Content: "system prompt"}, p.gotHistory[0])
	assert.Equal(t, history[0], p.gotHistory[1])
	assert.Equal(t, history[1], p.gotHistory[2])
	assert.Equal(t, llm.Message{Role: constant.LLMRoleUser, Content: "and now?"}, p.gotHistory[3])
	assert.Equal(t, "thread-42", p.gotOptions.ThreadID)
	assert.Equal(t, "stub", reply.Provider)
}

func TestGenerator_Available(t *testing.T) {
	assert.False(t, newTestGenerator(nil, 0).Available())
	assert.True(t, newTestGenerator(&stubProvider{}, 0).Available())
}
