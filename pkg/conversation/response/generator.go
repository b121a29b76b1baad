package response

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"healthassist-be/internal/constant"
	"healthassist-be/internal/pkg/logger"
	"healthassist-be/pkg/conversation"
	"healthassist-be/pkg/conversation/fallback"
	"healthassist-be/pkg/llm"
)

const logModule = "GENERATOR"

// Reply is the text handed back to the user plus how it was produced.
type Reply struct {
	Text     string
	Source   string // constant.ReplySourceLLM or constant.ReplySourceFallback
	Provider string
}

// Generator asks the LLM for a reply and drops to the keyword responder on any failure.
type Generator struct {
	llmProvider  llm.LLMProvider
	fallback     *fallback.Responder
	systemPrompt string
	timeout      time.Duration
	logger       logger.ILogger
}

// NewGenerator creates a new response generator. A nil provider means the
// backend never initialised; every call then goes straight to the fallback.
func NewGenerator(llmProvider llm.LLMProvider, responder *fallback.Responder, systemPrompt string, timeout time.Duration, log logger.ILogger) *Generator {
	if responder == nil {
		responder = fallback.NewDefaultResponder()
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Generator{
		llmProvider:  llmProvider,
		fallback:     responder,
		systemPrompt: systemPrompt,
		timeout:      timeout,
		logger:       log,
	}
}

// Available reports whether a generation backend was configured.
func (g *Generator) Available() bool {
	return g.llmProvider != nil
}

// Generate never fails: the returned reply text is always non-empty.
func (g *Generator) Generate(ctx context.Context, sessionId string, history []llm.Message, userText string) Reply {
	if g.llmProvider == nil {
		g.logger.Warn(logModule, "Using fallback response system", map[string]interface{}{
			"session_id": sessionId,
			"error":      conversation.ErrBackendUnavailable.Error(),
		})
		return g.fallbackReply(userText)
	}

	answer, err := g.invoke(ctx, sessionId, history, userText)
	if err != nil {
		g.logger.Error(logModule, "Error generating bot response", map[string]interface{}{
			"session_id": sessionId,
			"provider":   g.llmProvider.Name(),
			"error":      err.Error(),
		})
		return g.fallbackReply(userText)
	}

	formatted := FormatBullets(answer)
	g.logger.Debug(logModule, "Bot response generated", map[string]interface{}{
		"session_id": sessionId,
		"history":    len(history) + 1,
		"preview":    preview(formatted, 100),
	})
	return Reply{Text: formatted, Source: constant.ReplySourceLLM, Provider: g.llmProvider.Name()}
}

func (g *Generator) invoke(ctx context.Context, sessionId string, history []llm.Message, userText string) (string, error) {
	fullHistory := make([]llm.Message, 0, len(history)+2)
	if g.systemPrompt != "" {
		fullHistory = append(fullHistory, llm.Message{Role: constant.LLMRoleSystem, Content: g.systemPrompt})
	}
	fullHistory = append(fullHistory, history...)
	fullHistory = append(fullHistory, llm.Message{Role: constant.LLMRoleUser, Content: userText})

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: provider panic: %v", conversation.ErrBackendUnavailable, r)}
			}
		}()
		text, err := g.llmProvider.Chat(callCtx, fullHistory, llm.WithThreadID(sessionId))
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		if strings.TrimSpace(res.text) == "" {
			return "", errors.New("empty response from generation backend")
		}
		return res.text, nil
	case <-callCtx.Done():
		return "", fmt.Errorf("%w: %v", conversation.ErrBackendUnavailable, callCtx.Err())
	}
}

func (g *Generator) fallbackReply(userText string) Reply {
	return Reply{Text: g.fallback.Respond(userText), Source: constant.ReplySourceFallback}
}

// FormatBullets puts every "•" on its own line so plain-text clients keep the list shape.
func FormatBullets(answer string) string {
	return strings.ReplaceAll(answer, "•", "\n•")
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
