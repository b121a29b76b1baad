package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"healthassist-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider_Chat(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"gemma:2b","message":{"role":"assistant","content":"Ginger tea."},"done":true}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "gemma:2b")
	answer, err := p.Chat(context.Background(), []llm.Message{
		{Role: "user", Content: "nausea"},
		{Role: "bot", Content: "older reply"},
	}, llm.WithMaxTokens(64))

	require.NoError(t, err)
	assert.Equal(t, "Ginger tea.", answer)
	assert.Equal(t, "gemma:2b", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, 64, got.Options.NumPredict)
}

func TestOllamaProvider_ChatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "model not found")
}
