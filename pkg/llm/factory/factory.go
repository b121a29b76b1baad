package factory

import (
	"errors"
	"fmt"
	"strings"

	"healthassist-be/pkg/llm"
	"healthassist-be/pkg/llm/ollama"
	"healthassist-be/pkg/llm/openaicompat"
)

const (
	ProviderGroq        = "groq"
	ProviderOllama      = "ollama"
	ProviderHuggingFace = "huggingface"

	defaultGroqBaseURL        = "https://api.groq.com/openai/v1"
	defaultHuggingFaceBaseURL = "https://router.huggingface.co/v1" // Default Router URL
	defaultOllamaBaseURL      = "http://localhost:11434"

	defaultGroqModel        = "llama-3.1-8b-instant"
	defaultHuggingFaceModel = "meta-llama/Llama-3.1-8B-Instruct"
	defaultOllamaModel      = "llama3"
)

// ErrMissingCredentials means the provider needs an API key that was not configured.
var ErrMissingCredentials = errors.New("missing LLM provider credentials")

type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// DefaultModel is the model used for provider when none is configured.
func DefaultModel(provider string) string {
	switch normalise(provider) {
	case ProviderGroq:
		return defaultGroqModel
	case ProviderHuggingFace:
		return defaultHuggingFaceModel
	case ProviderOllama:
		return defaultOllamaModel
	default:
		return ""
	}
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	provider := normalise(cfg.Provider)
	model := orDefault(strings.TrimSpace(cfg.Model), DefaultModel(provider))

	switch provider {
	case ProviderGroq:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: GROQ_API_KEY not set", ErrMissingCredentials)
		}
		return openaicompat.NewProvider(ProviderGroq, cfg.APIKey, orDefault(cfg.BaseURL, defaultGroqBaseURL), model), nil
	case ProviderHuggingFace:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: HUGGINGFACE_API_KEY not set", ErrMissingCredentials)
		}
		return openaicompat.NewProvider(ProviderHuggingFace, cfg.APIKey, orDefault(cfg.BaseURL, defaultHuggingFaceBaseURL), model), nil
	case ProviderOllama:
		return ollama.NewOllamaProvider(orDefault(cfg.BaseURL, defaultOllamaBaseURL), model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

func normalise(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
