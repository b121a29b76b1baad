package constant

const (
	ChatSenderUser = "user"
	ChatSenderBot  = "bot"

	LLMRoleUser      = "user"
	LLMRoleAssistant = "assistant"
	LLMRoleSystem    = "system"

	ReplySourceLLM      = "llm"
	ReplySourceFallback = "fallback"

	// Session ids generated server-side: UTC, microsecond resolution, digits only.
	SessionIdLayout = "20060102150405.000000"

	// Rendering used by the session list.
	LastUpdatedLayout = "2006-01-02 15:04:05"

	// Groq Configuration (OpenAI compatible)
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

	HealthAssistSystemPrompt = "You are a healthcare bot. Your job is to advice homely remedies to patients who contact you. If the query seems too serious you should advice to seek professional help."

	UnauthenticatedMessage = "Not authenticated. Please log in."
	NoMessageProvided      = "No message provided"
	SessionNotFound        = "Session not found"
)
