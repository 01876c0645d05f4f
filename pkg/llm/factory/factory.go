package factory

import (
	"fmt"
	"strings"

	"socioscope-be/pkg/llm"
	"socioscope-be/pkg/llm/groq"
	"socioscope-be/pkg/llm/ollama"
)

// NewLLMProvider builds a provider from a "provider:model" identifier,
// e.g. "groq:qwen/qwen3-32b" or "ollama:llama3". The model part is passed
// through untouched, so slashes inside model names are fine.
func NewLLMProvider(modelID, ollamaBaseURL, groqAPIKey string) (llm.LLMProvider, error) {
	provider, model, found := strings.Cut(modelID, ":")
	if !found || model == "" {
		return nil, fmt.Errorf("invalid model identifier %q, expected provider:model", modelID)
	}

	switch provider {
	case "groq":
		if groqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is required for the groq provider")
		}
		return groq.NewGroqProvider(groqAPIKey, model), nil
	case "ollama":
		return ollama.NewOllamaProvider(ollamaBaseURL, model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
