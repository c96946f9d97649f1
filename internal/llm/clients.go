package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Two distinct providers back the agent: the sales reply model (a
// Gemini-class model behind an OpenAI-compatible endpoint) and a cheaper
// DeepSeek-class model used only to rephrase qualifying questions. They stay
// separate clients because their fallback semantics are independent.

const (
	defaultGeminiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/openai"
	defaultGeminiModel     = "gemini-2.0-flash"
	defaultDeepSeekBaseURL = "https://api.deepseek.com/v1"
	defaultDeepSeekModel   = "deepseek-chat"
)

// ChatClient is a thin wrapper over an OpenAI-compatible chat endpoint
type ChatClient struct {
	client *openai.Client
	model  string
}

func newCompatClient(apiKey, baseURL, model string) *ChatClient {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	return &ChatClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// NewReplyClient creates the primary sales-reply client. Empty baseURL or
// model fall back to the Gemini defaults.
func NewReplyClient(apiKey, baseURL, model string) *ChatClient {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return newCompatClient(apiKey, baseURL, model)
}

// Complete performs a single non-streaming chat completion
func (c *ChatClient) Complete(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// RephraseClient rephrases qualifying questions with the secondary model
type RephraseClient struct {
	chat *ChatClient
}

// NewRephraseClient creates the secondary rephrasing client. Empty baseURL
// or model fall back to the DeepSeek defaults.
func NewRephraseClient(apiKey, baseURL, model string) *RephraseClient {
	if baseURL == "" {
		baseURL = defaultDeepSeekBaseURL
	}
	if model == "" {
		model = defaultDeepSeekModel
	}
	return &RephraseClient{chat: newCompatClient(apiKey, baseURL, model)}
}

const rephraseSystemPrompt = "Você reformula perguntas de qualificação de vendas para soarem naturais em uma conversa de WhatsApp em português. Mantenha o sentido da pergunta original, seja breve e cordial. Responda apenas com a pergunta reformulada."

// Rephrase asks the secondary model to rewrite the base question naturally
// given the conversation so far. Callers treat any error as a signal to use
// the base question verbatim.
func (r *RephraseClient) Rephrase(ctx context.Context, baseQuestion, conversationContext string) (string, error) {
	user := fmt.Sprintf("Contexto da conversa:\n%s\n\nPergunta a reformular: %s", conversationContext, baseQuestion)
	return r.chat.Complete(ctx, rephraseSystemPrompt, user, 120)
}
