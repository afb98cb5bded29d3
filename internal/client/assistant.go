package client

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const (
	chatSystemInstruction = "You are Krishi Bondhu, a friendly farming assistant for smallholder " +
		"farmers in Bangladesh. Answer practical questions about crops, fertilizer, pests and " +
		"weather in simple language, in Bengali and English."

	visionInstruction = "Analyze this plant image for diseases. Provide diagnosis and remedies " +
		"in Bengali and English."
)

// ChatTurn is one prior exchange in a conversation
type ChatTurn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// AssistantClient is the generative-AI passthrough: stateless chat and
// plant-image analysis. The prompt protocol is not designed here; the
// backend is an opaque collaborator.
type AssistantClient struct {
	llm llms.Model
}

func NewAssistantClient(ctx context.Context, apiKey, model string) (*AssistantClient, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize assistant backend: %w", err)
	}
	return &AssistantClient{llm: llm}, nil
}

// Chat sends the conversation history plus a new message and returns
// the model's reply.
func (c *AssistantClient) Chat(ctx context.Context, history []ChatTurn, message string) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, chatSystemInstruction))

	for _, turn := range history {
		role := llms.ChatMessageTypeHuman
		if turn.Role == "model" {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Text))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, message))

	resp, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat request returned no choices")
	}
	return resp.Choices[0].Content, nil
}

// AnalyzeImage sends a plant photo for disease diagnosis
func (c *AssistantClient) AnalyzeImage(ctx context.Context, mimeType string, image []byte) (string, error) {
	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, image),
				llms.TextPart(visionInstruction),
			},
		},
	}

	resp, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("image analysis failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("image analysis returned no choices")
	}
	return resp.Choices[0].Content, nil
}
