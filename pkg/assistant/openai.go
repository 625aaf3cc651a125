package assistant

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI implements Provider over the OpenAI chat completions API.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI-backed provider.
func NewOpenAI(cfg ProviderConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}

	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}

	return &OpenAI{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  model,
	}, nil
}

// Execute sends a completion request.
func (p *OpenAI) Execute(ctx context.Context, req Request) (*Response, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    messages,
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(req.Temperature),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &Response{
		Content:      resp.Choices[0].Message.Content,
		Model:        resp.Model,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}, nil
}

// Name returns the provider identifier.
func (p *OpenAI) Name() string { return "openai" }

// Model returns the configured model name.
func (p *OpenAI) Model() string { return p.model }
