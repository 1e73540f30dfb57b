package generator

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAILLM implements LLMClient with the official openai-go SDK (chat
// completions). The SDK's own retries are disabled; Retrier owns that policy.
type OpenAILLM struct {
	Provider string
	Model    string
	client   openai.Client
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, &ConfigurationError{Reason: "llm config is nil"}
	}
	if cfg.APIKey == "" {
		return nil, &ConfigurationError{Reason: "api key missing; set llm.api_key or OPENAI_API_KEY"}
	}
	if cfg.Model == "" {
		return nil, &ConfigurationError{Reason: "llm model is required"}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.RequestTimeout))
	}
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}
	return &OpenAILLM{
		Provider: provider,
		Model:    cfg.Model,
		client:   openai.NewClient(opts...),
	}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
	})
	if err != nil {
		return "", o.convertError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyContent
	}
	return resp.Choices[0].Message.Content, nil
}

// convertError maps SDK API errors onto ProviderError; transport errors pass
// through unchanged so Classify can inspect them.
func (o *OpenAILLM) convertError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	msg := strings.TrimSpace(apiErr.Message)
	if msg == "" && apiErr.Type != "" {
		msg = apiErr.Type
	}
	return &ProviderError{
		Provider:   o.Provider,
		StatusCode: apiErr.StatusCode,
		Message:    msg,
		Err:        err,
	}
}
