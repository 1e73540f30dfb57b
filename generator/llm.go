package generator

import (
	"context"
	"fmt"
	"time"
)

// LLMClient 抽象大模型客户端，便于替换/Mock。Complete 只返回原始文本，不做重试。
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// 支持的 provider。deepseek/gemini 走 OpenAI 兼容接口，需填写 base_url。
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
	ProviderMock     = "mock"
)

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider       string
	Model          string
	APIKey         string
	BaseURL        string
	RequestTimeout time.Duration
}

// NewLLM 按 settings.Provider 构建客户端，仅在启动时调用一次；失败返回 *ConfigurationError。
func NewLLM(settings LLMSettings) (LLMClient, error) {
	switch settings.Provider {
	case ProviderMock:
		return MockLLM{}, nil
	case ProviderOpenAI:
		return newOpenAICompatible(settings)
	case ProviderDeepSeek, ProviderGemini:
		if settings.BaseURL == "" {
			return nil, &ConfigurationError{
				Reason: fmt.Sprintf("provider %s requires base_url (OpenAI-compatible endpoint)", settings.Provider),
			}
		}
		return newOpenAICompatible(settings)
	case "":
		return nil, &ConfigurationError{Reason: "llm.provider is empty"}
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("provider %s not supported", settings.Provider)}
	}
}

func newOpenAICompatible(settings LLMSettings) (LLMClient, error) {
	client, err := NewOpenAILLMFromConfig(&settings)
	if err != nil {
		return nil, err
	}
	return client, nil
}
