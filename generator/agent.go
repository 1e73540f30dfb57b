package generator

import (
	"context"
	"errors"
	"log/slog"

	"auto_slide_deck_generator/theme"
)

// Agent 负责根据 Spec 生成规范化的 Outline。启动时注入客户端后构建一次，可并发使用。
type Agent struct {
	llm         LLMClient
	retrier     *Retrier
	limits      Limits
	logger      *slog.Logger
	stripStrong bool
}

// AgentOption 调整 Agent 的可选行为。
type AgentOption func(*Agent)

// WithStrongEmphasisCleanup 去掉标题和要点里成对的 **…** 标记，文字本身不变。默认关闭。
func WithStrongEmphasisCleanup(enabled bool) AgentOption {
	return func(a *Agent) { a.stripStrong = enabled }
}

func NewAgent(llm LLMClient, retrier *Retrier, limits Limits, logger *slog.Logger, opts ...AgentOption) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if retrier == nil {
		retrier = &Retrier{MaxAttempts: 1}
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Agent{llm: llm, retrier: retrier, limits: limits, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Generate 校验 spec、请求模型大纲并规范化。
// 返回的 ThemeHints 按 theme.Select 的顺序排列：模型建议在前，其次是建议的关键词匹配，最后是正文的关键词匹配。
func (a *Agent) Generate(ctx context.Context, spec Spec) (Outline, error) {
	spec, err := a.limits.Apply(spec)
	if err != nil {
		return Outline{}, err
	}
	prompt := BuildOutlinePrompt(spec)

	raw, err := a.retrier.FetchOutlineText(ctx, func(ctx context.Context) (string, error) {
		return a.llm.Complete(ctx, prompt)
	})
	if err != nil {
		return Outline{}, err
	}

	outline, err := Normalize(raw, a.logger)
	if err != nil {
		var merr *MalformedOutlineError
		if errors.As(err, &merr) {
			a.logger.Error("model output unusable", "reason", merr.Reason, "excerpt", merr.Excerpt)
		}
		return Outline{}, err
	}
	if a.stripStrong {
		stripStrongOutline(outline)
	}
	outline.ThemeHints = theme.Hints(outline.ThemeHints, spec.Text)
	a.logger.Debug("outline ready", "slides", len(outline.Slides), "theme_hints", outline.ThemeHints)
	return outline, nil
}
