package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"taleteller/internal/domain/entity"
	llmctx "taleteller/internal/domain/service"
	wfmodel "taleteller/internal/workflow/model"
	wfnode "taleteller/internal/workflow/node"
	workflowprompt "taleteller/internal/workflow/prompt"
)

// 工作流名称，用于指标与追踪
const (
	WorkflowGrammarCheck  = "grammar_check"
	WorkflowPlotChoices   = "generate_choices"
	WorkflowContinueScene = "continue_scene"
)

// GrammarChain 语法检查
type GrammarChain struct {
	factory ModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.GrammarCheckInput, *schema.Message]
	chainErr  error
}

func NewGrammarChain(factory ModelFactory) *GrammarChain {
	return &GrammarChain{factory: factory}
}

func (c *GrammarChain) Invoke(ctx context.Context, in *wfmodel.GrammarCheckInput) (*entity.SuggestionSet, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, fmt.Errorf("text is required")
	}

	c.chainOnce.Do(func() {
		c.chain, c.chainErr = buildJSONChain(context.Background(), c.factory, jsonChainDef[*wfmodel.GrammarCheckInput]{
			name:        WorkflowGrammarCheck,
			prompt:      workflowprompt.PromptGrammarCheckV1,
			schemaName:  "grammar_check",
			schema:      grammarJSONSchema(),
			temperature: 0.2,
			vars: func(in *wfmodel.GrammarCheckInput) map[string]any {
				return map[string]any{
					"mode":             string(in.Mode),
					"mode_description": in.Mode.Info().Description,
					"text":             in.Text,
				}
			},
			provider: func(in *wfmodel.GrammarCheckInput) string { return in.Provider },
			model:    func(in *wfmodel.GrammarCheckInput) string { return in.Model },
		})
	})
	if c.chainErr != nil {
		return nil, c.chainErr
	}

	out, err := c.chain.Invoke(ctx, in)
	if err != nil {
		return nil, err
	}
	return ParseSuggestionSet(out.Content)
}

// ParseSuggestionSet 解析语法检查结果
func ParseSuggestionSet(content string) (*entity.SuggestionSet, error) {
	raw := wfnode.ExtractJSON(content)
	var set entity.SuggestionSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return nil, fmt.Errorf("parse grammar result: %w", err)
	}
	if set.HasIssues && strings.TrimSpace(set.ImprovedVersion) == "" && len(set.Suggestions) == 0 {
		return nil, fmt.Errorf("parse grammar result: issues reported without corrections")
	}
	set.Normalize()
	return &set, nil
}

// ChoicesChain 剧情分支选项
type ChoicesChain struct {
	factory ModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.PlotChoicesInput, *schema.Message]
	chainErr  error
}

func NewChoicesChain(factory ModelFactory) *ChoicesChain {
	return &ChoicesChain{factory: factory}
}

func (c *ChoicesChain) Invoke(ctx context.Context, in *wfmodel.PlotChoicesInput) ([]entity.Choice, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.StoryContext) == "" {
		return nil, fmt.Errorf("story context is required")
	}
	if in.Count <= 0 {
		return nil, fmt.Errorf("count is required")
	}

	c.chainOnce.Do(func() {
		c.chain, c.chainErr = buildJSONChain(context.Background(), c.factory, jsonChainDef[*wfmodel.PlotChoicesInput]{
			name:        WorkflowPlotChoices,
			prompt:      workflowprompt.PromptPlotChoicesV1,
			schemaName:  "plot_choices",
			schema:      choicesJSONSchema(),
			temperature: 0.9,
			vars: func(in *wfmodel.PlotChoicesInput) map[string]any {
				current := strings.TrimSpace(in.CurrentScene)
				if current == "" {
					current = "(not provided)"
				}
				return map[string]any{
					"mode":             string(in.Mode),
					"mode_description": in.Mode.Info().Description,
					"count":            in.Count,
					"story_context":    in.StoryContext,
					"current_scene":    current,
				}
			},
			provider: func(in *wfmodel.PlotChoicesInput) string { return in.Provider },
			model:    func(in *wfmodel.PlotChoicesInput) string { return in.Model },
		})
	})
	if c.chainErr != nil {
		return nil, c.chainErr
	}

	out, err := c.chain.Invoke(ctx, in)
	if err != nil {
		return nil, err
	}
	return ParseChoices(out.Content)
}

// ParseChoices 解析分支选项，兼容对象与裸数组两种形式
func ParseChoices(content string) ([]entity.Choice, error) {
	raw := wfnode.ExtractJSON(content)
	if strings.HasPrefix(raw, "[") {
		var list []entity.Choice
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, fmt.Errorf("parse choices: %w", err)
		}
		return list, nil
	}
	var out wfmodel.PlotChoicesOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parse choices: %w", err)
	}
	return out.Choices, nil
}

// ContinuationChain 按所选方向续写场景
type ContinuationChain struct {
	factory ModelFactory
}

func NewContinuationChain(factory ModelFactory) *ContinuationChain {
	return &ContinuationChain{factory: factory}
}

func (c *ContinuationChain) Invoke(ctx context.Context, in *wfmodel.ContinueSceneInput) (string, error) {
	if c == nil || c.factory == nil {
		return "", fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return "", fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.SelectedChoice) == "" {
		return "", fmt.Errorf("selected choice is required")
	}

	provider := strings.TrimSpace(in.Provider)
	ctx = llmctx.WithWorkflowProvider(ctx, WorkflowContinueScene, provider)
	chatModel, err := c.factory.Get(ctx, provider)
	if err != nil {
		return "", err
	}

	msgs, err := formatMessages(ctx, workflowprompt.PromptContinueSceneV1, map[string]any{
		"mode":             string(in.Mode),
		"mode_description": in.Mode.Info().Description,
		"story_context":    in.StoryContext,
		"selected_choice":  strings.TrimSpace(in.SelectedChoice),
	})
	if err != nil {
		return "", err
	}

	opts := []model.Option{model.WithTemperature(0.9)}
	if m := strings.TrimSpace(in.Model); m != "" {
		opts = append(opts, model.WithModel(m))
	}
	outMsg, err := chatModel.Generate(ctx, msgs, opts...)
	if err != nil {
		return "", err
	}
	if outMsg == nil {
		return "", fmt.Errorf("empty llm response")
	}
	text := CleanContinuation(outMsg.Content)
	if text == "" {
		return "", fmt.Errorf("empty continuation")
	}
	return text, nil
}

// CleanContinuation 去掉模型偶尔附加的代码块围栏与整体引号
func CleanContinuation(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' && !strings.Contains(s[1:len(s)-1], "\"") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func grammarJSONSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"hasIssues", "suggestions"},
		"properties": map[string]any{
			"hasIssues":       map[string]any{"type": "boolean"},
			"improvedVersion": map[string]any{"type": "string"},
			"suggestions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"original", "suggested", "reason"},
					"properties": map[string]any{
						"original":  map[string]any{"type": "string"},
						"suggested": map[string]any{"type": "string"},
						"reason":    map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}

func choicesJSONSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"choices"},
		"properties": map[string]any{
			"choices": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"id", "title", "description"},
					"properties": map[string]any{
						"id":          map[string]any{"type": "integer"},
						"title":       map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}
