package chain

import (
	"context"
	"fmt"
	"strings"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "taleteller/internal/domain/service"
	wfnode "taleteller/internal/workflow/node"
	workflowprompt "taleteller/internal/workflow/prompt"
	"taleteller/pkg/logger"
)

var defaultPromptRegistry = workflowprompt.NewRegistry()

// ModelFactory 按提供商名获取 ChatModel；名称为空时使用默认提供商
type ModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}

// jsonChainDef 描述一条 “模板 -> LLM(json_schema) -> 输出” 的链
type jsonChainDef[I any] struct {
	name        string
	prompt      workflowprompt.PromptID
	schemaName  string
	schema      map[string]any
	temperature float32
	vars        func(in I) map[string]any
	provider    func(in I) string
	model       func(in I) string
}

type jsonChainState[I any] struct {
	In       I
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func buildJSONChain[I any](ctx context.Context, factory ModelFactory, def jsonChainDef[I]) (compose.Runnable[I, *schema.Message], error) {
	chain := compose.NewChain[I, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, in I) (*jsonChainState[I], error) {
			msgs, err := formatMessages(ctx, def.prompt, def.vars(in))
			if err != nil {
				return nil, err
			}
			return &jsonChainState[I]{In: in, Messages: msgs}, nil
		}),
		compose.WithNodeName(def.name+".template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *jsonChainState[I]) (*jsonChainState[I], error) {
			if st == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			provider := strings.TrimSpace(def.provider(st.In))
			modelName := strings.TrimSpace(def.model(st.In))
			ctx = llmctx.WithWorkflowProvider(ctx, def.name, provider)
			chatModel, err := factory.Get(ctx, provider)
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, def.options(modelName, true)...)
			if err != nil && wfnode.SchemaUnsupported(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"workflow", def.name,
					"provider", provider,
					"model", modelName,
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, def.options(modelName, false)...)
			}
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName(def.name+".llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *jsonChainState[I]) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName(def.name+".finalize"),
	)

	return chain.Compile(ctx)
}

func (def jsonChainDef[I]) options(modelName string, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 3)
	if def.temperature > 0 {
		opts = append(opts, model.WithTemperature(def.temperature))
	}
	if modelName != "" {
		opts = append(opts, model.WithModel(modelName))
	}
	if enableSchema && def.schema != nil {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   def.schemaName,
					"strict": false,
					"schema": def.schema,
				},
			},
		}))
	}
	return opts
}

func formatMessages(ctx context.Context, id workflowprompt.PromptID, vars map[string]any) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(id)
	if err != nil {
		return nil, err
	}
	return tpl.Format(ctx, vars)
}
