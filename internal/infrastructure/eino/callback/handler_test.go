package callback

import (
	"context"
	"errors"
	"testing"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"taleteller/internal/domain/service"
	"taleteller/pkg/metrics"
)

func TestChatModelHandlerCountsSuccess(t *testing.T) {
	h := newChatModelCallbackHandler()
	ctx := service.WithWorkflowProvider(context.Background(), "cb_test_success", "openai")
	counter := metrics.LLMCallTotal.WithLabelValues("cb_test_success", "openai", "gpt-test", "success")
	before := testutil.ToFloat64(counter)

	ctx = h.OnStart(ctx, &einocb.RunInfo{Name: "llm"}, &model.CallbackInput{Config: &model.Config{Model: "gpt-test"}})
	h.OnEnd(ctx, nil, &model.CallbackOutput{
		Message:    schema.AssistantMessage("ok", nil),
		TokenUsage: &model.TokenUsage{PromptTokens: 10, CompletionTokens: 5},
	})

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Equal(t, float64(10), testutil.ToFloat64(
		metrics.LLMTokensUsed.WithLabelValues("cb_test_success", "openai", "gpt-test", "prompt")))
}

func TestChatModelHandlerCountsErrorWithStartModel(t *testing.T) {
	h := newChatModelCallbackHandler()
	ctx := service.WithWorkflowProvider(context.Background(), "cb_test_error", "openai")
	counter := metrics.LLMCallTotal.WithLabelValues("cb_test_error", "openai", "gpt-test", "error")
	before := testutil.ToFloat64(counter)

	ctx = h.OnStart(ctx, nil, &model.CallbackInput{Config: &model.Config{Model: "gpt-test"}})
	h.OnError(ctx, nil, errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestElapsedWithoutStart(t *testing.T) {
	assert.Zero(t, elapsedSeconds(context.Background()))
}
