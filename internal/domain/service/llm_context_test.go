package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelsDefaultToUnknown(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", WorkflowFromContext(ctx))
	assert.Equal(t, "unknown", ProviderFromContext(ctx))
	assert.Equal(t, "unknown", ModeFromContext(ctx))
}

func TestLabelsRoundTrip(t *testing.T) {
	ctx := WithWorkflowProvider(context.Background(), " grammar_check ", "openai")
	ctx = WithMode(ctx, "horror")

	assert.Equal(t, "grammar_check", WorkflowFromContext(ctx))
	assert.Equal(t, "openai", ProviderFromContext(ctx))
	assert.Equal(t, "horror", ModeFromContext(ctx))
}

func TestBlankLabelKeepsPrevious(t *testing.T) {
	ctx := WithWorkflow(context.Background(), "continue_scene")
	ctx = WithWorkflow(ctx, "   ")
	assert.Equal(t, "continue_scene", WorkflowFromContext(ctx))
}
