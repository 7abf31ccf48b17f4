package prompt

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryFormatsAllPrompts(t *testing.T) {
	r := NewRegistry()
	vars := map[string]any{
		"mode":             "horror",
		"mode_description": "Spine-chilling tales of terror",
		"text":             "The door creeked {open}.",
		"count":            3,
		"story_context":    "The door creaked.",
		"current_scene":    "The door creaked.",
		"selected_choice":  "Flee down the hall",
	}

	for _, id := range []PromptID{PromptGrammarCheckV1, PromptPlotChoicesV1, PromptContinueSceneV1} {
		tpl, err := r.ChatTemplate(id)
		require.NoError(t, err, id)

		msgs, err := tpl.Format(context.Background(), vars)
		require.NoError(t, err, id)
		require.Len(t, msgs, 2)
		assert.Equal(t, schema.System, msgs[0].Role)
		assert.Equal(t, schema.User, msgs[1].Role)
		assert.Contains(t, msgs[0].Content, "horror")
		assert.NotContains(t, msgs[0].Content, "{{")
	}
}

func TestRegistryGrammarKeepsUserBraces(t *testing.T) {
	tpl, err := NewRegistry().ChatTemplate(PromptGrammarCheckV1)
	require.NoError(t, err)

	msgs, err := tpl.Format(context.Background(), map[string]any{
		"mode": "fantasy", "mode_description": "x", "text": "A {strange} rune.",
	})
	require.NoError(t, err)
	assert.Contains(t, msgs[1].Content, "A {strange} rune.")
	assert.Contains(t, msgs[0].Content, `"hasIssues"`)
}

func TestRegistryCachesTemplates(t *testing.T) {
	r := NewRegistry()
	a, err := r.ChatTemplate(PromptPlotChoicesV1)
	require.NoError(t, err)
	b, err := r.ChatTemplate(PromptPlotChoicesV1)
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = r.ChatTemplate("nope")
	assert.Error(t, err)
}

func TestRegistryLoadsEmbeddedSet(t *testing.T) {
	assert.Equal(t,
		[]PromptID{PromptContinueSceneV1, PromptGrammarCheckV1, PromptPlotChoicesV1},
		NewRegistry().IDs(),
	)
}

func TestLoadRequiresUserTemplate(t *testing.T) {
	_, err := Load(fstest.MapFS{
		"only_v1.system.txt": {Data: []byte("system")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only_v1")
}

func TestLoadTrimsTemplates(t *testing.T) {
	r, err := Load(fstest.MapFS{
		"x_v1.system.txt": {Data: []byte("\n  You write {mode} stories.\n")},
		"x_v1.user.txt":   {Data: []byte("{text}\n\n")},
	})
	require.NoError(t, err)

	tpl, err := r.ChatTemplate("x_v1")
	require.NoError(t, err)
	msgs, err := tpl.Format(context.Background(), map[string]any{"mode": "horror", "text": "boo"})
	require.NoError(t, err)
	assert.Equal(t, "You write horror stories.", msgs[0].Content)
	assert.Equal(t, "boo", msgs[1].Content)
}
