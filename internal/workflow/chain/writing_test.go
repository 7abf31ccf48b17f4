package chain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taleteller/internal/domain/entity"
	llmctx "taleteller/internal/domain/service"
	wfmodel "taleteller/internal/workflow/model"
)

type scriptedModel struct {
	mu       sync.Mutex
	replies  []reply
	calls    int
	optCount []int
	prompts  [][]*schema.Message
	workflow string
}

type reply struct {
	content string
	err     error
}

func (m *scriptedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workflow = llmctx.WorkflowFromContext(ctx)
	m.prompts = append(m.prompts, input)
	m.optCount = append(m.optCount, len(opts))
	r := m.replies[m.calls]
	if m.calls < len(m.replies)-1 {
		m.calls++
	}
	if r.err != nil {
		return nil, r.err
	}
	return schema.AssistantMessage(r.content, nil), nil
}

func (m *scriptedModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

type fakeFactory struct {
	m    *scriptedModel
	name string
}

func (f *fakeFactory) Get(_ context.Context, name string) (model.BaseChatModel, error) {
	f.name = name
	return f.m, nil
}

func TestGrammarChainParsesReply(t *testing.T) {
	m := &scriptedModel{replies: []reply{{content: "```json\n" + `{"hasIssues": true, "improvedVersion": "The door creaked.", "suggestions": [{"original": "creeked", "suggested": "creaked", "reason": "spelling"}]}` + "\n```"}}}
	f := &fakeFactory{m: m}

	set, err := NewGrammarChain(f).Invoke(context.Background(), &wfmodel.GrammarCheckInput{
		Provider: "openai", Mode: entity.ModeHorror, Text: "The door creeked.",
	})
	require.NoError(t, err)

	assert.True(t, set.HasIssues)
	assert.Equal(t, "The door creaked.", set.ImprovedVersion)
	require.Len(t, set.Suggestions, 1)
	assert.Equal(t, "spelling", set.Suggestions[0].Reason)
	assert.Equal(t, "openai", f.name)
	assert.Equal(t, WorkflowGrammarCheck, m.workflow)
	require.Len(t, m.prompts, 1)
	assert.Contains(t, m.prompts[0][1].Content, "The door creeked.")
	assert.Contains(t, m.prompts[0][0].Content, "horror")
}

func TestGrammarChainFallsBackWithoutSchema(t *testing.T) {
	m := &scriptedModel{replies: []reply{
		{err: errors.New("400: response_format json_schema is not supported")},
		{content: `{"hasIssues": false, "suggestions": []}`},
	}}

	set, err := NewGrammarChain(&fakeFactory{m: m}).Invoke(context.Background(), &wfmodel.GrammarCheckInput{
		Mode: entity.ModeFantasy, Text: "Fine.",
	})
	require.NoError(t, err)
	assert.False(t, set.HasIssues)
	assert.NotNil(t, set.Suggestions)

	require.Len(t, m.optCount, 2)
	assert.Greater(t, m.optCount[0], m.optCount[1])
}

func TestGrammarChainUpstreamError(t *testing.T) {
	m := &scriptedModel{replies: []reply{{err: errors.New("connection refused")}}}
	_, err := NewGrammarChain(&fakeFactory{m: m}).Invoke(context.Background(), &wfmodel.GrammarCheckInput{
		Mode: entity.ModeFantasy, Text: "Fine.",
	})
	assert.ErrorContains(t, err, "connection refused")
}

func TestParseSuggestionSet(t *testing.T) {
	_, err := ParseSuggestionSet("I cannot help with that.")
	assert.Error(t, err)

	_, err = ParseSuggestionSet(`{"hasIssues": true}`)
	assert.Error(t, err)

	set, err := ParseSuggestionSet(`{"hasIssues": false, "improvedVersion": "noise"}`)
	require.NoError(t, err)
	assert.Empty(t, set.ImprovedVersion)
}

func TestChoicesChain(t *testing.T) {
	m := &scriptedModel{replies: []reply{{content: `{"choices": [
		{"id": 1, "title": "Open it", "description": "Push the door open"},
		{"id": 2, "title": "Run", "description": "Flee down the hall"}
	]}`}}}

	choices, err := NewChoicesChain(&fakeFactory{m: m}).Invoke(context.Background(), &wfmodel.PlotChoicesInput{
		Mode:         entity.ModeHorror,
		StoryContext: "The door creaked.",
		CurrentScene: "The door creaked.",
		Count:        3,
	})
	require.NoError(t, err)
	require.Len(t, choices, 2)
	assert.Equal(t, "Run", choices[1].Title)
	assert.Contains(t, m.prompts[0][0].Content, "exactly 3")
	assert.Equal(t, WorkflowPlotChoices, m.workflow)
}

func TestParseChoicesBareArray(t *testing.T) {
	choices, err := ParseChoices(`Here: [{"id": 1, "title": "A", "description": "a"}]`)
	require.NoError(t, err)
	require.Len(t, choices, 1)

	_, err = ParseChoices("no json here")
	assert.Error(t, err)
}

func TestChoicesChainRequiresContext(t *testing.T) {
	_, err := NewChoicesChain(&fakeFactory{m: &scriptedModel{}}).Invoke(context.Background(), &wfmodel.PlotChoicesInput{Count: 3})
	assert.Error(t, err)
}

func TestContinuationChain(t *testing.T) {
	m := &scriptedModel{replies: []reply{{content: "\"You ran until the hall ended.\""}}}

	text, err := NewContinuationChain(&fakeFactory{m: m}).Invoke(context.Background(), &wfmodel.ContinueSceneInput{
		Mode:           entity.ModeHorror,
		StoryContext:   "The door creaked.",
		SelectedChoice: "Flee down the hall",
	})
	require.NoError(t, err)
	assert.Equal(t, "You ran until the hall ended.", text)
	assert.True(t, strings.HasSuffix(m.prompts[0][1].Content, "Flee down the hall"))
	assert.Equal(t, WorkflowContinueScene, m.workflow)
}

func TestContinuationChainEmptyReply(t *testing.T) {
	m := &scriptedModel{replies: []reply{{content: "   "}}}
	_, err := NewContinuationChain(&fakeFactory{m: m}).Invoke(context.Background(), &wfmodel.ContinueSceneInput{
		Mode: entity.ModeHorror, SelectedChoice: "Run",
	})
	assert.Error(t, err)
}

func TestCleanContinuation(t *testing.T) {
	assert.Equal(t, "Plain.", CleanContinuation("  Plain.  "))
	assert.Equal(t, "Fenced.", CleanContinuation("```text\nFenced.\n```"))
	assert.Equal(t, `"Hi," she said. "Bye."`, CleanContinuation(`"Hi," she said. "Bye."`))
}
