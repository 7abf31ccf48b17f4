package node

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "", TruncateByRunes("abc", 0))
	assert.Equal(t, "ab", TruncateByRunes("abc", 2))
	assert.Equal(t, "龙的", TruncateByRunes("龙的故事", 2))
	assert.Equal(t, "abc", TruncateByRunes("abc", 10))
}

func TestTailByRunes(t *testing.T) {
	assert.Equal(t, "short", TailByRunes("short", 100))
	assert.Equal(t, "anything", TailByRunes("anything", 0))

	s := "First scene is long.\n\nSecond scene.\n\nThird scene."
	got := TailByRunes(s, 30)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 30)
	assert.Equal(t, "Third scene.", got[len(got)-len("Third scene."):])
	assert.NotEqual(t, '\n', rune(got[0]))
}

func TestRuneHelpersNonPositiveLimit(t *testing.T) {
	for _, n := range []int{0, -1} {
		assert.Equal(t, "", TruncateByRunes("story", n))
		assert.Equal(t, "story", TailByRunes("story", n))
	}
}

func TestTailByRunesMultibyte(t *testing.T) {
	got := TailByRunes("龙龙龙龙龙龙", 3)
	assert.Equal(t, "龙龙龙", got)
}

func TestExtractJSON(t *testing.T) {
	raw := "Sure! Here you go:\n```json\n{\"choices\": [{\"id\": 1}]}\n```"
	assert.Equal(t, `{"choices": [{"id": 1}]}`, ExtractJSON(raw))
	assert.Equal(t, "", ExtractJSON("   "))
	assert.Equal(t, "no json here", ExtractJSON(" no json here "))
}

func TestExtractJSONStopsAtFirstValue(t *testing.T) {
	raw := `{"hasIssues": false} and then {"other": true}`
	assert.Equal(t, `{"hasIssues": false}`, ExtractJSON(raw))
}

func TestExtractJSONArray(t *testing.T) {
	assert.Equal(t, `[1, 2]`, ExtractJSON("list: [1, 2] done"))
}

func TestExtractJSONBraceInsideString(t *testing.T) {
	raw := `{"text": "a } b"} trailing }`
	assert.Equal(t, `{"text": "a } b"}`, ExtractJSON(raw))
}

func TestSchemaUnsupported(t *testing.T) {
	assert.False(t, SchemaUnsupported(nil))
	assert.True(t, SchemaUnsupported(errors.New("400: Unknown parameter: 'response_format.json_schema'")))
	assert.True(t, SchemaUnsupported(errors.New("json_schema is not supported by this model")))
	assert.False(t, SchemaUnsupported(errors.New("connection reset by peer")))
}
