package document

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taleteller/internal/domain/entity"
)

func storyOf(mode entity.Mode, texts ...string) Document {
	s := entity.NewStory(func() time.Time { return time.Date(2024, 10, 31, 23, 0, 0, 0, time.UTC) })
	for _, t := range texts {
		_, _ = s.Append(t)
	}
	return Document{Mode: mode, Scenes: s.Scenes()}
}

func itemsOfKind(l *Layout, kind Kind) []Item {
	var out []Item
	for _, it := range l.Items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

func TestExportHorrorScenario(t *testing.T) {
	doc := storyOf(entity.ModeHorror, "The door creaked.", "Something moved.")
	var buf bytes.Buffer

	layout, err := NewExporter("").Export(context.Background(), &buf, doc)
	require.NoError(t, err)

	assert.Equal(t, "HORROR Story", layout.Title)
	assert.Equal(t, "horror-story.pdf", layout.FileName)
	assert.Equal(t, 1, layout.Pages)

	headers := itemsOfKind(layout, KindHeader)
	require.Len(t, headers, 2)
	assert.Equal(t, "Scene 1", headers[0].Text)
	assert.Equal(t, "Scene 2", headers[1].Text)

	body := itemsOfKind(layout, KindBody)
	require.Len(t, body, 2)
	assert.Equal(t, "The door creaked.", body[0].Text)
	assert.Equal(t, "Something moved.", body[1].Text)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	iTitle := strings.Index(out, "(HORROR Story)")
	i1 := strings.Index(out, "(The door creaked.)")
	i2 := strings.Index(out, "(Something moved.)")
	require.True(t, iTitle >= 0 && i1 >= 0 && i2 >= 0)
	assert.Less(t, iTitle, i1)
	assert.Less(t, i1, i2)
}

func TestLayoutPositions(t *testing.T) {
	layout, err := NewExporter("").Layout(storyOf(entity.ModeAdventure, "Go."))
	require.NoError(t, err)

	require.Len(t, layout.Items, 3)
	assert.Equal(t, Item{Page: 1, Kind: KindTitle, Text: "ADVENTURE Story", Size: TitleSize, X: Margin, Y: Top}, layout.Items[0])
	assert.Equal(t, Top+TitleAdvance, layout.Items[1].Y)
	assert.Equal(t, Top+TitleAdvance+HeaderAdvance, layout.Items[2].Y)
	assert.Equal(t, BodySize, layout.Items[2].Size)
}

func TestExportDeterministic(t *testing.T) {
	doc := storyOf(entity.ModeMystery, strings.Repeat("A clue was found in the study. ", 40), "The end.")
	e := NewExporter("taleteller")

	var a, b bytes.Buffer
	la, err := e.Export(context.Background(), &a, doc)
	require.NoError(t, err)
	lb, err := e.Export(context.Background(), &b, doc)
	require.NoError(t, err)

	assert.Equal(t, la, lb)
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestLayoutPaginates(t *testing.T) {
	long := strings.Repeat("The corridor stretched on and on into the dark. ", 120)
	layout, err := NewExporter("").Layout(storyOf(entity.ModeHorror, long, long))
	require.NoError(t, err)

	assert.Greater(t, layout.Pages, 1)
	lastPage := 1
	for _, it := range layout.Items {
		assert.LessOrEqual(t, it.Y, PageBottom, "%s %q", it.Kind, it.Text)
		assert.GreaterOrEqual(t, it.Page, lastPage, "pages never go backwards")
		lastPage = it.Page
	}
	assert.Equal(t, layout.Pages, lastPage)
}

func TestExportNonASCIIProse(t *testing.T) {
	doc := storyOf(entity.ModeHorror, "Café at dusk.", "She said “run” — and ran.", "It’s late.")

	var buf bytes.Buffer
	var layout *Layout
	require.NotPanics(t, func() {
		var err error
		layout, err = NewExporter("").Export(context.Background(), &buf, doc)
		require.NoError(t, err)
	})

	body := itemsOfKind(layout, KindBody)
	require.Len(t, body, 3)
	assert.Equal(t, "Caf\xe9 at dusk.", body[0].Text)
	assert.Equal(t, "She said \x93run\x94 \x97 and ran.", body[1].Text)
	assert.Equal(t, "It\x92s late.", body[2].Text)
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
}

func TestLayoutWrapsLongNonASCIIScene(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("Élodie’s café — “déjà vu” again. ", 30))
	layout, err := NewExporter("").Layout(storyOf(entity.ModeRomance, long))
	require.NoError(t, err)

	body := itemsOfKind(layout, KindBody)
	assert.Greater(t, len(body), 1)
	for _, it := range body {
		assert.NotEmpty(t, it.Text)
	}
}

func TestSceneHeaderForBranchScene(t *testing.T) {
	assert.Equal(t, "Scene 3 - Run", SceneHeader(3, entity.Scene{OriginChoice: "Run"}))
	assert.Equal(t, "Scene 1", SceneHeader(1, entity.Scene{}))
}

func TestExportEmbedsIllustration(t *testing.T) {
	doc := storyOf(entity.ModeFantasy, "A dragon slept.")
	doc.Images = map[int64][]byte{doc.Scenes[0].ID: tinyPNG(t, 40, 20)}

	var buf bytes.Buffer
	layout, err := NewExporter("").Export(context.Background(), &buf, doc)
	require.NoError(t, err)

	imgs := itemsOfKind(layout, KindImage)
	require.Len(t, imgs, 1)
	assert.InDelta(t, ImageHeight, imgs[0].H, 0.001)
	assert.InDelta(t, 2*ImageHeight, imgs[0].W, 0.001)

	body := itemsOfKind(layout, KindBody)
	require.Len(t, body, 1)
	assert.Greater(t, body[0].Y, imgs[0].Y+imgs[0].H)
	assert.Contains(t, buf.String(), "/Subtype /Image")
}

func TestExportRejectsUnsupportedImage(t *testing.T) {
	doc := storyOf(entity.ModeFantasy, "A dragon slept.")
	doc.Images = map[int64][]byte{doc.Scenes[0].ID: []byte("not an image")}

	_, err := NewExporter("").Export(context.Background(), &bytes.Buffer{}, doc)
	assert.Error(t, err)
}

func tinyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
