// Package document 将故事导出为分页 PDF
package document

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-pdf/fpdf"

	"taleteller/internal/domain/entity"
)

// 版面参数（A4，单位 mm）
const (
	Margin        = 20.0
	Top           = 20.0
	PageBottom    = 270.0
	TitleSize     = 20.0
	TitleAdvance  = 15.0
	HeaderSize    = 14.0
	HeaderAdvance = 10.0
	BodySize      = 11.0
	LineAdvance   = 7.0
	SceneGap      = 10.0
	ImageHeight   = 60.0
	fontFamily    = "Helvetica"
)

// Kind 版面元素类型
type Kind string

const (
	KindTitle  Kind = "title"
	KindHeader Kind = "header"
	KindBody   Kind = "body"
	KindImage  Kind = "image"
)

// Item 一个已定位的版面元素；文字的 Y 为基线，图片的 Y 为上边缘
type Item struct {
	Page    int
	Kind    Kind
	Text    string
	Size    float64
	X, Y    float64
	W, H    float64
	SceneID int64
	image   string
}

// Layout 分页结果
type Layout struct {
	Title    string
	FileName string
	Pages    int
	Items    []Item
}

// Document 待导出的故事
type Document struct {
	Mode   entity.Mode
	Scenes []entity.Scene
	Images map[int64][]byte
}

// SceneHeader 场景标题，分支场景附带来源选项
func SceneHeader(n int, scene entity.Scene) string {
	if scene.FromBranch() {
		return fmt.Sprintf("Scene %d - %s", n, scene.OriginChoice)
	}
	return fmt.Sprintf("Scene %d", n)
}

type planner struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	maxWidth float64
	page     int
	y        float64
	items    []Item
}

// plan 计算版面；图片在 pdf 上注册以获取尺寸
func plan(pdf *fpdf.Fpdf, doc Document) (*Layout, error) {
	pageWidth, _ := pdf.GetPageSize()
	p := &planner{
		pdf:      pdf,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		maxWidth: pageWidth - 2*Margin,
		page:     1,
		y:        Top,
	}

	title := doc.Mode.Title()
	p.text(KindTitle, title, TitleSize, 0)
	p.y += TitleAdvance

	for i, scene := range doc.Scenes {
		p.breakIfNeeded()
		p.text(KindHeader, SceneHeader(i+1, scene), HeaderSize, scene.ID)
		p.y += HeaderAdvance

		if data := doc.Images[scene.ID]; len(data) > 0 {
			if err := p.image(scene.ID, data); err != nil {
				return nil, err
			}
		}

		pdf.SetFont(fontFamily, "", BodySize)
		// 按 cp1252 字节折行，SplitText 按 rune 查宽度表，非 ASCII 会越界
		for _, line := range pdf.SplitLines([]byte(p.tr(scene.Text)), p.maxWidth) {
			p.breakIfNeeded()
			p.items = append(p.items, Item{
				Page: p.page, Kind: KindBody, Text: string(line), Size: BodySize,
				X: Margin, Y: p.y, SceneID: scene.ID,
			})
			p.y += LineAdvance
		}
		p.y += SceneGap
	}
	if err := pdf.Error(); err != nil {
		return nil, err
	}

	return &Layout{
		Title:    title,
		FileName: doc.Mode.FileName(),
		Pages:    p.page,
		Items:    p.items,
	}, nil
}

func (p *planner) breakIfNeeded() {
	if p.y > PageBottom {
		p.page++
		p.y = Top
	}
}

func (p *planner) text(kind Kind, s string, size float64, sceneID int64) {
	p.items = append(p.items, Item{
		Page: p.page, Kind: kind, Text: p.tr(s), Size: size,
		X: Margin, Y: p.y, SceneID: sceneID,
	})
}

func (p *planner) image(sceneID int64, data []byte) error {
	imageType, ok := imageTypeOf(data)
	if !ok {
		return fmt.Errorf("scene %d: unsupported image type %s", sceneID, http.DetectContentType(data))
	}
	name := fmt.Sprintf("scene-%d", sceneID)
	info := p.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(data))
	if info == nil || p.pdf.Err() {
		return fmt.Errorf("scene %d: register image: %w", sceneID, p.pdf.Error())
	}

	h := ImageHeight
	w := h * info.Width() / info.Height()
	if w > p.maxWidth {
		w = p.maxWidth
		h = w * info.Height() / info.Width()
	}
	if p.y+h > PageBottom {
		p.page++
		p.y = Top
	}
	p.items = append(p.items, Item{
		Page: p.page, Kind: KindImage, X: Margin, Y: p.y, W: w, H: h,
		SceneID: sceneID, image: name,
	})
	p.y += h + LineAdvance
	return nil
}

func imageTypeOf(data []byte) (string, bool) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG", true
	case "image/jpeg":
		return "JPG", true
	case "image/gif":
		return "GIF", true
	default:
		return "", false
	}
}
