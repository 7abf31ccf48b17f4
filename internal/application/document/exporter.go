package document

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	apperrors "taleteller/pkg/errors"
	"taleteller/pkg/logger"
)

// Exporter 渲染故事为 PDF，不依赖网络
type Exporter struct {
	author string
}

// NewExporter 创建导出器
func NewExporter(author string) *Exporter {
	return &Exporter{author: author}
}

// Layout 只计算版面
func (e *Exporter) Layout(doc Document) (*Layout, error) {
	layout, _, err := e.build(doc)
	return layout, err
}

// Export 计算版面并将 PDF 写入 w；同一故事与类型总是得到相同的输出
func (e *Exporter) Export(ctx context.Context, w io.Writer, doc Document) (*Layout, error) {
	layout, pdf, err := e.build(doc)
	if err != nil {
		logger.Error(ctx, "plan document failed", err, "mode", string(doc.Mode))
		return nil, apperrors.ErrExportFailed.WithError(err)
	}
	render(pdf, layout)
	if err := pdf.Output(w); err != nil {
		logger.Error(ctx, "write pdf failed", err, "mode", string(doc.Mode))
		return nil, apperrors.ErrExportFailed.WithError(err)
	}
	logger.Debug(ctx, "story exported", "pages", layout.Pages, "scenes", len(doc.Scenes))
	return layout, nil
}

func (e *Exporter) build(doc Document) (*Layout, *fpdf.Fpdf, error) {
	if doc.Mode == "" {
		return nil, nil, fmt.Errorf("mode is required")
	}
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(false)
	pdf.SetCatalogSort(true)
	stamp := documentTime(doc)
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetTitle(doc.Mode.Title(), true)
	if e.author != "" {
		pdf.SetAuthor(e.author, true)
	}
	pdf.SetFont(fontFamily, "", BodySize)

	layout, err := plan(pdf, doc)
	if err != nil {
		return nil, nil, err
	}
	return layout, pdf, nil
}

// documentTime 取最后一个场景的时间，空故事使用固定时间
func documentTime(doc Document) time.Time {
	var latest time.Time
	for _, s := range doc.Scenes {
		if s.Timestamp.After(latest) {
			latest = s.Timestamp
		}
	}
	if latest.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return latest.UTC()
}

func render(pdf *fpdf.Fpdf, layout *Layout) {
	page := 0
	for _, it := range layout.Items {
		for page < it.Page {
			pdf.AddPage()
			page++
		}
		switch it.Kind {
		case KindImage:
			pdf.ImageOptions(it.image, it.X, it.Y, it.W, it.H, false, fpdf.ImageOptions{}, 0, "")
		default:
			pdf.SetFont(fontFamily, "", it.Size)
			pdf.Text(it.X, it.Y, it.Text)
		}
	}
	for page < layout.Pages {
		pdf.AddPage()
		page++
	}
}
