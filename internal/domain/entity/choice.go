package entity

import "strings"

// Choice 剧情分支选项，id 仅在同一批次内唯一
type Choice struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Blank 标题与描述均为空白
func (c Choice) Blank() bool {
	return strings.TrimSpace(c.Title) == "" && strings.TrimSpace(c.Description) == ""
}

// NormalizeChoices 丢弃空白选项，最多保留 limit 个，并按顺序重新编号为 1..N
func NormalizeChoices(in []Choice, limit int) []Choice {
	out := make([]Choice, 0, len(in))
	for _, c := range in {
		if c.Blank() {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		c.Title = strings.TrimSpace(c.Title)
		c.Description = strings.TrimSpace(c.Description)
		if c.Title == "" {
			c.Title = c.Description
		}
		if c.Description == "" {
			c.Description = c.Title
		}
		c.ID = len(out) + 1
		out = append(out, c)
	}
	return out
}

// FindChoice 在批次中查找选项
func FindChoice(batch []Choice, id int) (Choice, bool) {
	for _, c := range batch {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}
