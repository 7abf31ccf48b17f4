// Package entity 定义领域实体
package entity

import (
	"strings"

	apperrors "taleteller/pkg/errors"
)

// Mode 故事类型
type Mode string

const (
	ModeAdventure Mode = "adventure"
	ModeHorror    Mode = "horror"
	ModeFantasy   Mode = "fantasy"
	ModeMystery   Mode = "mystery"
	ModeSciFi     Mode = "scifi"
	ModeRomance   Mode = "romance"
)

// DefaultMode 未指定时使用的类型
const DefaultMode = ModeAdventure

// ModeInfo 类型目录项
type ModeInfo struct {
	Mode        Mode   `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var modeCatalogue = []ModeInfo{
	{Mode: ModeAdventure, Label: "Adventure", Description: "Epic quests and heroic journeys"},
	{Mode: ModeHorror, Label: "Horror", Description: "Spine-chilling tales of terror"},
	{Mode: ModeFantasy, Label: "Fantasy", Description: "Magical worlds and mythical creatures"},
	{Mode: ModeMystery, Label: "Mystery", Description: "Puzzles and detective stories"},
	{Mode: ModeSciFi, Label: "Sci-Fi", Description: "Futuristic technology and space"},
	{Mode: ModeRomance, Label: "Romance", Description: "Love stories and emotional journeys"},
}

// Modes 返回类型目录（副本）
func Modes() []ModeInfo {
	out := make([]ModeInfo, len(modeCatalogue))
	copy(out, modeCatalogue)
	return out
}

// ParseMode 解析类型；空值回落到默认类型
func ParseMode(s string) (Mode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return DefaultMode, nil
	}
	for _, m := range modeCatalogue {
		if string(m.Mode) == v {
			return m.Mode, nil
		}
	}
	return "", apperrors.ErrUnknownMode.WithDetail(s)
}

// Info 返回目录信息
func (m Mode) Info() ModeInfo {
	for _, info := range modeCatalogue {
		if info.Mode == m {
			return info
		}
	}
	return ModeInfo{Mode: m, Label: string(m)}
}

// Title 导出文档标题，例如 "HORROR Story"
func (m Mode) Title() string {
	return strings.ToUpper(string(m)) + " Story"
}

// FileName 导出文件名，例如 "horror-story.pdf"
func (m Mode) FileName() string {
	return string(m) + "-story.pdf"
}

// OutputFormat 输出格式
type OutputFormat string

const (
	FormatText       OutputFormat = "text"
	FormatTextImages OutputFormat = "text-images"
)

// ParseOutputFormat 解析输出格式；空值为纯文本
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatTextImages:
		return FormatTextImages, nil
	default:
		return "", apperrors.Validation("unknown output format").WithDetail(s)
	}
}

// WithImages 是否允许插图
func (f OutputFormat) WithImages() bool {
	return f == FormatTextImages
}
