package entity

import (
	"strings"
	"time"

	apperrors "taleteller/pkg/errors"
)

// Scene 一段已提交的叙事文本
type Scene struct {
	ID           int64     `json:"id"`
	Text         string    `json:"text"`
	Timestamp    time.Time `json:"timestamp"`
	OriginChoice string    `json:"originChoice,omitempty"`
}

// FromBranch 是否由剧情分支生成
func (s Scene) FromBranch() bool {
	return s.OriginChoice != ""
}

// ContextSeparator 场景之间的分隔符
const ContextSeparator = "\n\n"

// Story 有序场景集合，插入顺序即叙事顺序。
// Story 不是并发安全的，由持有者串行访问。
type Story struct {
	scenes  []Scene
	current string
	lastID  int64
	now     func() time.Time
}

// NewStory 创建空故事；now 为 nil 时使用 time.Now
func NewStory(now func() time.Time) *Story {
	if now == nil {
		now = time.Now
	}
	return &Story{now: now}
}

// Append 追加场景并设为当前场景；空白文本被拒绝
func (s *Story) Append(text string) (Scene, error) {
	return s.append(text, "")
}

// AppendFromChoice 追加由分支选项生成的场景
func (s *Story) AppendFromChoice(text, choiceTitle string) (Scene, error) {
	return s.append(text, choiceTitle)
}

func (s *Story) append(text, origin string) (Scene, error) {
	if strings.TrimSpace(text) == "" {
		return Scene{}, apperrors.ErrEmptyText
	}
	ts := s.now()
	scene := Scene{
		ID:           s.nextID(ts),
		Text:         text,
		Timestamp:    ts,
		OriginChoice: origin,
	}
	s.scenes = append(s.scenes, scene)
	s.current = text
	return scene, nil
}

// nextID 毫秒时间戳，同一毫秒内递增保证唯一
func (s *Story) nextID(ts time.Time) int64 {
	id := ts.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Edit 替换指定场景的文本；id 不存在或文本为空白时不做任何修改
func (s *Story) Edit(id int64, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.scenes[i].Text = text
	return true
}

// Delete 删除指定场景；id 不存在时不做任何修改
func (s *Story) Delete(id int64) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.scenes = append(s.scenes[:i], s.scenes[i+1:]...)
	return true
}

// Get 按 id 查找场景
func (s *Story) Get(id int64) (Scene, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Scene{}, false
	}
	return s.scenes[i], true
}

// At 按 1 起始的序号查找场景
func (s *Story) At(n int) (Scene, bool) {
	if n < 1 || n > len(s.scenes) {
		return Scene{}, false
	}
	return s.scenes[n-1], true
}

func (s *Story) indexOf(id int64) int {
	for i := range s.scenes {
		if s.scenes[i].ID == id {
			return i
		}
	}
	return -1
}

// RenderContext 按顺序拼接全部场景文本，场景之间空一行
func (s *Story) RenderContext() string {
	if len(s.scenes) == 0 {
		return ""
	}
	texts := make([]string, len(s.scenes))
	for i, sc := range s.scenes {
		texts[i] = sc.Text
	}
	return strings.Join(texts, ContextSeparator)
}

// Current 最近一次追加的场景文本
func (s *Story) Current() string {
	return s.current
}

// Len 场景数量
func (s *Story) Len() int {
	return len(s.scenes)
}

// Empty 是否没有场景
func (s *Story) Empty() bool {
	return len(s.scenes) == 0
}

// Scenes 返回场景副本
func (s *Story) Scenes() []Scene {
	out := make([]Scene, len(s.scenes))
	copy(out, s.scenes)
	return out
}
