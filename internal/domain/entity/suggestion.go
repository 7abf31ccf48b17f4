package entity

// Suggestion 单条修改建议
type Suggestion struct {
	Original  string `json:"original"`
	Suggested string `json:"suggested"`
	Reason    string `json:"reason"`
}

// SuggestionSet 语法检查结果，仅在会话内短暂存在
type SuggestionSet struct {
	HasIssues       bool         `json:"hasIssues"`
	ImprovedVersion string       `json:"improvedVersion,omitempty"`
	Suggestions     []Suggestion `json:"suggestions"`
}

// Normalize 保证 Suggestions 非 nil；无问题时清空改写文本
func (s *SuggestionSet) Normalize() {
	if s.Suggestions == nil {
		s.Suggestions = []Suggestion{}
	}
	if !s.HasIssues {
		s.ImprovedVersion = ""
	}
}

// Acceptable 是否带有可采纳的改写文本
func (s *SuggestionSet) Acceptable() bool {
	return s != nil && s.HasIssues && s.ImprovedVersion != ""
}
