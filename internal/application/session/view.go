package session

import "taleteller/internal/domain/entity"

// View 会话状态快照
type View struct {
	SessionID    string
	Mode         entity.Mode
	Format       entity.OutputFormat
	Scenes       []entity.Scene
	CurrentScene string
	Input        string

	Editing        bool
	EditingSceneID int64
	EditBuffer     string

	CheckingGrammar bool
	Suggestions     *entity.SuggestionSet

	Phase   Phase
	Choices []entity.Choice

	Illustrating  bool
	Illustrations map[int64]Illustration
}

// Images 按场景 id 返回插图字节，供导出使用
func (v View) Images() map[int64][]byte {
	if len(v.Illustrations) == 0 {
		return nil
	}
	out := make(map[int64][]byte, len(v.Illustrations))
	for id, ill := range v.Illustrations {
		out[id] = ill.Data
	}
	return out
}
