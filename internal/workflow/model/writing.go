package model

import "taleteller/internal/domain/entity"

// GrammarCheckInput 语法检查输入
type GrammarCheckInput struct {
	Provider string
	Model    string
	Mode     entity.Mode
	Text     string
}

// PlotChoicesInput 剧情分支输入
type PlotChoicesInput struct {
	Provider     string
	Model        string
	Mode         entity.Mode
	StoryContext string
	CurrentScene string
	Count        int
}

// ContinueSceneInput 续写输入
type ContinueSceneInput struct {
	Provider       string
	Model          string
	Mode           entity.Mode
	StoryContext   string
	SelectedChoice string
}

// PlotChoicesOutput 模型返回的分支选项
type PlotChoicesOutput struct {
	Choices []entity.Choice `json:"choices"`
}
