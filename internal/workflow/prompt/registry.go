// Package prompt 管理内嵌的提示词模板
package prompt

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

// PromptID 模板标识，对应 templates/<id>.system.txt 与 templates/<id>.user.txt
type PromptID string

const (
	PromptGrammarCheckV1  PromptID = "grammar_check_v1"
	PromptPlotChoicesV1   PromptID = "plot_choices_v1"
	PromptContinueSceneV1 PromptID = "continue_scene_v1"
)

const (
	systemSuffix = ".system.txt"
	userSuffix   = ".user.txt"
)

// Registry 只读模板集合，构造后可并发使用
type Registry struct {
	templates map[PromptID]einoprompt.ChatTemplate
}

// NewRegistry 加载内嵌模板；内嵌文件在编译期确定，加载失败属于程序错误
func NewRegistry() *Registry {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	r, err := Load(sub)
	if err != nil {
		panic(err)
	}
	return r
}

// Load 从 fsys 根目录读取成对的 system/user 模板
func Load(fsys fs.FS) (*Registry, error) {
	systems, err := fs.Glob(fsys, "*"+systemSuffix)
	if err != nil {
		return nil, err
	}

	r := &Registry{templates: make(map[PromptID]einoprompt.ChatTemplate, len(systems))}
	for _, name := range systems {
		id := PromptID(strings.TrimSuffix(path.Base(name), systemSuffix))
		system, err := readText(fsys, name)
		if err != nil {
			return nil, err
		}
		user, err := readText(fsys, string(id)+userSuffix)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", id, err)
		}
		r.templates[id] = einoprompt.FromMessages(
			schema.FString,
			schema.SystemMessage(system),
			schema.UserMessage(user),
		)
	}
	return r, nil
}

// ChatTemplate 返回指定模板
func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	tpl, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("unknown prompt id: %s", id)
	}
	return tpl, nil
}

// IDs 已加载的模板标识（有序）
func (r *Registry) IDs() []PromptID {
	ids := make([]PromptID, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func readText(fsys fs.FS, name string) (string, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
