package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taleteller/internal/domain/entity"
	apperrors "taleteller/pkg/errors"
	"taleteller/pkg/logger"
)

// Options 会话依赖
type Options struct {
	// ID 为空时生成新的 uuid
	ID          string
	Assistant   Assistant
	Illustrator Illustrator
	Now         func() time.Time
}

// Session 单个写作会话。
// 所有状态集中在 state 记录中，由同一把锁保护；上游调用期间不持锁，
// 返回后通过 epoch 与各工作流的 gen 判断结果是否已过期。
type Session struct {
	id          string
	assistant   Assistant
	illustrator Illustrator
	now         func() time.Time

	mu    sync.Mutex
	epoch uint64
	st    state
}

type state struct {
	mode   entity.Mode
	format entity.OutputFormat
	story  *entity.Story
	input  string

	edit          editState
	suggestion    suggestionState
	branch        branchState
	illustration  illustrationState
	illustrations map[int64]Illustration
}

type editState struct {
	active  bool
	sceneID int64
	buffer  string
}

type suggestionState struct {
	loading bool
	gen     uint64
	set     *entity.SuggestionSet
}

type branchState struct {
	phase   Phase
	gen     uint64
	choices []entity.Choice
}

type illustrationState struct {
	loading bool
	gen     uint64
}

// ticket 标识一次上游请求，响应返回时据此判断是否过期
type ticket struct {
	epoch uint64
	gen   uint64
}

// New 创建会话
func New(opts Options) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		id:          id,
		assistant:   opts.Assistant,
		illustrator: opts.Illustrator,
		now:         now,
	}
}

// ID 会话标识
func (s *Session) ID() string {
	return s.id
}

// Start 选择类型与输出格式，开始一个空故事
func (s *Session) Start(mode, format string) error {
	m, err := entity.ParseMode(mode)
	if err != nil {
		return err
	}
	f, err := entity.ParseOutputFormat(format)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.st = state{
		mode:          m,
		format:        f,
		story:         entity.NewStory(s.now),
		illustrations: make(map[int64]Illustration),
	}
	return nil
}

// Reset 原子地清空整个会话记录，进行中的请求返回后被丢弃
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.st = state{}
}

// Active 是否已选择类型
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.mode != ""
}

// Mode 当前类型
func (s *Session) Mode() entity.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.mode
}

// SetInput 设置待提交的输入文本
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.input = text
}

// Input 当前输入文本
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.input
}

// Commit 将输入文本追加为新场景，清空输入与待处理的建议
func (s *Session) Commit() (entity.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireActive(); err != nil {
		return entity.Scene{}, err
	}
	scene, err := s.st.story.Append(s.st.input)
	if err != nil {
		return entity.Scene{}, err
	}
	s.st.input = ""
	s.clearSuggestion()
	return scene, nil
}

// BeginEdit 将场景文本载入编辑缓冲；场景不存在时返回 false
func (s *Session) BeginEdit(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.story == nil {
		return false
	}
	scene, ok := s.st.story.Get(id)
	if !ok {
		return false
	}
	s.st.edit = editState{active: true, sceneID: id, buffer: scene.Text}
	return true
}

// SetEditBuffer 更新编辑缓冲
func (s *Session) SetEditBuffer(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.st.edit.active {
		return apperrors.ErrWrongState.WithDetail("no scene is being edited")
	}
	s.st.edit.buffer = text
	return nil
}

// SaveEdit 提交编辑。空白文本被拒绝且保留编辑状态；
// 场景已不存在时静默结束编辑并返回 false
func (s *Session) SaveEdit() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.st.edit.active {
		return false, apperrors.ErrWrongState.WithDetail("no scene is being edited")
	}
	if strings.TrimSpace(s.st.edit.buffer) == "" {
		return false, apperrors.ErrEmptyText
	}
	ok := s.st.story.Edit(s.st.edit.sceneID, s.st.edit.buffer)
	s.st.edit = editState{}
	return ok, nil
}

// CancelEdit 放弃编辑
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.edit = editState{}
}

// DeleteScene 删除场景及其插图；若该场景正在编辑则结束编辑
func (s *Session) DeleteScene(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.story == nil || !s.st.story.Delete(id) {
		return false
	}
	if s.st.edit.active && s.st.edit.sceneID == id {
		s.st.edit = editState{}
	}
	delete(s.st.illustrations, id)
	return true
}

// Snapshot 返回当前状态的只读副本
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		SessionID:       s.id,
		Mode:            s.st.mode,
		Format:          s.st.format,
		Input:           s.st.input,
		Editing:         s.st.edit.active,
		EditingSceneID:  s.st.edit.sceneID,
		EditBuffer:      s.st.edit.buffer,
		CheckingGrammar: s.st.suggestion.loading,
		Phase:           s.st.branch.phase,
		Choices:         append([]entity.Choice(nil), s.st.branch.choices...),
		Illustrating:    s.st.illustration.loading,
		Illustrations:   make(map[int64]Illustration, len(s.st.illustrations)),
	}
	if s.st.story != nil {
		v.Scenes = s.st.story.Scenes()
		v.CurrentScene = s.st.story.Current()
	}
	if set := s.st.suggestion.set; set != nil {
		cp := *set
		cp.Suggestions = append([]entity.Suggestion(nil), set.Suggestions...)
		v.Suggestions = &cp
	}
	for id, ill := range s.st.illustrations {
		v.Illustrations[id] = ill
	}
	return v
}

// LogContext 为日志注入会话信息
func (s *Session) LogContext(ctx context.Context) context.Context {
	ctx = logger.WithContext(ctx, logger.SessionIDKey, s.id)
	if m := s.Mode(); m != "" {
		ctx = logger.WithContext(ctx, logger.ModeKey, string(m))
	}
	return ctx
}

func (s *Session) requireActive() error {
	if s.st.mode == "" || s.st.story == nil {
		return apperrors.ErrNoActiveMode
	}
	return nil
}

// stale 调用方持锁
func (s *Session) stale(t ticket, current uint64) bool {
	return t.epoch != s.epoch || t.gen != current
}
