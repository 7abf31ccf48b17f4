package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"taleteller/internal/application/document"
	"taleteller/internal/application/session"
	"taleteller/internal/domain/entity"
	apperrors "taleteller/pkg/errors"
)

// maxLineBytes 单行输入上限
const maxLineBytes = 1 << 20

// repl 交互式写作会话
type repl struct {
	sess     *session.Session
	exporter *document.Exporter
	out      io.Writer
	outDir   string

	// editTouched 编辑开始后是否已输入替换文本
	editTouched bool
}

func newREPL(sess *session.Session, exporter *document.Exporter, out io.Writer, outDir string) *repl {
	return &repl{sess: sess, exporter: exporter, out: out, outDir: outDir}
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	r.prompt()
	for sc.Scan() {
		quit, err := r.exec(r.sess.LogContext(ctx), sc.Text())
		if err != nil {
			fmt.Fprintf(r.out, "! %s\n", userMessage(err))
		}
		if quit {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		r.prompt()
	}
	return sc.Err()
}

func (r *repl) prompt() {
	v := r.sess.Snapshot()
	switch {
	case v.Mode == "":
		fmt.Fprint(r.out, "(no mode)> ")
	case v.Editing:
		fmt.Fprintf(r.out, "%s [editing]> ", v.Mode)
	default:
		fmt.Fprintf(r.out, "%s> ", v.Mode)
	}
}

// exec 执行一行输入；返回 true 表示退出
func (r *repl) exec(ctx context.Context, line string) (bool, error) {
	line = strings.TrimRight(line, "\r")
	if !strings.HasPrefix(line, "/") {
		return false, r.write(line)
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "quit", "exit":
		return true, nil
	case "help":
		r.help()
	case "modes":
		r.modes()
	case "mode":
		return false, r.start(arg)
	case "reset":
		r.sess.Reset()
		r.editTouched = false
		fmt.Fprintln(r.out, "Session cleared. Choose a mode with /mode <name> [text|text-images].")
	case "show":
		r.show()
	case "input":
		r.input()
	case "clear":
		r.sess.SetInput("")
	case "add":
		return false, r.add()
	case "check":
		return false, r.check(ctx)
	case "accept":
		return false, r.accept()
	case "dismiss":
		r.sess.Dismiss()
	case "choices":
		return false, r.choices(ctx)
	case "pick":
		return false, r.pick(ctx, arg)
	case "cancel":
		r.sess.CancelBranch()
	case "edit":
		return false, r.beginEdit(arg)
	case "save":
		return false, r.saveEdit()
	case "discard":
		r.sess.CancelEdit()
		r.editTouched = false
	case "delete":
		return false, r.deleteScene(arg)
	case "illustrate":
		return false, r.illustrate(ctx, arg)
	case "export":
		return false, r.export(ctx, arg)
	default:
		return false, apperrors.Validation(fmt.Sprintf("unknown command /%s, try /help", name))
	}
	return false, nil
}

func (r *repl) greet() {
	fmt.Fprintln(r.out, "Welcome to TaleTeller. Pick a mode to begin:")
	r.modes()
	fmt.Fprintln(r.out, "Use /mode <name> [text|text-images], then type your story. /help lists commands.")
}

func (r *repl) help() {
	fmt.Fprint(r.out, `Plain lines are added to the draft (or to the scene being edited).
  /mode <name> [format]  start a new story
  /modes                 list story modes
  /input  /clear         show or clear the draft
  /check                 grammar check the draft
  /accept  /dismiss      apply or drop the suggestions
  /add                   add the draft as a new scene
  /choices               ask for plot branches
  /pick <id>  /cancel    continue with a branch, or drop the choices
  /edit <n>              edit scene n, then /save or /discard
  /delete <n>            delete scene n
  /illustrate <n>        illustrate scene n (text-images format)
  /export [file]         write the story as PDF
  /show                  print the story
  /reset                 clear everything
  /quit
`)
}

func (r *repl) modes() {
	for _, m := range entity.Modes() {
		fmt.Fprintf(r.out, "  %-10s %s - %s\n", m.Mode, m.Label, m.Description)
	}
}

func (r *repl) start(arg string) error {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		return apperrors.Validation("usage: /mode <name> [text|text-images]")
	}
	format := ""
	if len(fields) > 1 {
		format = fields[1]
	}
	if err := r.sess.Start(fields[0], format); err != nil {
		return err
	}
	r.editTouched = false
	v := r.sess.Snapshot()
	fmt.Fprintf(r.out, "%s story started (%s). Type your first scene.\n", v.Mode.Info().Label, v.Format)
	return nil
}

// write 普通输入：编辑中写入编辑缓冲，否则追加到草稿
func (r *repl) write(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	v := r.sess.Snapshot()
	if v.Mode == "" {
		return apperrors.ErrNoActiveMode.WithDetail("use /mode <name> first")
	}
	if v.Editing {
		buf := line
		if r.editTouched {
			buf = v.EditBuffer + "\n" + line
		}
		r.editTouched = true
		return r.sess.SetEditBuffer(buf)
	}
	if v.Input != "" {
		line = v.Input + "\n" + line
	}
	r.sess.SetInput(line)
	return nil
}

func (r *repl) input() {
	if in := r.sess.Input(); in != "" {
		fmt.Fprintln(r.out, in)
		return
	}
	fmt.Fprintln(r.out, "(draft is empty)")
}

func (r *repl) add() error {
	if _, err := r.sess.Commit(); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Scene %d added.\n", len(r.sess.Snapshot().Scenes))
	return nil
}

func (r *repl) check(ctx context.Context) error {
	fmt.Fprintln(r.out, "Checking...")
	set, err := r.sess.CheckGrammar(ctx)
	if err != nil {
		return err
	}
	if !set.HasIssues {
		fmt.Fprintln(r.out, "No issues found.")
		return nil
	}
	fmt.Fprintln(r.out, "Suggestions:")
	for _, s := range set.Suggestions {
		fmt.Fprintf(r.out, "  %q -> %q (%s)\n", s.Original, s.Suggested, s.Reason)
	}
	if set.ImprovedVersion != "" {
		fmt.Fprintf(r.out, "Improved version:\n%s\n", set.ImprovedVersion)
	}
	fmt.Fprintln(r.out, "Use /accept to apply or /dismiss to keep your text.")
	return nil
}

func (r *repl) accept() error {
	input, err := r.sess.Accept()
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Draft:\n%s\n", input)
	return nil
}

func (r *repl) choices(ctx context.Context) error {
	fmt.Fprintln(r.out, "Thinking of what happens next...")
	choices, err := r.sess.RequestChoices(ctx)
	if err != nil {
		return err
	}
	for _, c := range choices {
		fmt.Fprintf(r.out, "  [%d] %s: %s\n", c.ID, c.Title, c.Description)
	}
	fmt.Fprintln(r.out, "Use /pick <id> to continue, or /cancel.")
	return nil
}

func (r *repl) pick(ctx context.Context, arg string) error {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return apperrors.Validation("usage: /pick <id>")
	}
	fmt.Fprintln(r.out, "Writing...")
	scene, err := r.sess.SelectChoice(ctx, id)
	if err != nil {
		return err
	}
	n := len(r.sess.Snapshot().Scenes)
	fmt.Fprintf(r.out, "%s\n%s\n", document.SceneHeader(n, scene), scene.Text)
	return nil
}

// sceneAt 按显示序号（1 起始）查找场景
func (r *repl) sceneAt(arg string) (entity.Scene, int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return entity.Scene{}, 0, apperrors.Validation("scene number is required")
	}
	scenes := r.sess.Snapshot().Scenes
	if n < 1 || n > len(scenes) {
		return entity.Scene{}, 0, apperrors.Validation(fmt.Sprintf("scene %d does not exist", n))
	}
	return scenes[n-1], n, nil
}

func (r *repl) beginEdit(arg string) error {
	scene, n, err := r.sceneAt(arg)
	if err != nil {
		return err
	}
	if !r.sess.BeginEdit(scene.ID) {
		return apperrors.Validation(fmt.Sprintf("scene %d does not exist", n))
	}
	r.editTouched = false
	fmt.Fprintf(r.out, "Editing scene %d:\n%s\nType the new text, then /save or /discard.\n", n, scene.Text)
	return nil
}

func (r *repl) saveEdit() error {
	ok, err := r.sess.SaveEdit()
	if err != nil {
		return err
	}
	r.editTouched = false
	if ok {
		fmt.Fprintln(r.out, "Scene updated.")
	}
	return nil
}

func (r *repl) deleteScene(arg string) error {
	scene, n, err := r.sceneAt(arg)
	if err != nil {
		return err
	}
	if r.sess.DeleteScene(scene.ID) {
		fmt.Fprintf(r.out, "Scene %d deleted.\n", n)
	}
	return nil
}

func (r *repl) illustrate(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return apperrors.Validation("usage: /illustrate <n>")
	}
	fmt.Fprintln(r.out, "Painting...")
	ill, err := r.sess.Illustrate(ctx, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Scene %d illustrated (%d KB).\n", n, (len(ill.Data)+1023)/1024)
	return nil
}

func (r *repl) export(ctx context.Context, arg string) error {
	v := r.sess.Snapshot()
	if v.Mode == "" {
		return apperrors.ErrNoActiveMode
	}
	path := arg
	if path == "" {
		path = filepath.Join(r.outDir, v.Mode.FileName())
	}

	f, err := os.Create(path)
	if err != nil {
		return apperrors.ErrExportFailed.WithError(err)
	}
	layout, err := r.exporter.Export(ctx, f, document.Document{
		Mode:   v.Mode,
		Scenes: v.Scenes,
		Images: v.Images(),
	})
	if cerr := f.Close(); err == nil && cerr != nil {
		err = apperrors.ErrExportFailed.WithError(cerr)
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	fmt.Fprintf(r.out, "Exported %d page(s) to %s\n", layout.Pages, path)
	return nil
}

func (r *repl) show() {
	v := r.sess.Snapshot()
	if v.Mode == "" {
		fmt.Fprintln(r.out, "(no story yet)")
		return
	}
	fmt.Fprintln(r.out, v.Mode.Title())
	if len(v.Scenes) == 0 {
		fmt.Fprintln(r.out, "(no scenes yet)")
	}
	for i, s := range v.Scenes {
		header := document.SceneHeader(i+1, s)
		if _, ok := v.Illustrations[s.ID]; ok {
			header += " [illustrated]"
		}
		fmt.Fprintf(r.out, "\n%s\n%s\n", header, s.Text)
	}
	if v.Input != "" {
		fmt.Fprintf(r.out, "\nDraft:\n%s\n", v.Input)
	}
	if v.Phase == session.PhaseChoicesReady {
		fmt.Fprintln(r.out, "\nChoices:")
		for _, c := range v.Choices {
			fmt.Fprintf(r.out, "  [%d] %s: %s\n", c.ID, c.Title, c.Description)
		}
	}
}
