package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/maitelab/maitenotas/internal/config"
	"github.com/maitelab/maitenotas/internal/logging"
	"github.com/maitelab/maitenotas/internal/services"
	"github.com/maitelab/maitenotas/internal/tree"
)

var (
	errColor   = color.New(color.FgRed)
	titleColor = color.New(color.FgCyan, color.Bold)
	idColor    = color.New(color.FgYellow)
)

// App is the terminal front-end of one diary. It owns the session between
// Open and Close and the text of the selected note.
type App struct {
	config  *config.Config
	svc     services.DiaryService
	log     logging.Logger
	in      *bufio.Reader
	out     io.Writer
	errOut  io.Writer
	sess    *services.Session
	current string
}

func NewApp(cfg *config.Config, svc services.DiaryService, log logging.Logger, in io.Reader, out, errOut io.Writer) *App {
	return &App{
		config: cfg,
		svc:    svc,
		log:    log,
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}
}

func (a *App) isOpen() bool {
	return a.sess != nil && !a.sess.Closed()
}

func (a *App) printErr(err error) {
	errColor.Fprintln(a.errOut, "error:", err)
}

// Open starts a session: on first run it creates the store, otherwise it
// asks for the password of the existing one.
func (a *App) Open(ctx context.Context, firstRun bool) error {
	if firstRun {
		return a.create(ctx)
	}
	return a.unlock(ctx)
}

func (a *App) create(ctx context.Context) error {
	titleColor.Fprintln(a.out, "New diary")
	pw, err := GetPassword(a.in, "Define a password", a.out)
	if err != nil {
		return err
	}
	confirm, err := GetPassword(a.in, "Confirm the password", a.out)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.in, "Name of the diary", a.out)
	if err != nil {
		return err
	}

	sess, err := a.svc.Create(ctx, pw, confirm, name, services.CreateOptions{
		Salted: a.config.Salted,
		KDF:    a.config.KeyDerivation(),
	})
	if err != nil {
		return err
	}
	a.sess = sess
	fmt.Fprintf(a.out, "Diary %q created in %s\n", name, a.config.DataFile)
	return nil
}

func (a *App) unlock(ctx context.Context) error {
	pw, err := GetPassword(a.in, "Password", a.out)
	if err != nil {
		return err
	}
	sess, err := a.svc.Unlock(ctx, pw)
	if err != nil {
		return err
	}
	a.sess = sess
	return nil
}

// Close saves the selected note and destroys the session key.
func (a *App) Close(ctx context.Context) error {
	if !a.isOpen() {
		return nil
	}
	defer a.sess.Wipe()
	if a.sess.Selected() < 1 {
		return nil
	}
	return a.svc.SaveSelected(ctx, a.sess, a.current)
}

func parseID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid note id %q", args[0])
	}
	return id, nil
}

func (a *App) Tree(ctx context.Context) error {
	t, err := a.svc.Tree(ctx, a.sess)
	if err != nil {
		return err
	}
	return renderTree(a.out, t, a.sess.Selected())
}

// PrintTree writes the uncolored outline, for scripts.
func (a *App) PrintTree(ctx context.Context) error {
	t, err := a.svc.Tree(ctx, a.sess)
	if err != nil {
		return err
	}
	return t.Render(a.out)
}

// renderTree prints t with ids highlighted and the selected note marked.
func renderTree(w io.Writer, t *tree.Tree, selected int64) error {
	var werr error
	t.Walk(func(h tree.Handle, n tree.Node, depth int) bool {
		if h == tree.RootHandle {
			_, werr = titleColor.Fprintln(w, n.Name)
			return werr == nil
		}
		mark := " "
		if n.ID == selected {
			mark = "*"
		}
		_, werr = fmt.Fprintf(w, "%*s%s%s %s\n", depth*2, "", mark, idColor.Sprintf("[%d]", n.ID), n.Name)
		return werr == nil
	})
	if werr != nil {
		return werr
	}
	for _, o := range t.Orphans() {
		if _, err := errColor.Fprintf(w, "! [%d] %s (unattached, parent %d)\n", o.ID, o.Name, o.ParentID); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) Select(ctx context.Context, args []string) error {
	id, err := parseID(args, "select <id>")
	if err != nil {
		return err
	}
	text, err := a.svc.Select(ctx, a.sess, id, a.current)
	if err != nil {
		return err
	}
	a.current = text
	fmt.Fprintln(a.out, text)
	return nil
}

// Print writes the text of one note. The selection is left alone, so
// Close has nothing to save.
func (a *App) Print(ctx context.Context, args []string) error {
	id, err := parseID(args, "show <id>")
	if err != nil {
		return err
	}
	text, err := a.svc.Read(ctx, a.sess, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, text)
	return nil
}

func (a *App) Show(ctx context.Context) error {
	if a.sess.Selected() < 1 {
		return services.ErrNothingSelected
	}
	titleColor.Fprintf(a.out, "[%d]\n", a.sess.Selected())
	fmt.Fprintln(a.out, a.current)
	return nil
}

func (a *App) Edit(ctx context.Context) error {
	if a.sess.Selected() < 1 {
		return services.ErrNothingSelected
	}
	text, err := GetMultiline(a.in, "New text", a.out)
	if err != nil {
		return err
	}
	if err := a.svc.SaveSelected(ctx, a.sess, text); err != nil {
		return err
	}
	a.current = text
	return nil
}

// Add creates a note under the given parent, or under the selected note
// when no parent is given.
func (a *App) Add(ctx context.Context, args []string) error {
	parent := a.sess.Selected()
	if len(args) > 0 {
		var err error
		if parent, err = parseID(args, "add [parent]"); err != nil {
			return err
		}
	}
	id, err := a.svc.AddLeaf(ctx, a.sess, parent)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created note %d\n", id)
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	id, err := parseID(args, "rename <id>")
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.in, "New name", a.out)
	if err != nil {
		return err
	}
	return a.svc.Rename(ctx, a.sess, id, name)
}

func (a *App) Remove(ctx context.Context, args []string) error {
	id, err := parseID(args, "rm <id>")
	if err != nil {
		return err
	}
	selected := a.sess.Selected()
	if err := a.svc.Remove(ctx, a.sess, id); err != nil {
		return err
	}
	if selected == id {
		a.current = ""
	}
	fmt.Fprintf(a.out, "Removed note %d\n", id)
	return nil
}

func (a *App) Info(ctx context.Context) error {
	info, err := a.svc.Info(ctx)
	if err != nil {
		return err
	}
	storeID := info.StoreID
	if storeID == "" {
		storeID = "-"
	}
	created := "-"
	if !info.CreatedAt.IsZero() {
		created = info.CreatedAt.Local().Format("2006-01-02 15:04:05")
	}
	fmt.Fprintf(a.out, "file:     %s\nstore id: %s\ncreated:  %s\nkdf:      %s (salted: %t)\nbooks:    %d\nnotes:    %d\n",
		info.Path, storeID, created, info.KDF, info.Salted, info.Books, info.Journals)
	return nil
}

// report prints err unless it is nil. Expected user errors are not logged.
func (a *App) report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	if !errors.Is(err, services.ErrNothingSelected) {
		a.log.Debug(ctx, "command failed", "error", err)
	}
	a.printErr(err)
}
