package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests use a stub.
type execIface interface {
	Tree(ctx context.Context) error
	Select(ctx context.Context, args []string) error
	Show(ctx context.Context) error
	Edit(ctx context.Context) error
	Add(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Info(ctx context.Context) error
	report(ctx context.Context, err error)
}

const helpText = `Commands:
  tree            show the notes of the diary
  select <id>     save the current note and open note <id>
  show            print the selected note
  edit            replace the text of the selected note
  add [parent]    add a note under parent (default: the selected note)
  rename <id>     rename a note
  rm <id>         delete a note; its children become orphans
  info            show store details
  exit | quit     save and leave`

// runREPL reads commands line by line from in and dispatches them to a. It
// returns on EOF, on read errors and on "exit" or "quit". Command errors are
// reported through a and do not stop the loop.
func runREPL(ctx context.Context, a execIface, promptFn func() string, in *bufio.Reader) {
	for {
		printlnFn(promptFn())
		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help", "?":
			printlnFn(helpText)

		case "tree", "ls":
			a.report(ctx, a.Tree(ctx))

		case "select", "cd":
			a.report(ctx, a.Select(ctx, args))

		case "show", "cat":
			a.report(ctx, a.Show(ctx))

		case "edit":
			a.report(ctx, a.Edit(ctx))

		case "add":
			a.report(ctx, a.Add(ctx, args))

		case "rename":
			a.report(ctx, a.Rename(ctx, args))

		case "rm", "delete":
			a.report(ctx, a.Remove(ctx, args))

		case "info":
			a.report(ctx, a.Info(ctx))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func (a *App) prompt() string {
	if a.sess != nil && a.sess.Selected() > 0 {
		return fmt.Sprintf("maitenotas [%d]> ", a.sess.Selected())
	}
	return "maitenotas> "
}

// Shell runs the interactive loop until the user leaves, then closes the
// session.
func (a *App) Shell(ctx context.Context) error {
	fmt.Fprintln(a.out, "Type 'help' for commands.")
	runREPL(ctx, a, a.prompt, a.in)
	return a.Close(ctx)
}
