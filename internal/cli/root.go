package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/maitelab/maitenotas/internal/config"
	"github.com/maitelab/maitenotas/internal/logging"
	"github.com/maitelab/maitenotas/internal/services"
	"github.com/maitelab/maitenotas/internal/store"
)

type rootState struct {
	v       *viper.Viper
	cfgFile string
	app     *App
	store   *store.Store
}

// NewRootCmd builds the maitenotas command tree. Each call returns an
// independent tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	st := &rootState{v: viper.New()}

	root := &cobra.Command{
		Use:   "maitenotas",
		Short: "Encrypted hierarchical notes in a single local file",
		Long: `maitenotas keeps a tree of notes in one SQLite file. Note names and
bodies are encrypted with a key derived from your password, which is never
stored. Without a subcommand it opens the diary (creating it on first run)
and starts an interactive shell.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: st.setup,
		RunE:              st.runShell,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&st.cfgFile, "config", "", "config file (json, yaml or toml)")
	pf.String("data", "", "path of the data file")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	_ = st.v.BindPFlag(config.KeyDataFile, pf.Lookup("data"))
	_ = st.v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Open the diary and start the interactive shell",
			Args:  cobra.NoArgs,
			RunE:  st.runShell,
		},
		st.initCmd(),
		st.treeCmd(),
		st.showCmd(),
		st.addCmd(),
		st.renameCmd(),
		st.rmCmd(),
		st.infoCmd(),
	)
	return root
}

func (st *rootState) setup(cmd *cobra.Command, _ []string) error {
	if st.cfgFile != "" {
		st.v.SetConfigFile(st.cfgFile)
	}
	cfg, err := config.Load(st.v)
	if err != nil {
		return err
	}

	log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	st.store = store.New(cfg.DataFile, store.WithLogger(log), store.WithBusyTimeout(cfg.BusyTimeout))
	svc := services.NewDiaryService(st.store, log)
	st.app = NewApp(cfg, svc, log, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	return nil
}

// withSession unlocks the diary, runs fn and closes the session.
func (st *rootState) withSession(ctx context.Context, fn func(a *App) error) (err error) {
	if !st.store.Exists() {
		return fmt.Errorf("no diary at %s, run 'maitenotas init' first", st.store.Path())
	}
	if err := st.app.Open(ctx, false); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, st.app.Close(ctx))
	}()
	return fn(st.app)
}

func (st *rootState) runShell(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := st.app.Open(ctx, !st.store.Exists()); err != nil {
		return err
	}
	return st.app.Shell(ctx)
}

func (st *rootState) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new diary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if st.store.Exists() {
				return services.ErrStoreExists
			}
			if err := st.app.Open(ctx, true); err != nil {
				return err
			}
			return st.app.Close(ctx)
		},
	}
}

func (st *rootState) treeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the notes of the diary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withSession(cmd.Context(), func(a *App) error {
				return a.PrintTree(cmd.Context())
			})
		},
	}
}

func (st *rootState) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the text of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withSession(cmd.Context(), func(a *App) error {
				return a.Print(cmd.Context(), args)
			})
		},
	}
}

func (st *rootState) addCmd() *cobra.Command {
	var parent int64
	var text string
	c := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := strings.Join(args, " ")
			return st.withSession(ctx, func(a *App) error {
				id, err := a.svc.AddLeaf(ctx, a.sess, parent)
				if err != nil {
					return err
				}
				if err := a.svc.Rename(ctx, a.sess, id, name); err != nil {
					return err
				}
				if text != "" {
					if _, err := a.svc.Select(ctx, a.sess, id, ""); err != nil {
						return err
					}
					a.current = text
				}
				fmt.Fprintln(a.out, id)
				return nil
			})
		},
	}
	c.Flags().Int64Var(&parent, "parent", 0, "id of the parent note (0 for the top level)")
	c.Flags().StringVar(&text, "text", "", "initial text of the note")
	return c
}

func (st *rootState) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a note",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid note id %q", args[0])
			}
			return st.withSession(ctx, func(a *App) error {
				return a.svc.Rename(ctx, a.sess, id, strings.Join(args[1:], " "))
			})
		},
	}
}

func (st *rootState) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a note; its children become orphans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withSession(cmd.Context(), func(a *App) error {
				return a.Remove(cmd.Context(), args)
			})
		},
	}
}

func (st *rootState) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show store details; no password needed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.app.Info(cmd.Context())
		},
	}
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		errColor.Fprintln(root.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}
