// Package commands implements the arz client command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cppla/arz/app"
	"github.com/cppla/arz/config"
	"github.com/cppla/arz/models"
	"github.com/cppla/arz/remote"
	"github.com/cppla/arz/render"
	"github.com/cppla/arz/store"
)

// Execute runs the command tree against the process arguments and exits with its status.
func Execute() {
	c := newCLI(os.Stdout, os.Stderr)
	os.Exit(c.run(os.Args[1:]))
}

type cli struct {
	out    io.Writer
	errOut io.Writer

	// Global flags
	configPath string
	dataPath   string
	apiURL     string
	offline    bool
	verbose    bool

	cfg     config.AppConfig
	log     *zap.Logger
	storage *store.SQLiteStorage
	store   *store.Store
	app     *app.App
	view    *render.Renderer

	lastToast  string
	errorShown bool
}

func newCLI(out, errOut io.Writer) *cli {
	return &cli{out: out, errOut: errOut, log: zap.NewNop()}
}

// run executes args and returns the process exit code.
func (c *cli) run(args []string) int {
	root := c.rootCmd()
	root.SetArgs(args)
	err := root.Execute()
	c.close()
	if err == nil {
		return 0
	}
	if !c.errorShown {
		fmt.Fprintln(c.errOut, "Error:", err)
	}
	return 1
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "arz",
		Short: "Arz - share image posts from the terminal",
		Long: `Arz is an image-sharing community client. Posts, comments, bookmarks and the
signed-in account live in a local database and are mirrored to the Arz API when it is
reachable.

Examples:
  arz feed --search sunset
  arz post add --title "Dusk" --category Nature --content "..." --image dusk.png
  arz like 1
  arz --offline notifications --read`,
		Version:           "1.0.0",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return c.open(cmd.Context()) },
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultPath, "Path to the JSON config file")
	root.PersistentFlags().StringVar(&c.dataPath, "data", "", "Local database file (overrides config)")
	root.PersistentFlags().StringVar(&c.apiURL, "api", "", "API base URL (overrides config)")
	root.PersistentFlags().BoolVar(&c.offline, "offline", false, "Work without the API")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Verbose output")

	root.AddCommand(
		c.feedCmd(),
		c.postCmd(),
		c.likeCmd(),
		c.dislikeCmd(),
		c.commentCmd(),
		c.replyCmd(),
		c.bookmarkCmd(),
		c.bookmarksCmd(),
		c.followCmd(),
		c.registerCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.profileCmd(),
		c.themeCmd(),
		c.notificationsCmd(),
		c.pingCmd(),
	)
	return root
}

// open loads config, opens local storage and initialises the app.
func (c *cli) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadFrom(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.dataPath != "" {
		cfg.DataPath = c.dataPath
	}
	if c.apiURL != "" {
		cfg.APIBaseURL = c.apiURL
	}
	if c.offline {
		cfg.EnableBackend = false
	}
	c.cfg = cfg
	c.log = newLogger(c.errOut, c.verbose)

	storage, err := store.OpenSQLite(cfg.DataPath)
	if err != nil {
		return fmt.Errorf("failed to open local data: %w", err)
	}
	c.storage = storage
	c.store = store.New(storage,
		store.WithPostsPerPage(cfg.PostsPerPage),
		store.WithLogger(c.log),
	)

	timeout := time.Duration(cfg.RemoteTimeoutSec) * time.Second
	var api remote.API = remote.Disabled{}
	if cfg.EnableBackend {
		api = remote.NewClient(cfg.APIBaseURL, remote.WithTimeout(timeout), remote.WithLogger(c.log))
	}
	c.app = app.New(c.store, api,
		app.WithLogger(c.log),
		app.WithDisableWindow(time.Duration(cfg.DisableWindowMs)*time.Millisecond),
		app.WithSyncTimeout(timeout),
	)

	// Toasts already stored are history, not output of this run.
	if notes := c.store.Notifications(); len(notes) > 0 {
		c.lastToast = notes[0].ID
	}
	if err := c.app.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}
	c.view = render.New(c.out, c.store.Theme())
	return nil
}

// close drains background sync, prints this run's toasts and releases storage.
func (c *cli) close() {
	if c.app != nil {
		c.app.Wait()
	}
	if c.store != nil {
		c.flushToasts()
	}
	if c.storage != nil {
		if err := c.storage.Close(); err != nil {
			c.log.Warn("closing local data failed", zap.Error(err))
		}
	}
	_ = c.log.Sync()
}

// flushToasts prints notifications recorded since the last flush, oldest first.
func (c *cli) flushToasts() {
	notes := c.store.Notifications()
	var fresh []models.Notification
	for _, n := range notes {
		if n.ID == c.lastToast {
			break
		}
		fresh = append(fresh, n)
	}
	if len(notes) > 0 {
		c.lastToast = notes[0].ID
	}
	view := c.view
	if view == nil {
		view = render.New(c.out, c.store.Theme())
	}
	for i := len(fresh) - 1; i >= 0; i-- {
		n := fresh[i]
		if n.Type == models.NotifyError {
			c.errorShown = true
		}
		fmt.Fprintln(c.out, view.Toast(n.Type, n.Message))
	}
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}
