// Navishell plays branching terminal stories: numbered story choices
// mixed with a sandboxed pseudo-shell.
// Usage: navishell [--version] [--plain] [--trace] [--config <file>]
//
//	[--session <name>] [--store file|redis] [--script <file>] [game_directory]
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/nathoo/navishell/cli"
	"github.com/nathoo/navishell/config"
	"github.com/nathoo/navishell/engine"
	"github.com/nathoo/navishell/engine/shell"
	"github.com/nathoo/navishell/engine/state"
	"github.com/nathoo/navishell/loader"
	"github.com/nathoo/navishell/logger"
	"github.com/nathoo/navishell/session"
	"github.com/nathoo/navishell/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: navishell [--version] [--plain] [--trace] [--config <file>] [--session <name>] [--store file|redis] [--script <file>] [game_directory]\n"

// options holds command-line overrides; empty strings leave config alone.
type options struct {
	plain      bool
	trace      bool
	configFile string
	session    string
	store      string
	scriptFile string
	gameDir    string
}

func main() {
	opts, ok := parseArgs(os.Args[1:])
	if !ok {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs reads flags. It returns false when the program should exit
// without running, after printing version or usage.
func parseArgs(args []string) (options, bool) {
	var opts options
	needValue := func(i int, flag string) {
		if i+1 >= len(args) {
			fmt.Fprintf(os.Stderr, "%s requires a value\n", flag)
			os.Exit(1)
		}
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("navishell %s (commit %s, built %s)\n", version, commit, date)
			return opts, false
		case "--help", "-h":
			fmt.Print(usage)
			return opts, false
		case "--plain":
			opts.plain = true
		case "--trace":
			opts.trace = true
		case "--config", "--session", "--store", "--script":
			needValue(i, args[i])
			flag, value := args[i], args[i+1]
			i++
			switch flag {
			case "--config":
				opts.configFile = value
			case "--session":
				opts.session = value
			case "--store":
				opts.store = value
			case "--script":
				opts.scriptFile = value
			}
		default:
			if opts.gameDir == "" {
				opts.gameDir = args[i]
			}
		}
	}
	return opts, true
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	if opts.gameDir != "" {
		cfg.GameDir = opts.gameDir
	}
	if opts.session != "" {
		cfg.Session = opts.session
	}
	if opts.store != "" {
		cfg.Store = opts.store
	}
	if opts.plain || opts.scriptFile != "" || !isTerminal() {
		cfg.Plain = true
	}

	logOut, closeLog := logDestination(cfg)
	defer closeLog()
	log := logger.Setup(cfg, logOut)

	// Load and compile Lua game content.
	storyDir, sandboxDir := cfg.ContentDirs()
	defs, err := loader.Load(cfg.GameDir, loader.Options{
		StoryDir: storyDir,
		Commands: shell.Commands(),
		Log:      log,
	})
	if err != nil {
		return fmt.Errorf("loading game: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg, defs, log)
	if err != nil {
		return err
	}
	defer closeStore()

	s, name, fresh, err := session.Bootstrap(ctx, store, cfg.Session, defs, log)
	if err != nil {
		return err
	}
	log = logger.WithSession(log, name)

	eng := engine.New(defs, storyDir, sandboxDir)
	eng.Log = log
	eng.Shell.Log = log
	eng.SetState(s)

	if !cfg.Plain {
		return tui.Run(ctx, eng, store, name)
	}

	fmt.Printf("%s v%s by %s\n", defs.Game.Title, defs.Game.Version, defs.Game.Author)
	if fresh {
		fmt.Printf("[New session: %s]\n\n", name)
	} else {
		fmt.Printf("[Resumed session: %s]\n\n", name)
	}

	eng.Shell.Sleep = time.Sleep
	c := cli.New(eng, store, name)
	c.Trace = opts.trace
	c.TypeDelay = cfg.TypewriterDelay
	c.Log = log

	// Script mode: read commands from a file, echo them, no pacing.
	if opts.scriptFile != "" {
		f, err := os.Open(opts.scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c.In = f
		c.EchoInput = true
		c.TypeDelay = 0
		c.Sleep = func(time.Duration) {}
		eng.Shell.Sleep = nil
	}
	return c.Run(ctx)
}

// openStore returns the configured session store and its cleanup.
func openStore(ctx context.Context, cfg *config.Config, defs *state.Defs, log *slog.Logger) (session.Store, func(), error) {
	if cfg.Store != config.StoreRedis {
		return session.NewFileStore(cfg.SaveDir, defs, log), func() {}, nil
	}

	rs := session.NewRedisStore(cfg.RedisAddr, defs, log)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		rs.Close()
		return nil, nil, err
	}
	return rs, func() { rs.Close() }, nil
}

// logDestination keeps logs off the TUI's screen: the plain CLI logs to
// stderr, the TUI to a file in the save directory.
func logDestination(cfg *config.Config) (io.Writer, func()) {
	if cfg.Plain {
		return os.Stderr, func() {}
	}
	if err := os.MkdirAll(cfg.SaveDir, 0o755); err != nil {
		return io.Discard, func() {}
	}
	f, err := os.OpenFile(filepath.Join(cfg.SaveDir, "navishell.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return io.Discard, func() {}
	}
	return f, func() { f.Close() }
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
