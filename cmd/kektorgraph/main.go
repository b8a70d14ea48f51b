package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanonone/kektorgraph/internal/config"
	"github.com/sanonone/kektorgraph/pkg/store"
)

const usage = `usage: kektorgraph [-config file] [-v] <command> [args]

commands:
  import  -format adj|tsv|bin|json|bundle [-key k] file [edgefile]
  export  -format json|bin|bundle key
  random  [-key k] [-simple] [-seed s] nodes edges
  list    [prefix]
  info    key
  check   key
  compact key
  delete  key
  iso     [-workers n] keyA keyB [keyA keyB ...]
  sub     [-labels] [-limit n] target pattern
  serve   [-addr host:port]
`

// app carries what every command needs.
type app struct {
	cfg   config.Config
	store *store.Store
	out   *os.File
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("kektorgraph", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to the YAML configuration file")
	verbose := fs.Bool("v", false, "Enable debug logging")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", fs.Arg(0), usage)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	// serve applies the timeout per search instead.
	if cfg.Match.Timeout > 0 && fs.Arg(0) != "serve" {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Match.Timeout)
		defer cancel()
	}

	if cfg.Metrics.Enabled {
		srv := startMetrics(cfg.Metrics.Addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	st, err := store.Open(cfg.StoreOptions())
	if err != nil {
		slog.Error("Failed to open store", "dir", cfg.Store.DataDir, "error", err)
		return 1
	}
	defer st.Close()

	a := &app{cfg: cfg, store: st, out: os.Stdout}
	if err := cmd(ctx, a, fs.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		slog.Error("Command failed", "command", fs.Arg(0), "error", err)
		return 1
	}
	return 0
}

func startMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		slog.Info("Metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics endpoint failed", "error", err)
		}
	}()
	return srv
}
