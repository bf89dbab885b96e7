// Command spirit runs the collaborative markup editor server and its
// export tooling.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spiritlab/spirit/internal/api"
	"github.com/spiritlab/spirit/internal/auth"
	"github.com/spiritlab/spirit/internal/collab"
	"github.com/spiritlab/spirit/internal/config"
	"github.com/spiritlab/spirit/internal/export"
	"github.com/spiritlab/spirit/internal/index"
	"github.com/spiritlab/spirit/internal/store"
)

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:           "spirit",
		Short:         "Collaborative markup editor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to TOML config file")

	var serveOpts serveOptions
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfgPath, serveOpts)
		},
	}
	serve.Flags().StringVar(&serveOpts.host, "host", "", "listen host (overrides config)")
	serve.Flags().StringVar(&serveOpts.port, "port", "", "listen port (overrides config)")
	serve.Flags().StringVar(&serveOpts.store, "store", "", "storage root (overrides config)")

	var exportOpts exportOptions
	exportCmd := &cobra.Command{
		Use:   "export <document>",
		Short: "Render a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cfgPath, args[0], exportOpts)
		},
	}
	exportCmd.Flags().StringVarP(&exportOpts.format, "format", "f", "html", "output format: html, latex or md")
	exportCmd.Flags().StringVarP(&exportOpts.output, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportOpts.store, "store", "", "storage root (overrides config)")

	root.AddCommand(serve, exportCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type serveOptions struct {
	host, port, store string
}

type exportOptions struct {
	format, output, store string
}

func runServe(cfgPath string, opts serveOptions) error {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != "" {
		cfg.Server.Port = opts.port
	}
	if opts.store != "" {
		cfg.Server.Store = opts.store
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.New(cfg.Server.Store)
	if err != nil {
		return err
	}

	holder := index.NewHolder()
	rebuild := func() {
		ix, err := index.Build(ctx, st, log)
		if err != nil {
			log.Error("index rebuild failed", "error", err)
			return
		}
		holder.Set(ix)
	}
	rebuild()
	go func() {
		if err := index.Watch(ctx, st.Root(), log, rebuild); err != nil && ctx.Err() == nil {
			log.Error("storage watcher stopped", "error", err)
		}
	}()

	a := auth.New(cfg.Server.Secret, cfg.Server.Users)
	router := collab.NewRouter(st, cfg.Server.Autosave.Std(), log)
	clientConf := map[string]any{"macros": cfg.Client.Macros}
	hub := collab.NewHub(router, st, a, clientConf, rebuild, log)

	srv := api.NewServer(st, holder, hub, cfg.Server.Shell, cfg.Client.Macros, log)

	httpServer := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     srv,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		router.Shutdown()
		cancel()
	}()

	log.Info("starting spirit", "addr", cfg.Addr(), "store", st.Root(), "auth", a.Enabled())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func runExport(cfgPath, doc string, opts exportOptions) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if opts.store != "" {
		cfg.Server.Store = opts.store
	}

	st, err := store.New(cfg.Server.Store)
	if err != nil {
		return err
	}
	name := doc
	if filepath.Ext(name) == "" {
		name += ".md"
	}
	src, err := st.Load(name)
	if err != nil {
		return fmt.Errorf("loading %s: %w", name, err)
	}

	var rendered string
	switch opts.format {
	case "html":
		rendered = export.HTML(context.Background(), src, nil, cfg.Client.Macros)
	case "latex", "tex":
		rendered = export.Latex(src)
	case "md", "markdown":
		rendered = export.Markdown(src)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	if opts.output == "" {
		fmt.Print(rendered)
		return nil
	}
	return os.WriteFile(opts.output, []byte(rendered), 0o644)
}
