package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shopassist/concierge/internal/catalog"
	"github.com/shopassist/concierge/internal/config"
	"github.com/shopassist/concierge/internal/engine"
	"github.com/shopassist/concierge/internal/providers"
	"github.com/shopassist/concierge/internal/session"
	"github.com/shopassist/concierge/internal/shop"
)

var (
	flagDataDir   string
	flagStorage   string
	flagStorePath string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "concierge",
	Short: "Conversational shopping assistant",
	Long: `Concierge answers storefront questions by decomposing each query into
capability goals (product search, stock, deals, shipping, orders, reviews),
executing them in dependency order, and synthesizing a single reply that is
refined through bounded self-reflection.

Sessions persist conversation history and working memory across runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data", "data", "Directory holding the storefront JSON fixtures")
	rootCmd.PersistentFlags().StringVar(&flagStorage, "storage", "", "Session store backend: file or sqlite (default from config, then file)")
	rootCmd.PersistentFlags().StringVar(&flagStorePath, "store-path", "", "Session store location (default .concierge/sessions or .concierge/sessions.db)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Log engine transitions, goals, and reflections")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// runtime bundles everything a command needs to process queries.
type runtime struct {
	engine  *engine.Engine
	shop    *shop.Shop
	store   session.Store
	watcher *catalog.Watcher
	model   string
}

func (r *runtime) Close() {
	if r.watcher != nil {
		r.watcher.Stop()
	}
	if r.store != nil {
		r.store.Close()
	}
	if r.shop != nil {
		r.shop.Close()
	}
}

// newRuntime wires config, fixtures, session store, and provider into a
// ready engine. Config file settings yield to explicit flags.
func newRuntime(ctx context.Context, watchCatalog bool) (*runtime, error) {
	cfg := loadConfig()
	cfg.ApplyEnv()

	dataDir := flagDataDir
	if dataDir == "data" && cfg.DataDir != "" {
		dataDir = cfg.DataDir
	}
	shopfront, err := shop.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open storefront data: %w", err)
	}
	rt := &runtime{shop: shopfront}

	if watchCatalog {
		w, err := catalog.NewWatcher(shopfront.Catalog)
		if err != nil {
			log.Printf("catalog watching disabled: %v", err)
		} else if err := w.Start(); err != nil {
			log.Printf("catalog watching disabled: %v", err)
		} else {
			rt.watcher = w
		}
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.store = store

	llm, model, err := providers.NewLLMClientFromEnv()
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.model = model

	opts := engine.Options{
		Store:        store,
		HistoryLimit: cfg.HistoryLimit,
	}
	if flagVerbose {
		opts.Hook = engine.LoggerHook{L: log.New(os.Stderr, "engine: ", log.Ltime)}
	}
	rt.engine = engine.New(llm, mustRegistry(shopfront), opts)
	return rt, nil
}

func mustRegistry(s *shop.Shop) engine.Registry {
	reg, err := s.Registry()
	if err != nil {
		// Only reachable if the built-in capability table is broken.
		panic(err)
	}
	return reg
}

func loadConfig() *config.Config {
	manager, err := config.NewManager()
	if err != nil {
		log.Printf("config manager unavailable: %v", err)
		return &config.Config{}
	}
	cfg, err := manager.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return &config.Config{}
	}
	return cfg
}

func openStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	storage := flagStorage
	if storage == "" {
		storage = cfg.Storage
	}
	if storage == "" {
		storage = "file"
	}

	switch storage {
	case "file":
		path := flagStorePath
		if path == "" {
			path = filepath.Join(".concierge", "sessions")
		}
		return session.NewFileStore(path), nil
	case "sqlite":
		path := flagStorePath
		if path == "" {
			path = filepath.Join(".concierge", "sessions.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		return session.NewSQLiteStore(ctx, path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want file or sqlite)", storage)
	}
}
