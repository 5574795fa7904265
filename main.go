package main

import (
	"context"
	"fmt"
	"os"

	"prison-records/internal/config"
	"prison-records/internal/database"
	"prison-records/internal/importer"
	"prison-records/internal/logging"
	"prison-records/internal/report"
	"prison-records/internal/router"
	"prison-records/internal/store"
	"prison-records/internal/textgen"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "prison-records",
	Short:        "Prisoner records service",
	Long:         `Keeps the prisoner register: list views, spreadsheet import and export, and AI reports.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.yaml if present)")
	rootCmd.AddCommand(serveCmd, importCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// app is everything the commands share.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    store.Store
	importer *importer.Importer
	composer *report.Composer
}

func newApp(ctx context.Context) (*app, error) {
	// load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	gen, model := textGenerator(ctx, cfg, logger)
	norm := &importer.Normalizer{Location: cfg.Location()}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  st,
		importer: &importer.Importer{
			Store:      st,
			Normalizer: norm,
			AI: &importer.AINormalizer{
				Gen:        gen,
				Model:      model,
				MaxRows:    cfg.GenAI.MaxImportRows,
				Facility:   cfg.App.Facility,
				Normalizer: norm,
				Logger:     logger,
			},
			Logger: logger,
		},
		composer: &report.Composer{
			Gen:      gen,
			Model:    model,
			Facility: cfg.App.Facility,
			Logger:   logger,
		},
	}, nil
}

// openStore keeps records in memory unless a database path is configured.
func openStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	opts := store.Options{Location: cfg.Location()}
	if cfg.Database.Path == "" {
		logger.Info("using in-memory record store")
		return store.NewMemoryStore(opts), nil
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("using sqlite record store", zap.String("path", cfg.Database.Path))
	return store.NewGormStore(db, opts), nil
}

// textGenerator falls back to textgen.Unavailable without an API key so the
// non-AI features keep working.
func textGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (textgen.Generator, string) {
	model := cfg.GenAI.Model
	if model == "" {
		model = textgen.DefaultModel
	}
	if cfg.GenAI.APIKey == "" {
		logger.Warn("no API key configured, AI import and reports are disabled")
		return textgen.Unavailable, model
	}
	g, err := textgen.NewGemini(ctx, cfg.GenAI.APIKey, model, logger)
	if err != nil {
		logger.Error("init gemini client", zap.Error(err))
		return textgen.Unavailable, model
	}
	return g, model
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	// setup router
	r, err := router.SetupRouter(a.cfg, router.Deps{
		Store:    a.store,
		Importer: a.importer,
		Composer: a.composer,
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Address, a.cfg.Server.Port)
	a.logger.Info("server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		return fmt.Errorf("run server: %w", err)
	}
	return nil
}
