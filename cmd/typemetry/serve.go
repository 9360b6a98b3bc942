package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	api "github.com/typemetry/typemetry/internal/api/http"
	"github.com/typemetry/typemetry/internal/bank"
	"github.com/typemetry/typemetry/internal/config"
	"github.com/typemetry/typemetry/internal/db"
	"github.com/typemetry/typemetry/internal/scoring"
	"github.com/typemetry/typemetry/internal/session"
	"github.com/typemetry/typemetry/internal/source"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring gateway",
	Long: `Starts the REST gateway. Weights come from PAYLOAD_PATH when set,
otherwise from the banks stored in the database. BANK_DIR loads an
authored package into the store before serving.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	// The store is skipped only for pure payload-file serving; sessions
	// then hand out no item stems and positional sheets are rejected.
	var store bank.Store
	if cfg.PayloadPath == "" || cfg.BankDir != "" || cfg.DBDSN != "" {
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("db open: %w", err)
		}
		store = bank.NewSQLStore(dbh, cfg.DBDriver)
	}
	if cfg.BankDir != "" {
		mode, n, err := loadBankDir(ctx, store, cfg.BankDir, cfg.PayloadKey)
		if err != nil {
			return err
		}
		logger.Info("bank loaded", zap.String("mode", mode), zap.Int("items", n))
	}

	var src scoring.Source
	switch {
	case cfg.PayloadPath != "":
		src = source.NewCached(source.FileSource{Path: cfg.PayloadPath, Key: cfg.PayloadKey})
	case store != nil:
		src = source.NewCached(bank.NewStoreSource(store, cfg.PayloadKey))
	default:
		return fmt.Errorf("no payload source: set PAYLOAD_PATH or load a bank")
	}

	opts := []scoring.Option{scoring.WithLogger(logger)}
	if store != nil {
		opts = append(opts, scoring.WithItems(bank.Items{Store: store}))
	}
	svc := scoring.NewService(src, opts...)

	// Warm every mode before accepting traffic.
	modes, err := svc.Modes(ctx)
	if err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, mode := range modes {
		g.Go(func() error { return svc.Init(gctx, mode) })
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("engine warmup: %w", err)
	}

	reg := session.NewRegistry(cfg.SessionTTL)
	defer reg.Close()

	handler := api.New(api.Deps{
		Scoring:  svc,
		Banks:    store,
		Sessions: reg,
		Codec:    session.NewCodec(cfg.SessionSecret),
		TokenTTL: cfg.SessionTTL,
		Origins:  cfg.CORSOrigins(),
		Log:      logger,
	})

	logger.Info("listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("mode", string(cfg.Mode)),
		zap.Strings("payload_modes", modes),
	)
	return http.ListenAndServe(cfg.HTTPAddr, handler)
}
