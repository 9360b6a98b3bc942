package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/typemetry/typemetry/internal/bank"
	"github.com/typemetry/typemetry/internal/config"
	"github.com/typemetry/typemetry/internal/db"
	"github.com/typemetry/typemetry/internal/payload"
)

var bankKey string

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Manage stored question banks",
}

var bankLoadCmd = &cobra.Command{
	Use:   "load [dir]",
	Short: "Load an authored package into the bank store",
	Long: `Reads an authored package directory, seals its weights, and upserts
the bank into the database configured by DB_DRIVER/DB_DSN. Loading the
same mode again replaces it.`,
	Args: cobra.ExactArgs(1),
	RunE: runBankLoad,
}

func init() {
	bankLoadCmd.Flags().StringVar(&bankKey, "key", "", "payload key (defaults to PAYLOAD_KEY)")
	bankCmd.AddCommand(bankLoadCmd)
	rootCmd.AddCommand(bankCmd)
}

func runBankLoad(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	if bankKey == "" {
		bankKey = cfg.PayloadKey
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer dbh.Close()

	store := bank.NewSQLStore(dbh, cfg.DBDriver)
	mode, n, err := loadBankDir(ctx, store, args[0], bankKey)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "loaded bank %q (%d items) into %s\n", mode, n, cfg.DBDriver)
	return nil
}

// loadBankDir seals an authored package and upserts it into the store.
// It returns the bank's mode and item count.
func loadBankDir(ctx context.Context, store bank.Store, dir, key string) (string, int, error) {
	p, err := bank.LoadDir(dir)
	if err != nil {
		return "", 0, fmt.Errorf("bank dir: %w", err)
	}
	sealed, err := payload.Seal(p.Envelope("", time.Now().Unix()), key)
	if err != nil {
		return "", 0, fmt.Errorf("seal: %w", err)
	}
	if err := store.PutBank(ctx, p.Bank, sealed); err != nil {
		return "", 0, fmt.Errorf("store bank: %w", err)
	}
	return p.Bank.Mode, len(p.Bank.Items), nil
}
