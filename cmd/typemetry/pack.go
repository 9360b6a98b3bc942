package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/typemetry/typemetry/internal/bank"
	"github.com/typemetry/typemetry/internal/config"
	"github.com/typemetry/typemetry/internal/payload"
)

var (
	packOut     string
	packKey     string
	packVersion string
)

var packCmd = &cobra.Command{
	Use:   "pack [dir]",
	Short: "Seal an authored package into a payload file",
	Long: `Reads an authored package directory (bank.*, weights.*, optional
funcs.* and types.*) and writes a sealed payload file. The seal is a
shipping wrapper, not a security boundary: the key travels with the
deployment that opens it.`,
	Args: cobra.ExactArgs(1),
	RunE: runPack,
}

func init() {
	packCmd.Flags().StringVarP(&packOut, "out", "o", "payload.tmpk", "output file")
	packCmd.Flags().StringVar(&packKey, "key", "", "payload key (defaults to PAYLOAD_KEY)")
	packCmd.Flags().StringVar(&packVersion, "version", "", "payload version (defaults to the bank's)")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	if packKey == "" {
		packKey = config.FromEnv().PayloadKey
	}

	p, err := bank.LoadDir(args[0])
	if err != nil {
		return err
	}
	env := p.Envelope(packVersion, time.Now().Unix())
	sealed, err := payload.Seal(env, packKey)
	if err != nil {
		return fmt.Errorf("seal: %w", err)
	}
	if err := os.WriteFile(packOut, sealed, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "sealed %s: mode %q, %d items, version %q, %d bytes\n",
		packOut, p.Bank.Mode, len(p.Bank.Items), env.Version, len(sealed))
	return nil
}
