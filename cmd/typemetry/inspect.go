package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/typemetry/typemetry/internal/config"
	"github.com/typemetry/typemetry/internal/payload"
)

var inspectKey string

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Print payload metadata",
	Long: `Opens a payload file (sealed or plain JSON) and prints its metadata:
version, timestamp, modes and their item counts. Weight values are
never printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectKey, "key", "", "payload key (defaults to PAYLOAD_KEY)")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	if inspectKey == "" {
		inspectKey = config.FromEnv().PayloadKey
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	sealed := payload.IsSealed(data)
	env, err := payload.Decode(data, inspectKey)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "file:    %s\n", args[0])
	fmt.Fprintf(out, "sealed:  %v\n", sealed)
	fmt.Fprintf(out, "version: %s\n", env.Version)
	if env.TS > 0 {
		fmt.Fprintf(out, "ts:      %d (%s)\n", env.TS, time.Unix(env.TS, 0).UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(out, "modes:\n")
	for _, mode := range env.Modes() {
		if n := countItems(env.Weights[mode]); n >= 0 {
			fmt.Fprintf(out, "  %s: %d items\n", mode, n)
		} else {
			fmt.Fprintf(out, "  %s\n", mode)
		}
	}
	fmt.Fprintf(out, "mapping: funcs=%v types=%v\n", env.Mapping.Funcs != nil, env.Mapping.Types != nil)
	return nil
}

// countItems sizes a raw weight table without interpreting it.
func countItems(raw any) int {
	switch t := raw.(type) {
	case map[string]any:
		return len(t)
	case []any:
		return len(t)
	default:
		return -1
	}
}
