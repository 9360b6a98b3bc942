package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/typemetry/typemetry/internal/bank"
	"github.com/typemetry/typemetry/internal/config"
	"github.com/typemetry/typemetry/internal/scoring"
	"github.com/typemetry/typemetry/internal/source"
)

var (
	scorePayload string
	scoreKey     string
	scoreMode    string
	scoreScale   string
	scoreSeed    string
	scoreBank    string
)

var scoreCmd = &cobra.Command{
	Use:   "score [sheet.json ...]",
	Short: "Score answer sheets from files",
	Long: `Scores one or more answer sheets against a payload and prints the
results to stdout in input order. A sheet file holds one JSON document
in any accepted form: an id-keyed map, a record list, or a positional
list. Positional sheets need --seed plus --bank for the item order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scorePayload, "payload", "p", "", "payload file (defaults to PAYLOAD_PATH)")
	scoreCmd.Flags().StringVar(&scoreKey, "key", "", "payload key (defaults to PAYLOAD_KEY)")
	scoreCmd.Flags().StringVarP(&scoreMode, "mode", "m", "", "assessment mode (required)")
	scoreCmd.Flags().StringVar(&scoreScale, "scale", "", "response scale: centered, one-to-five, zero-to-four")
	scoreCmd.Flags().StringVar(&scoreSeed, "seed", "", "shuffle seed for positional sheets")
	scoreCmd.Flags().StringVar(&scoreBank, "bank", "", "authored bank dir supplying the item order")
	_ = scoreCmd.MarkFlagRequired("mode")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	if scorePayload == "" {
		scorePayload = cfg.PayloadPath
	}
	if scoreKey == "" {
		scoreKey = cfg.PayloadKey
	}
	if scorePayload == "" {
		return fmt.Errorf("no payload: set --payload or PAYLOAD_PATH")
	}

	opts := []scoring.Option{scoring.WithLogger(logger)}
	if scoreBank != "" {
		pack, err := bank.LoadDir(scoreBank)
		if err != nil {
			return fmt.Errorf("bank dir: %w", err)
		}
		mem := bank.NewInMemoryStore()
		if err := mem.PutBank(cmd.Context(), pack.Bank, nil); err != nil {
			return err
		}
		opts = append(opts, scoring.WithItems(bank.Items{Store: mem}))
	}
	svc := scoring.NewService(
		source.NewCached(source.FileSource{Path: scorePayload, Key: scoreKey}),
		opts...,
	)

	results := make([]*scoring.Result, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, path := range args {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			var sheet scoring.AnswerSheet
			if err := json.Unmarshal(data, &sheet); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			res, err := svc.Score(ctx, scoring.ScoreRequest{
				Mode:    scoreMode,
				Seed:    scoreSeed,
				Scale:   scoreScale,
				Answers: sheet,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}
