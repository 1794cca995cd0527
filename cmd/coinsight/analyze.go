package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coinsight/coinsight/internal/config"
)

func newAnalyzeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <symbol>",
		Short: "Run one full analysis for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			engine, cleanup, err := buildEngine(cfg, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			ctx, timeoutCancel := context.WithTimeout(ctx, cfg.Scan.AnalysisTimeout)
			defer timeoutCancel()

			symbol := strings.ToUpper(args[0])
			result, err := engine.Analyze(ctx, symbol)
			if err != nil {
				return fmt.Errorf("analysis of %s failed: %w", symbol, err)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Println(result.Summary)
			if result.RugPull.EstimatedMinutes != nil {
				fmt.Printf("Estimated minutes to full collapse: %.0f\n", *result.RugPull.EstimatedMinutes)
			}
			if len(result.Warnings) > 0 {
				fmt.Println("\nWarnings:")
				for _, w := range result.Warnings {
					fmt.Printf("  - %s\n", w)
				}
			}
			if len(result.Opportunities) > 0 {
				fmt.Println("\nOpportunities:")
				for _, o := range result.Opportunities {
					fmt.Printf("  - %s\n", o)
				}
			}
			fmt.Printf("\nPotentials: short %s, mid %s, long %s\n",
				result.Potentials.ShortTerm, result.Potentials.MidTerm, result.Potentials.LongTerm)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the full AnalysisResult as JSON")
	return cmd
}
