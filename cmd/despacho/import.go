package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comexar/despacho/internal/cli"
	"github.com/comexar/despacho/internal/engine"
)

func importCmd() *cobra.Command {
	var (
		save       bool
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Classify a batch of product descriptions from a file",
		Long: `Read product descriptions (one per line, # comments ignored) and classify
them concurrently. Results print in input order and can be persisted for
later export and review.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := slog.Default()

			requests, err := readDescriptions(args[0])
			if err != nil {
				return err
			}
			if len(requests) == 0 {
				return fmt.Errorf("no descriptions found in %s", args[0])
			}

			e, cleanup, err := buildEngine(logger)
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := e.ClassifyBatch(ctx, requests, !noProgress)
			if err != nil {
				return err
			}

			reviews := 0
			for i, result := range results {
				fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%d. %s", i+1, requests[i].Description)))
				fmt.Print(cli.FormatClassification(result))
				if result.RequiresManualReview {
					reviews++
				}
			}

			if save {
				store, storeErr := initStorage(ctx)
				if storeErr != nil {
					return storeErr
				}
				defer func() { _ = store.Close() }()

				for _, result := range results {
					if saveErr := store.SaveClassification(ctx, result); saveErr != nil {
						return saveErr
					}
				}
				fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("saved %d classifications", len(results))))
			}

			if reviews > 0 {
				fmt.Println(cli.WarningStyle.Render(fmt.Sprintf("%d of %d need manual review", reviews, len(results))))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "persist the results")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")

	return cmd
}

func readDescriptions(path string) ([]engine.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var requests []engine.Request
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		requests = append(requests, engine.Request{Description: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return requests, nil
}
