package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comexar/despacho/internal/cli"
	"github.com/comexar/despacho/internal/engine"
	"github.com/comexar/despacho/internal/listing"
)

func classifyCmd() *cobra.Command {
	var (
		listingURL string
		imageURL   string
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "classify [description]",
		Short: "Classify merchandise into an NCM position",
		Long: `Classify a product description (or a listing URL) into a terminal NCM
position with its duty treatment. Results can be persisted for later
export and review.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := slog.Default()

			description := strings.TrimSpace(strings.Join(args, " "))
			if description == "" && listingURL == "" {
				return fmt.Errorf("provide a product description or --url")
			}

			if listingURL != "" {
				product, err := listing.NewScraper(logger).Fetch(ctx, listingURL)
				if err != nil {
					return fmt.Errorf("failed to scrape listing: %w", err)
				}
				if description == "" {
					description = strings.TrimSpace(product.Title + " " + product.Description)
				}
				if imageURL == "" {
					imageURL = product.ImageURL
				}
			}

			e, cleanup, err := buildEngine(logger)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := e.Classify(ctx, engine.Request{
				Description: description,
				ImageURL:    imageURL,
			})
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render("Clasificación"))
			fmt.Print(cli.FormatClassification(result))

			if save {
				store, storeErr := initStorage(ctx)
				if storeErr != nil {
					return storeErr
				}
				defer func() { _ = store.Close() }()

				if saveErr := store.SaveClassification(ctx, result); saveErr != nil {
					return saveErr
				}
				fmt.Println(cli.SubtleStyle.Render("saved as " + result.RequestID))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&listingURL, "url", "", "listing URL to scrape for product facts")
	cmd.Flags().StringVar(&imageURL, "image", "", "product image URL for the oracle")
	cmd.Flags().BoolVar(&save, "save", false, "persist the result")

	return cmd
}
