package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/comexar/despacho/internal/cli"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Manage the manual review queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			items, err := store.PendingReviews(ctx)
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render("Revisión manual"))
			if len(items) == 0 {
				fmt.Println(cli.SuccessStyle.Render("no pending reviews"))
				return nil
			}

			for _, item := range items {
				fmt.Printf("%s %s %s\n",
					cli.BoldStyle.Render(fmt.Sprintf("#%d", item.ID)),
					cli.CodeStyle.Render(item.RequestID),
					cli.SubtleStyle.Render(item.CreatedAt.Format("2006-01-02")))
				fmt.Printf("   %s\n", item.Reason)
			}
			fmt.Println(cli.SubtleStyle.Render("resolve with: despacho review resolve <id> <code>"))

			return nil
		},
	}

	cmd.AddCommand(reviewResolveCmd())

	return cmd
}

func reviewResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [id] [code]",
		Short: "Resolve a pending review with a verified NCM code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			reviewID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid review id %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.ResolveReview(ctx, reviewID, args[1]); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("review #%d resolved as %s", reviewID, args[1])))
			return nil
		},
	}
}
