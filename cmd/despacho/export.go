package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/comexar/despacho/internal/cli"
	"github.com/comexar/despacho/internal/report"
	"github.com/comexar/despacho/internal/sheets"
)

func exportCmd() *cobra.Command {
	var (
		xlsxPath string
		toSheets bool
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved classifications to Excel or Google Sheets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := slog.Default()

			if xlsxPath == "" && !toSheets {
				return fmt.Errorf("provide --xlsx or --sheets")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			classifications, err := store.ListClassifications(ctx, limit)
			if err != nil {
				return err
			}
			if len(classifications) == 0 {
				return fmt.Errorf("no saved classifications to export")
			}

			if xlsxPath != "" {
				w := report.NewExcelWriter(logger)
				if err := w.WriteClassifications(xlsxPath, classifications); err != nil {
					return err
				}
				fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("wrote %d classifications to %s", len(classifications), xlsxPath)))
			}

			if toSheets {
				cfg := sheets.DefaultConfig()
				if err := cfg.LoadFromEnv(); err != nil {
					return err
				}

				writer, err := sheets.NewWriter(ctx, cfg, logger)
				if err != nil {
					return err
				}
				if err := writer.Write(ctx, classifications); err != nil {
					return err
				}
				fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("published %d classifications to Google Sheets", len(classifications))))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write an Excel workbook to this path")
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "publish to Google Sheets (GOOGLE_SHEETS_* env vars)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum classifications to export (default 50)")

	return cmd
}
