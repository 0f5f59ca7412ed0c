package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comexar/despacho/internal/cli"
	"github.com/comexar/despacho/internal/model"
)

func statsCmd() *cobra.Command {
	var withHistory bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dataset and classification statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			table, err := loadTable()
			if err != nil {
				return err
			}
			stats := table.Stats()

			fmt.Println(cli.TitleStyle.Render("Nomenclatura"))
			fmt.Printf("%s %d\n", cli.BoldStyle.Render("Registros:"), stats.TotalRecords)
			fmt.Printf("%s %d\n", cli.BoldStyle.Render("Códigos únicos:"), stats.UniqueCodes)
			fmt.Printf("%s %d\n", cli.BoldStyle.Render("Capítulos:"), len(stats.Chapters))
			fmt.Printf("%s %d terminales, %d intermedias, %d encabezados\n",
				cli.BoldStyle.Render("Posiciones:"),
				stats.RecordTypeCounts[model.RecordTerminal],
				stats.RecordTypeCounts[model.RecordIntermediate],
				stats.RecordTypeCounts[model.RecordHeader])

			if !withHistory {
				return nil
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			counts, err := store.SourceCounts(ctx)
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render("Clasificaciones guardadas"))
			if len(counts) == 0 {
				fmt.Println(cli.SubtleStyle.Render("sin clasificaciones guardadas"))
				return nil
			}
			for source, n := range counts {
				fmt.Printf("%-28s %d\n", string(source), n)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&withHistory, "history", false, "include saved classification counts")

	return cmd
}
