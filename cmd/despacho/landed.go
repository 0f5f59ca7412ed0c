package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comexar/despacho/internal/cli"
	"github.com/comexar/despacho/internal/engine"
	"github.com/comexar/despacho/internal/freight"
	"github.com/comexar/despacho/internal/nomenclature"
	"github.com/comexar/despacho/internal/report"
	"github.com/comexar/despacho/internal/tax"
)

func landedCmd() *cobra.Command {
	var (
		fob         float64
		freightUSD  float64
		insurance   float64
		weightKG    float64
		volumeM3    float64
		province    string
		registered  bool
		reducedVAT  bool
		capitalGood bool
		ownUse      bool
		mercosur    bool
		xlsxPath    string
	)

	cmd := &cobra.Command{
		Use:   "landed [description]",
		Short: "Compute the landed cost of importing merchandise",
		Long: `Classify a product, resolve its duty treatment and itemize the full
Argentine import tax stack over the CIF value. Freight can be given
explicitly or estimated from weight/volume.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := slog.Default()

			if fob <= 0 {
				return fmt.Errorf("--fob must be positive")
			}

			description := strings.Join(args, " ")

			e, cleanup, err := buildEngine(logger)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := e.Classify(ctx, engine.Request{Description: description})
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render("Clasificación"))
			fmt.Print(cli.FormatClassification(result))

			if freightUSD == 0 && (weightKG > 0 || volumeM3 > 0) {
				quote, quoteErr := freight.Cheapest(ctx, []freight.Carrier{freight.NewTableCarrier()}, freight.Shipment{
					WeightKG: weightKG,
					VolumeM3: volumeM3,
				})
				if quoteErr != nil {
					return fmt.Errorf("failed to estimate freight: %w", quoteErr)
				}
				freightUSD = quote.CostUSD
				fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("freight estimated at USD %.2f (%s)", quote.CostUSD, quote.Service)))
			}

			shipment := tax.Shipment{
				FOB:                fob,
				Freight:            freightUSD,
				Insurance:          insurance,
				ReducedVAT:         reducedVAT,
				CapitalGood:        capitalGood,
				OwnUse:             ownUse,
				MercosurOrigin:     mercosur,
				ImporterRegistered: registered,
				Province:           province,
			}

			breakdown, err := tax.Calculate(shipment, result.Duty)
			if err != nil {
				return err
			}

			printBreakdown(breakdown)

			if weightKG > 0 {
				chapter := chapterOfCode(result.Code)
				courier := tax.CheckCourier(fob, weightKG, chapter)
				if courier.Eligible {
					fmt.Println(cli.SuccessStyle.Render("eligible for the simplified courier regime"))
				} else {
					for _, reason := range courier.Reasons {
						fmt.Println(cli.WarningStyle.Render("courier: " + reason))
					}
				}
			}

			if xlsxPath != "" {
				w := report.NewExcelWriter(logger)
				if err := w.WriteLandedCost(xlsxPath, result, breakdown); err != nil {
					return err
				}
				fmt.Println(cli.SubtleStyle.Render("workbook written to " + xlsxPath))
			}

			return nil
		},
	}

	cmd.Flags().Float64Var(&fob, "fob", 0, "FOB value in USD")
	cmd.Flags().Float64Var(&freightUSD, "freight", 0, "freight cost in USD (estimated from weight/volume when omitted)")
	cmd.Flags().Float64Var(&insurance, "insurance", 0, "insurance cost in USD")
	cmd.Flags().Float64Var(&weightKG, "weight", 0, "chargeable weight in kg")
	cmd.Flags().Float64Var(&volumeM3, "volume", 0, "volume in cubic meters")
	cmd.Flags().StringVar(&province, "province", "CABA", "destination province for IIBB")
	cmd.Flags().BoolVar(&registered, "registered", true, "importer is registered for income tax")
	cmd.Flags().BoolVar(&reducedVAT, "reduced-vat", false, "apply the 10.5% VAT rate")
	cmd.Flags().BoolVar(&capitalGood, "capital-good", false, "capital good (reduced VAT, no VAT perception)")
	cmd.Flags().BoolVar(&ownUse, "own-use", false, "import for own use (no VAT perception)")
	cmd.Flags().BoolVar(&mercosur, "mercosur", false, "Mercosur origin (statistical tax exempt)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the breakdown to an Excel workbook")

	return cmd
}

func printBreakdown(b tax.Breakdown) {
	fmt.Println(cli.TitleStyle.Render("Costo en destino"))
	line := func(label string, v float64) {
		fmt.Printf("%-28s USD %10.2f\n", label, v)
	}
	line("Valor CIF", b.CIF)
	line("Derechos de importación", b.Duty)
	if b.SpecificDuty > 0 {
		line("Derechos específicos", b.SpecificDuty)
	}
	line("Tasa estadística", b.Statistical)
	line("IVA", b.VAT)
	line("Percepción IVA", b.VATPerception)
	line("Percepción Ganancias", b.IncomePerception)
	line("IIBB", b.GrossReceipts)
	fmt.Println(cli.BoldStyle.Render(fmt.Sprintf("%-28s USD %10.2f", "Total impuestos", b.TotalTaxes)))
	fmt.Println(cli.BoldStyle.Render(fmt.Sprintf("%-28s USD %10.2f", "Costo final en destino", b.LandedCost)))
	fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("incidencia impositiva: %.2f%%", b.Incidence())))
	if b.Estimated {
		fmt.Println(cli.WarningStyle.Render("arancel estimado: posición pendiente de verificación"))
	}
}

func chapterOfCode(code string) int {
	normalized := nomenclature.Normalize(code)
	if len(normalized) < 2 {
		return 0
	}
	chapter := 0
	for _, r := range normalized[:2] {
		chapter = chapter*10 + int(r-'0')
	}
	return chapter
}
