package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/comexar/despacho/internal/cli"
	"github.com/comexar/despacho/internal/freight"
)

func freightCmd() *cobra.Command {
	var (
		origin   string
		weightKG float64
		volumeM3 float64
	)

	cmd := &cobra.Command{
		Use:   "freight",
		Short: "Quote freight to Argentina across available carriers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := slog.Default()

			if weightKG <= 0 && volumeM3 <= 0 {
				return fmt.Errorf("provide --weight or --volume")
			}

			carriers := []freight.Carrier{freight.NewTableCarrier()}

			if key := viper.GetString("freight.fedex.api_key"); key != "" {
				fedex, err := freight.NewFedEx(freight.CourierConfig{
					BaseURL: viper.GetString("freight.fedex.base_url"),
					APIKey:  key,
				}, logger)
				if err != nil {
					return err
				}
				carriers = append(carriers, fedex)
			}
			if key := viper.GetString("freight.dhl.api_key"); key != "" {
				dhl, err := freight.NewDHL(freight.CourierConfig{
					BaseURL: viper.GetString("freight.dhl.base_url"),
					APIKey:  key,
				}, logger)
				if err != nil {
					return err
				}
				carriers = append(carriers, dhl)
			}

			shipment := freight.Shipment{
				OriginCountry: origin,
				WeightKG:      weightKG,
				VolumeM3:      volumeM3,
			}

			best, err := freight.Cheapest(ctx, carriers, shipment)
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render("Flete"))
			fmt.Printf("%s %s\n", cli.BoldStyle.Render("Carrier:"), best.Carrier)
			fmt.Printf("%s %s\n", cli.BoldStyle.Render("Servicio:"), best.Service)
			fmt.Printf("%s USD %.2f\n", cli.BoldStyle.Render("Costo:"), best.CostUSD)
			fmt.Printf("%s %d días\n", cli.BoldStyle.Render("Tránsito:"), best.TransitDays)

			return nil
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "US", "origin country code")
	cmd.Flags().Float64Var(&weightKG, "weight", 0, "chargeable weight in kg")
	cmd.Flags().Float64Var(&volumeM3, "volume", 0, "volume in cubic meters (quotes sea freight)")

	return cmd
}
