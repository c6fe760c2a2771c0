package cmd

import (
	"aqueduct/core"
	"aqueduct/internal/aqueduct"
	"aqueduct/pkg/fixedpoint"

	"github.com/spf13/cobra"
)

// governing command for listing a reserve
var addReserveCmd = &cobra.Command{
	Use:   "add-reserve",
	Short: "list a new reserve",
	Run: func(cmd *cobra.Command, args []string) {
		assetID, e := cmd.Flags().GetString("asset")
		if e != nil || assetID == "" {
			panic("invalid asset")
		}
		symbol, e := cmd.Flags().GetString("symbol")
		if e != nil || symbol == "" {
			panic("invalid symbol")
		}

		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		system := provideSystem(rootCmd.Version)
		poolService := providePoolService(system, database)

		reserve := &core.Reserve{
			AssetID: assetID,
			Symbol:  symbol,

			// 0% base, 4% slope1, 60% slope2, kink at 80%
			BaseVariableBorrowRate: fixedpoint.New(0),
			VariableSlope1:         fixedpoint.MustFromString("40000000000000000000000000"),
			VariableSlope2:         fixedpoint.MustFromString("600000000000000000000000000"),
			StableSlope1:           fixedpoint.MustFromString("20000000000000000000000000"),
			StableSlope2:           fixedpoint.MustFromString("600000000000000000000000000"),
			OptimalUtilization:     fixedpoint.MustFromString("800000000000000000"),
		}
		cfg := core.ReserveConfiguration{
			LoanToValue:          aqueduct.DefaultLoanToValueBps,
			LiquidationThreshold: aqueduct.DefaultLiquidationThresholdBps,
			LiquidationBonus:     aqueduct.LiquidationBonusBps,
			ReserveFactor:        1000,
			Decimals:             18,
			Active:               true,
			BorrowingEnabled:     true,
		}

		if err := poolService.ListReserve(ctx, requester(), reserve, cfg); err != nil {
			cmd.PrintErrln("list reserve error:", err)
			return
		}

		cmd.Println("listed", symbol, assetID)
	},
}

// requester the configured operator used by governing commands
func requester() string {
	if len(cfg.Admins) > 0 {
		return cfg.Admins[0]
	}
	return ""
}

func init() {
	rootCmd.AddCommand(addReserveCmd)
	addReserveCmd.Flags().String("asset", "", "asset id")
	addReserveCmd.Flags().String("symbol", "", "asset symbol")
}
