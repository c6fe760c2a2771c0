package cmd

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// governing command for the price oracle
var setPriceCmd = &cobra.Command{
	Use:   "set-price",
	Short: "set the oracle price of an asset",
	Run: func(cmd *cobra.Command, args []string) {
		assetID, e := cmd.Flags().GetString("asset")
		if e != nil || assetID == "" {
			panic("invalid asset")
		}

		price, e := cmd.Flags().GetString("price")
		if e != nil {
			panic(e)
		}
		priceNum, e := decimal.NewFromString(price)
		if e != nil || !priceNum.IsPositive() {
			panic("invalid price")
		}

		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		system := provideSystem(rootCmd.Version)
		oracleService := provideOracleService(system, database)

		if err := oracleService.SetPrice(ctx, requester(), assetID, priceNum); err != nil {
			cmd.PrintErrln("set price error:", err)
			return
		}

		cmd.Println("price of", assetID, "set to", priceNum)
	},
}

func init() {
	rootCmd.AddCommand(setPriceCmd)
	setPriceCmd.Flags().String("asset", "", "asset id")
	setPriceCmd.Flags().String("price", "", "price in the oracle base currency")
}
