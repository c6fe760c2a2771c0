package cmd

import (
	"aqueduct/pkg/fixedpoint"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// governing command for crediting custody balances
var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "credit units of an asset to a holder's custody balance",
	Run: func(cmd *cobra.Command, args []string) {
		assetID, e := cmd.Flags().GetString("asset")
		if e != nil || assetID == "" {
			panic("invalid asset")
		}
		userID, e := cmd.Flags().GetString("user")
		if e != nil || userID == "" {
			panic("invalid user")
		}

		amount, e := cmd.Flags().GetString("amount")
		if e != nil {
			panic(e)
		}
		amountNum, e := decimal.NewFromString(amount)
		if e != nil || !amountNum.IsPositive() {
			panic("invalid amount")
		}
		wadAmount, e := fixedpoint.FromDecimal(amountNum, 18)
		if e != nil {
			panic(e)
		}

		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		tokenService := provideTokenService(database)
		e = database.Tx(func(tx *db.DB) error {
			return tokenService.Deposit(ctx, tx, assetID, userID, wadAmount)
		})
		if e != nil {
			cmd.PrintErrln("deposit error:", e)
			return
		}

		cmd.Println("deposited", amount, "of", assetID, "to", userID)
	},
}

func init() {
	rootCmd.AddCommand(depositCmd)
	depositCmd.Flags().String("asset", "", "asset id")
	depositCmd.Flags().String("user", "", "holder id")
	depositCmd.Flags().String("amount", "", "amount in the underlying unit")
}
