package cmd

import (
	"github.com/spf13/cobra"
)

// governing command for the pause flag
var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "pause or resume the pool",
	Run: func(cmd *cobra.Command, args []string) {
		resume, _ := cmd.Flags().GetBool("resume")

		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		system := provideSystem(rootCmd.Version)
		poolService := providePoolService(system, database)

		if err := poolService.SetPaused(ctx, requester(), !resume); err != nil {
			cmd.PrintErrln("set paused error:", err)
			return
		}

		if resume {
			cmd.Println("pool resumed")
		} else {
			cmd.Println("pool paused")
		}
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd)
	pauseCmd.Flags().Bool("resume", false, "clear the pause flag instead of setting it")
}
