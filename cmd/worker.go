package cmd

import (
	"aqueduct/worker"
	"aqueduct/worker/watcher"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "aqueduct job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)
		ctx = signal.WithContext(ctx)

		database := provideDatabase()
		defer database.Close()

		system := provideSystem(rootCmd.Version)

		workers := []worker.IJob{
			watcher.New(provideConfig(), provideShareStore(database), provideAccountService(system, database)),
		}

		for _, w := range workers {
			if err := w.Start(); err != nil {
				log.Fatalln(err)
			}
			defer w.Stop()
		}

		<-ctx.Done()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
