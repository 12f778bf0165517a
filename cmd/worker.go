package cmd

import (
	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"

	"tally/worker"
	"tally/worker/audit"
	"tally/worker/maintenance"
	"tally/worker/maturity"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "tally job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		propertyStore := providePropertyStore(database)
		poolStore := providePoolStore(database)
		auditStore := provideAuditStore(database)
		poolService := providePoolService()

		jobs := []worker.IJob{
			maturity.New(&cfg, database, propertyStore, poolStore, poolService),
			maintenance.New(&cfg, database, poolStore, poolService),
			audit.New(&cfg, poolStore, auditStore),
		}

		for _, job := range jobs {
			if err := job.Start(); err != nil {
				log.Errorln("start job error:", err)
				return
			}
		}

		done := make(chan struct{}, 1)
		signal.WithContextFunc(ctx, func() {
			for _, job := range jobs {
				job.Stop()
			}

			close(done)
		})

		log.Infoln("workers started")
		<-done
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
