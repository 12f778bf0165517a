package cmd

import (
	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "create or upgrade the ledger tables",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		if err := db.Migrate(database); err != nil {
			cmd.PrintErrln("migrate tables error:", err)
			return
		}

		cmd.Println("tables migrated")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
