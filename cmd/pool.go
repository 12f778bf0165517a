package cmd

import (
	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"tally/core"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "manage pools",
}

var poolAddCmd = &cobra.Command{
	Use:   "add",
	Short: "register a new pool",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		pools := providePoolStore(database)

		pool := &core.Pool{
			AssetID:            cmd.Flag("asset").Value.String(),
			Symbol:             cmd.Flag("symbol").Value.String(),
			LTVBps:             cast.ToInt64(cmd.Flag("ltv").Value.String()),
			CrossDomain:        cast.ToBool(cmd.Flag("cross").Value.String()),
			MaintenanceRateBps: cast.ToInt64(cmd.Flag("maintenance").Value.String()),
		}

		if pool.AssetID == "" || pool.Symbol == "" {
			cmd.PrintErrln("asset and symbol are required")
			return
		}

		if err := database.Tx(func(tx *db.DB) error {
			return pools.Save(ctx, tx, pool)
		}); err != nil {
			cmd.PrintErrln("save pool error:", err)
			return
		}

		cmd.Println("pool", pool.Symbol, "registered")
	},
}

var poolUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "update pool risk parameters",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		pools := providePoolStore(database)

		asset := cmd.Flag("asset").Value.String()
		pool, err := pools.Find(ctx, asset)
		if err != nil {
			cmd.PrintErrln("find pool error:", err)
			return
		}

		if cmd.Flags().Changed("ltv") {
			pool.LTVBps = cast.ToInt64(cmd.Flag("ltv").Value.String())
		}
		if cmd.Flags().Changed("maintenance") {
			pool.MaintenanceRateBps = cast.ToInt64(cmd.Flag("maintenance").Value.String())
		}
		if cmd.Flags().Changed("cross") {
			pool.CrossDomain = cast.ToBool(cmd.Flag("cross").Value.String())
		}

		if err := database.Tx(func(tx *db.DB) error {
			return pools.Update(ctx, tx, pool)
		}); err != nil {
			cmd.PrintErrln("update pool error:", err)
			return
		}

		cmd.Println("pool", pool.Symbol, "updated")
	},
}

func init() {
	for _, cmd := range []*cobra.Command{poolAddCmd, poolUpdateCmd} {
		cmd.Flags().String("asset", "", "pool asset id")
		cmd.Flags().String("symbol", "", "pool symbol")
		cmd.Flags().Int64("ltv", 0, "loan-to-value in bps, 0 disables borrowing")
		cmd.Flags().Bool("cross", false, "cross-domain fee base")
		cmd.Flags().Int64("maintenance", 0, "per-year maintenance rate in bps")
	}

	poolCmd.AddCommand(poolAddCmd)
	poolCmd.AddCommand(poolUpdateCmd)
	rootCmd.AddCommand(poolCmd)
}
