package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/nftauction/config"
	"github.com/tendermint/nftauction/libs/log"
)

// MakeInitFilesCommand returns the command that initializes a fresh auctiond
// home directory.
func MakeInitFilesCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the auctiond home directory and store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteConfigFile(conf.RootDir, conf); err != nil {
				return err
			}
			logger.Info("Generated config", "path", config.ConfigFilePath(conf.RootDir))

			app, closer, err := loadApplication(conf, logger)
			if err != nil {
				return err
			}
			defer closer()

			next, err := app.Engine().Store().NextAuctionID()
			if err != nil {
				return err
			}
			logger.Info("Initialized store", "path", conf.DBDir(), "next_auction_id", next)

			_, err = fmt.Fprintln(cmd.OutOrStdout(), conf.RootDir)
			return err
		},
	}
}
