package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tendermint/nftauction/config"
	"github.com/tendermint/nftauction/libs/cli"
	"github.com/tendermint/nftauction/libs/log"
)

// EnvPrefix prefixes the environment variables read by auctiond.
const EnvPrefix = "AUCTIOND"

// ParseConfig retrieves the default environment configuration,
// sets up the auctiond root and ensures that the root exists
func ParseConfig(conf *config.Config) (*config.Config, error) {
	if err := viper.Unmarshal(conf); err != nil {
		return nil, err
	}

	conf.SetRoot(conf.RootDir)

	if err := conf.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("error in config file: %w", err)
	}
	return conf, nil
}

// RootCommand constructs the root command-line entry point for auctiond.
// Flags, AUCTIOND_* variables, the dotenv file and the config file are
// merged into conf before any subcommand runs.
func RootCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auctiond",
		Short: "Escrowed English auctions for non-fungible assets",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == VersionCmd.Name() {
				return nil
			}

			pconf, err := ParseConfig(conf)
			if err != nil {
				return err
			}
			*conf = *pconf
			if err := config.EnsureRoot(conf.RootDir); err != nil {
				return err
			}
			return log.OverrideWithNewLogger(logger, conf.LogFormat, conf.LogLevel)
		},
	}
	cmd.PersistentFlags().String("log-level", conf.LogLevel, "log level")
	cmd.PersistentFlags().String("log-format", conf.LogFormat, "log format (plain | json)")
	cmd.PersistentFlags().String(cli.EnvFileFlag, conf.EnvFile, "dotenv file, relative to the home directory")
	return cli.PrepareBaseCmd(cmd, EnvPrefix, os.ExpandEnv(filepath.Join("$HOME", config.DefaultAuctionDir)))
}
