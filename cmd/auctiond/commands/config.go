package commands

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tendermint/nftauction/config"
)

// MakeConfigCommand returns the command that inspects configuration files.
func MakeConfigCommand(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or validate the configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as TOML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				bz, err := conf.Render()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(bz)
				return err
			},
		},
		&cobra.Command{
			Use:   "validate [config-file]",
			Short: "Check a config file for unknown keys and invalid values",
			Long: `Validate checks the given file, or the config file of the home
directory when none is given.`,
			Args: cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := config.ConfigFilePath(conf.RootDir)
				if len(args) == 1 {
					path = args[0]
				}
				if err := validateConfigFile(path); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
				return err
			},
		},
	)
	return cmd
}

// validateConfigFile rejects keys the default template does not know and
// values that fail ValidateBasic.
func validateConfigFile(path string) error {
	var given map[string]interface{}
	if _, err := toml.DecodeFile(path, &given); err != nil {
		return err
	}
	known, err := defaultConfigKeys()
	if err != nil {
		return err
	}
	var unknown []string
	for _, k := range flattenKeys("", given) {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown keys %v", unknown)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	conf := config.DefaultConfig()
	if err := v.Unmarshal(conf); err != nil {
		return err
	}
	return conf.ValidateBasic()
}

func defaultConfigKeys() (map[string]bool, error) {
	bz, err := config.DefaultConfig().Render()
	if err != nil {
		return nil, err
	}
	var defaults map[string]interface{}
	if _, err := toml.Decode(string(bz), &defaults); err != nil {
		return nil, err
	}
	known := make(map[string]bool)
	for _, k := range flattenKeys("", defaults) {
		known[k] = true
	}
	return known, nil
}

func flattenKeys(prefix string, m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if prefix != "" {
			k = prefix + "." + k
		}
		if sub, ok := v.(map[string]interface{}); ok {
			keys = append(keys, flattenKeys(k, sub)...)
			continue
		}
		keys = append(keys, k)
	}
	return keys
}
