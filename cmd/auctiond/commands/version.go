package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	tmversion "github.com/tendermint/tendermint/version"

	"github.com/tendermint/nftauction/version"
)

// VersionCmd ...
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}
		if !verbose {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Version)
			return err
		}
		values, err := json.MarshalIndent(struct {
			Auction     string `json:"auction"`
			AppProtocol uint64 `json:"app_protocol"`
			Tendermint  string `json:"tendermint"`
			ABCI        string `json:"abci"`
		}{
			Auction:     version.Version,
			AppProtocol: version.AppProtocol,
			Tendermint:  tmversion.TMCoreSemVer,
			ABCI:        tmversion.ABCIVersion,
		}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(values))
		return err
	},
}

func init() {
	VersionCmd.Flags().BoolP("verbose", "v", false, "Show protocol and library versions")
}
