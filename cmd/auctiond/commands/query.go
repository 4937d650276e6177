package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	abcitypes "github.com/tendermint/tendermint/abci/types"

	"github.com/tendermint/nftauction/config"
	"github.com/tendermint/nftauction/libs/log"
	"github.com/tendermint/nftauction/types"
)

// MakeQueryCommand returns the command grouping read-only queries against
// the committed state.
func MakeQueryCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query auctions, bids and the asset index",
	}

	run := func(cmd *cobra.Command, path string, req interface{}) error {
		value, err := runQuery(conf, logger, path, req)
		if err != nil {
			return err
		}
		return printJSON(cmd, value)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "auction [auction-id]",
			Short: "Show an auction by id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseAuctionID(args[0])
				if err != nil {
					return err
				}
				return run(cmd, types.QueryPathAuction, types.QueryAuctionRequest{AuctionID: id})
			},
		},
		&cobra.Command{
			Use:   "latest [collection] [token-id]",
			Short: "Show the latest auction of an asset",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, types.QueryPathLatest, types.QueryLatestRequest{Collection: args[0], TokenID: args[1]})
			},
		},
		makeQueryBidsCommand(run),
		makeQuerySummariesCommand(run),
	)
	return cmd
}

type queryFunc func(cmd *cobra.Command, path string, req interface{}) error

func makeQueryBidsCommand(run queryFunc) *cobra.Command {
	var (
		startAfter uint64
		limit      uint64
		order      string
	)
	cmd := &cobra.Command{
		Use:   "bids [auction-id]",
		Short: "List the accepted bids of an auction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAuctionID(args[0])
			if err != nil {
				return err
			}
			req := types.QueryBidsRequest{AuctionID: id, Order: order}
			if cmd.Flags().Changed("start-after") {
				req.StartAfter = &startAfter
			}
			if cmd.Flags().Changed("limit") {
				req.Limit = &limit
			}
			return run(cmd, types.QueryPathBids, req)
		},
	}
	cmd.Flags().Uint64Var(&startAfter, "start-after", 0, "bid index to start after")
	cmd.Flags().Uint64Var(&limit, "limit", 0, "maximum number of bids")
	cmd.Flags().StringVar(&order, "order", string(types.OrderAscending), "asc | desc")
	return cmd
}

func makeQuerySummariesCommand(run queryFunc) *cobra.Command {
	var (
		collection           string
		startAfterCollection string
		startAfterToken      string
		limit                uint64
	)
	cmd := &cobra.Command{
		Use:   "summaries",
		Short: "List assets with the ids of their auctions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req types.QuerySummariesRequest
			if cmd.Flags().Changed("collection") {
				req.Collection = &collection
			}
			if cmd.Flags().Changed("start-after-token") {
				req.StartAfter = &types.AssetRef{Collection: startAfterCollection, TokenID: startAfterToken}
			}
			if cmd.Flags().Changed("limit") {
				req.Limit = &limit
			}
			return run(cmd, types.QueryPathSummaries, req)
		},
	}
	cmd.Flags().StringVar(&collection, "collection", "", "only assets of this collection")
	cmd.Flags().StringVar(&startAfterCollection, "start-after-collection", "", "collection of the cursor asset")
	cmd.Flags().StringVar(&startAfterToken, "start-after-token", "", "token id of the cursor asset")
	cmd.Flags().Uint64Var(&limit, "limit", 0, "maximum number of summaries")
	return cmd
}

func parseAuctionID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid auction id %q: %w", s, err)
	}
	return id, nil
}

func runQuery(conf *config.Config, logger log.Logger, path string, req interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	app, closer, err := loadApplication(conf, logger)
	if err != nil {
		return nil, err
	}
	defer closer()

	res := app.Query(abcitypes.RequestQuery{Path: path, Data: data})
	if !res.IsOK() {
		return nil, errors.New(res.Log)
	}
	return res.Value, nil
}
