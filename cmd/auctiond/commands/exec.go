package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	abcitypes "github.com/tendermint/tendermint/abci/types"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"

	"github.com/tendermint/nftauction/config"
	"github.com/tendermint/nftauction/libs/log"
)

// TxOutcome is printed for every executed transaction.
type TxOutcome struct {
	Code   uint32          `json:"code"`
	Log    string          `json:"log,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// BlockOutcome is the output of exec.
type BlockOutcome struct {
	Height  int64       `json:"height"`
	Time    time.Time   `json:"time"`
	AppHash string      `json:"app_hash"`
	Txs     []TxOutcome `json:"txs"`
}

// MakeExecCommand returns the command that delivers transactions read from
// files as one block and commits it.
func MakeExecCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	var (
		height    int64
		blockTime string
	)

	cmd := &cobra.Command{
		Use:   "exec [tx-file...]",
		Short: "Execute JSON encoded transactions in a single block",
		Long: `Execute reads each file (or stdin for "-") as one JSON encoded
transaction, delivers them in order in a block and commits the result.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txs := make([][]byte, 0, len(args))
			for _, name := range args {
				bz, err := readTx(cmd, name)
				if err != nil {
					return fmt.Errorf("read tx %s: %w", name, err)
				}
				txs = append(txs, bz)
			}

			t := time.Now().UTC()
			if blockTime != "" {
				parsed, err := time.Parse(time.RFC3339Nano, blockTime)
				if err != nil {
					return fmt.Errorf("invalid --time: %w", err)
				}
				t = parsed.UTC()
			}

			out, err := execBlock(conf, logger, height, t, txs)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().Int64Var(&height, "height", 0, "block height (default: last height + 1)")
	cmd.Flags().StringVar(&blockTime, "time", "", "block time in RFC3339 (default: now)")
	return cmd
}

func readTx(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

func execBlock(conf *config.Config, logger log.Logger, height int64, t time.Time, txs [][]byte) (*BlockOutcome, error) {
	app, closer, err := loadApplication(conf, logger)
	if err != nil {
		return nil, err
	}
	defer closer()

	last := app.Info(abcitypes.RequestInfo{}).LastBlockHeight
	if height == 0 {
		height = last + 1
	}
	if height <= last {
		return nil, fmt.Errorf("height %d is not above the last committed height %d", height, last)
	}

	app.BeginBlock(abcitypes.RequestBeginBlock{Header: tmproto.Header{
		ChainID: conf.ChainID,
		Height:  height,
		Time:    t,
	}})
	out := &BlockOutcome{Height: height, Time: t, Txs: make([]TxOutcome, 0, len(txs))}
	for _, tx := range txs {
		res := app.DeliverTx(abcitypes.RequestDeliverTx{Tx: tx})
		if !res.IsOK() {
			logger.Info("tx rejected", "code", res.Code, "log", res.Log)
		}
		out.Txs = append(out.Txs, TxOutcome{Code: res.Code, Log: res.Log, Result: res.Data})
	}
	app.EndBlock(abcitypes.RequestEndBlock{Height: height})
	commit := app.Commit()
	out.AppHash = fmt.Sprintf("%X", commit.Data)
	return out, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}
