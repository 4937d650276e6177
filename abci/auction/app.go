package auction

import (
	"encoding/json"
	"fmt"
	"sync"

	abcitypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/crypto/tmhash"

	"github.com/tendermint/nftauction/internal/engine"
	"github.com/tendermint/nftauction/internal/store"
	"github.com/tendermint/nftauction/libs/log"
	"github.com/tendermint/nftauction/types"
	"github.com/tendermint/nftauction/version"
)

var _ abcitypes.Application = (*Application)(nil)

// Application runs the auction engine behind the ABCI interface. Txs are
// JSON encoded types.Tx values.
type Application struct {
	abcitypes.BaseApplication

	mtx    sync.Mutex
	logger log.Logger
	store  *store.Store
	engine *engine.Engine

	state store.AppState
	block types.BlockInfo
	// hashes of the results delivered in the current block
	results [][]byte
}

// NewApplication loads the last committed state from s.
func NewApplication(s *store.Store, logger log.Logger, metrics *engine.Metrics) (*Application, error) {
	state, err := s.LoadAppState()
	if err != nil {
		return nil, fmt.Errorf("load app state: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	return &Application{
		logger: logger.With("module", "abci-app"),
		store:  s,
		engine: engine.New(s, logger, metrics),
		state:  state,
		block:  lastBlock(state),
	}, nil
}

// lastBlock is the block the committed state was produced by.
func lastBlock(state store.AppState) types.BlockInfo {
	return types.BlockInfo{Height: state.Height, Time: state.Time, ChainID: state.ChainID}
}

// Engine returns the auction engine used by the application.
func (app *Application) Engine() *engine.Engine {
	return app.engine
}

func (app *Application) Info(req abcitypes.RequestInfo) abcitypes.ResponseInfo {
	app.mtx.Lock()
	defer app.mtx.Unlock()

	next, err := app.store.Committed().NextAuctionID()
	if err != nil {
		app.logger.Error("failed to read next auction id", "err", err)
	}
	return abcitypes.ResponseInfo{
		Data:             fmt.Sprintf(`{"next_auction_id":%d}`, next),
		Version:          version.Version,
		AppVersion:       version.AppProtocol,
		LastBlockHeight:  app.state.Height,
		LastBlockAppHash: app.state.AppHash,
	}
}

func (app *Application) InitChain(req abcitypes.RequestInitChain) abcitypes.ResponseInitChain {
	app.mtx.Lock()
	defer app.mtx.Unlock()

	if err := app.store.Init(); err != nil {
		panic(fmt.Errorf("init store: %w", err))
	}
	app.block.ChainID = req.ChainId
	app.state.ChainID = req.ChainId
	app.logger.Info("chain initialized", "chain_id", req.ChainId)
	return abcitypes.ResponseInitChain{}
}

func (app *Application) BeginBlock(req abcitypes.RequestBeginBlock) abcitypes.ResponseBeginBlock {
	app.mtx.Lock()
	defer app.mtx.Unlock()

	app.block = types.BlockInfo{
		Height:  req.Header.Height,
		Time:    req.Header.Time,
		ChainID: req.Header.ChainID,
	}
	app.results = app.results[:0]
	// writes of a block that was never committed are dropped here
	app.store.BeginBlock()
	return abcitypes.ResponseBeginBlock{}
}

func decodeTx(bz []byte) (*types.Tx, uint32, error) {
	tx, err := types.DecodeTx(bz)
	if err != nil {
		code := ErrorCode(err)
		if code == CodeTypeInternalError {
			code = CodeTypeEncodingError
		}
		return nil, code, err
	}
	return tx, CodeTypeOK, nil
}

func (app *Application) CheckTx(req abcitypes.RequestCheckTx) abcitypes.ResponseCheckTx {
	if _, code, err := decodeTx(req.Tx); err != nil {
		return abcitypes.ResponseCheckTx{Code: code, Log: err.Error()}
	}
	return abcitypes.ResponseCheckTx{Code: CodeTypeOK, GasWanted: 1}
}

func (app *Application) DeliverTx(req abcitypes.RequestDeliverTx) abcitypes.ResponseDeliverTx {
	app.mtx.Lock()
	defer app.mtx.Unlock()

	tx, code, err := decodeTx(req.Tx)
	if err != nil {
		return abcitypes.ResponseDeliverTx{Code: code, Log: err.Error()}
	}

	res, err := app.execute(tx)
	if err != nil {
		return abcitypes.ResponseDeliverTx{Code: ErrorCode(err), Log: err.Error()}
	}

	data, err := json.Marshal(res)
	if err != nil {
		return abcitypes.ResponseDeliverTx{Code: CodeTypeInternalError, Log: err.Error()}
	}
	app.results = append(app.results, tmhash.Sum(data))

	return abcitypes.ResponseDeliverTx{
		Code:   CodeTypeOK,
		Data:   data,
		Events: resultEvents(res),
	}
}

// execute dispatches tx to exactly one engine operation.
func (app *Application) execute(tx *types.Tx) (*types.Result, error) {
	switch m := tx.Msg.Sum().(type) {
	case *types.MsgReceiveAsset:
		asset := types.AssetRef{Collection: tx.Sender, TokenID: m.TokenID}
		return app.engine.OpenAuction(app.block, m.Sender, asset, *m.Msg.StartAuction)
	case *types.MsgPlaceBid:
		return app.engine.PlaceBid(app.block, tx.Sender, m.Asset(), tx.Funds)
	case *types.MsgCancelAuction:
		return app.engine.CancelAuction(app.block, tx.Sender, m.Asset())
	case *types.MsgClaim:
		return app.engine.Claim(app.block, tx.Sender, m.Asset())
	default:
		return nil, types.ErrInvalidMsg{Reason: fmt.Sprintf("unknown message %T", m)}
	}
}

// Commit chains the hash of this block's results onto the previous app hash
// and flushes the block's writes together with the new app state.
func (app *Application) Commit() abcitypes.ResponseCommit {
	app.mtx.Lock()
	defer app.mtx.Unlock()

	var blockHash []byte
	for _, r := range app.results {
		blockHash = append(blockHash, r...)
	}
	app.state = store.AppState{
		Height:  app.block.Height,
		AppHash: tmhash.Sum(append(append([]byte{}, app.state.AppHash...), tmhash.Sum(blockHash)...)),
		Time:    app.block.Time,
		ChainID: app.block.ChainID,
	}
	if err := app.store.CommitBlock(app.state); err != nil {
		panic(fmt.Errorf("commit block: %w", err))
	}
	app.results = app.results[:0]

	app.logger.Debug("committed state", "height", app.state.Height, "app_hash", fmt.Sprintf("%X", app.state.AppHash))
	return abcitypes.ResponseCommit{Data: app.state.AppHash}
}

func resultEvents(res *types.Result) []abcitypes.Event {
	attrs := make([]abcitypes.EventAttribute, 0, len(res.Attributes))
	for _, a := range res.Attributes {
		attrs = append(attrs, abcitypes.EventAttribute{Key: []byte(a.Key), Value: []byte(a.Value), Index: true})
	}
	events := []abcitypes.Event{{Type: res.Action, Attributes: attrs}}

	for _, in := range res.Instructions {
		switch {
		case in.TransferCurrency != nil:
			events = append(events, abcitypes.Event{
				Type: "transfer_currency",
				Attributes: []abcitypes.EventAttribute{
					{Key: []byte("recipient"), Value: []byte(in.TransferCurrency.To), Index: true},
					{Key: []byte("amount"), Value: []byte(in.TransferCurrency.Coin.String())},
				},
			})
		case in.TransferAssetOut != nil:
			events = append(events, abcitypes.Event{
				Type: "transfer_asset",
				Attributes: []abcitypes.EventAttribute{
					{Key: []byte("recipient"), Value: []byte(in.TransferAssetOut.To), Index: true},
					{Key: []byte("token_contract"), Value: []byte(in.TransferAssetOut.Asset.Collection)},
					{Key: []byte("token_id"), Value: []byte(in.TransferAssetOut.Asset.TokenID)},
				},
			})
		}
	}
	return events
}
