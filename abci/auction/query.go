package auction

import (
	"encoding/json"
	"fmt"

	abcitypes "github.com/tendermint/tendermint/abci/types"

	"github.com/tendermint/nftauction/types"
)

// Query serves read access to auctions, bid ledgers and the asset index as
// of the last committed block. req.Data carries the JSON encoded request for
// req.Path.
func (app *Application) Query(req abcitypes.RequestQuery) (res abcitypes.ResponseQuery) {
	app.mtx.Lock()
	defer app.mtx.Unlock()

	res.Height = app.state.Height

	value, code, err := app.query(req.Path, req.Data)
	if err != nil {
		res.Code = code
		res.Log = err.Error()
		return res
	}
	bz, err := json.Marshal(value)
	if err != nil {
		res.Code = CodeTypeInternalError
		res.Log = err.Error()
		return res
	}
	res.Key = req.Data
	res.Value = bz
	return res
}

func (app *Application) query(path string, data []byte) (interface{}, uint32, error) {
	s := app.store.Committed()
	block := lastBlock(app.state)
	switch path {
	case types.QueryPathAuction:
		var req types.QueryAuctionRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, CodeTypeEncodingError, err
		}
		auction, err := s.LoadAuction(req.AuctionID)
		if err != nil {
			return nil, ErrorCode(err), err
		}
		return types.QueryAuctionResponse{Auction: auction, Status: auction.StatusAt(block)}, CodeTypeOK, nil

	case types.QueryPathLatest:
		var req types.QueryLatestRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, CodeTypeEncodingError, err
		}
		auction, err := s.LatestAuction(types.AssetRef{Collection: req.Collection, TokenID: req.TokenID})
		if err != nil {
			return nil, ErrorCode(err), err
		}
		return types.QueryAuctionResponse{Auction: auction, Status: auction.StatusAt(block)}, CodeTypeOK, nil

	case types.QueryPathBids:
		var req types.QueryBidsRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, CodeTypeEncodingError, err
		}
		order, err := types.ParseOrder(req.Order)
		if err != nil {
			return nil, CodeTypeInvalidMsg, err
		}
		bids, err := s.ReadBids(req.AuctionID, req.StartAfter, req.Limit, order)
		if err != nil {
			return nil, ErrorCode(err), err
		}
		return types.QueryBidsResponse{Bids: bids}, CodeTypeOK, nil

	case types.QueryPathSummaries:
		var req types.QuerySummariesRequest
		if len(data) > 0 {
			if err := json.Unmarshal(data, &req); err != nil {
				return nil, CodeTypeEncodingError, err
			}
		}
		summaries, err := s.ReadAuctionSummaries(req.Collection, req.StartAfter, req.Limit)
		if err != nil {
			return nil, ErrorCode(err), err
		}
		return types.QuerySummariesResponse{Summaries: summaries}, CodeTypeOK, nil

	default:
		return nil, CodeTypeUnknownQuery, fmt.Errorf("unknown query path %q", path)
	}
}
