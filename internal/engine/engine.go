package engine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/tendermint/nftauction/internal/store"
	"github.com/tendermint/nftauction/libs/log"
	"github.com/tendermint/nftauction/types"
)

// Result actions.
const (
	ActionStartAuction  = "start_auction"
	ActionBid           = "bid"
	ActionCancelAuction = "cancel_auction"
	ActionClaim         = "claim"
)

// Engine executes auction state transitions against a Store. Operations
// must be called sequentially. Each one either commits all of its writes in
// a single store.Update or writes nothing.
type Engine struct {
	store   *store.Store
	logger  log.Logger
	metrics *Metrics
}

// New returns an Engine over s.
func New(s *store.Store, logger log.Logger, metrics *Metrics) *Engine {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &Engine{
		store:   s,
		logger:  logger.With("module", "engine"),
		metrics: metrics,
	}
}

// Store returns the underlying store.
func (e *Engine) Store() *store.Store {
	return e.store
}

func (e *Engine) observe(op string, start time.Time, err error) {
	e.metrics.OperationDuration.With("operation", op).Observe(time.Since(start).Seconds())
	if err != nil {
		e.metrics.Rejections.With("operation", op).Add(1)
		e.logger.Debug("operation rejected", "operation", op, "err", err)
	}
}

// OpenAuction escrows asset under a new auction owned by opener.
// StartTime and Duration of params are in milliseconds.
func (e *Engine) OpenAuction(
	block types.BlockInfo,
	opener string,
	asset types.AssetRef,
	params types.StartAuction,
) (res *types.Result, err error) {
	defer func(start time.Time) { e.observe(ActionStartAuction, start, err) }(time.Now())

	if params.StartTime == 0 || params.Duration == 0 {
		return nil, types.ErrInvalidExpiration
	}
	if params.StartTime > math.MaxUint64-params.Duration {
		return nil, types.ErrInvalidExpiration
	}
	start, err := types.FromMilliseconds(params.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := types.FromMilliseconds(params.StartTime + params.Duration)
	if err != nil {
		return nil, err
	}

	now, _ := start.CurrentFor(block)
	if ok, err := start.After(now); err != nil {
		return nil, err
	} else if !ok {
		return nil, types.ErrInvalidStartTime{
			CurrentTime:  block.UnixMilli(),
			CurrentBlock: uint64(block.Height),
		}
	}

	if err := types.ValidateDenom(params.CoinDenom); err != nil {
		return nil, err
	}

	latest, err := e.store.LatestAuction(asset)
	switch {
	case err == nil:
		if !latest.Settled() {
			return nil, fmt.Errorf("%w: auction %d", types.ErrAuctionAlreadyOpen, latest.ID)
		}
	case errors.Is(err, types.ErrAuctionDoesNotExist):
	default:
		return nil, err
	}

	var minBid *sdkmath.Uint
	if params.MinBid != nil && !types.IsZeroAmount(*params.MinBid) {
		v := *params.MinBid
		minBid = &v
	}

	u := e.store.NewUpdate()
	id, err := u.AllocateAuctionID()
	if err != nil {
		u.Discard()
		return nil, err
	}
	if err := u.IndexAuction(asset, id); err != nil {
		u.Discard()
		return nil, err
	}
	u.InitBids(id)
	u.SaveAuction(&types.Auction{
		ID:            id,
		Owner:         opener,
		Asset:         asset,
		Denom:         params.CoinDenom,
		Start:         start,
		End:           end,
		MinBid:        minBid,
		HighBidAmount: sdkmath.ZeroUint(),
	})
	if err := u.Commit(); err != nil {
		return nil, err
	}

	e.metrics.AuctionsOpened.Add(1)
	e.logger.Info("auction opened", "auction_id", id, "asset", asset, "owner", opener, "end", end)

	return types.NewResult(ActionStartAuction).
		AddAttribute("start_time", start.String()).
		AddAttribute("end_time", end.String()).
		AddAttribute("coin_denom", params.CoinDenom).
		AddAttribute("auction_id", strconv.FormatUint(id, 10)), nil
}

// PlaceBid places a bid on the latest auction of asset. funds are the
// coins sent along with the bid.
func (e *Engine) PlaceBid(
	block types.BlockInfo,
	bidder string,
	asset types.AssetRef,
	funds types.Coins,
) (res *types.Result, err error) {
	defer func(start time.Time) { e.observe(ActionBid, start, err) }(time.Now())

	auction, err := e.store.LatestAuction(asset)
	if err != nil {
		return nil, err
	}

	if auction.Cancelled {
		return nil, types.ErrAuctionCancelled
	}
	if !auction.Start.IsExpired(block) {
		return nil, types.ErrAuctionNotStarted
	}
	if auction.End.IsExpired(block) {
		return nil, types.ErrAuctionEnded
	}
	if bidder == auction.Owner {
		return nil, types.ErrTokenOwnerCannotBid
	}
	if len(funds) != 1 {
		return nil, types.ErrInvalidFunds{Msg: "Auctions require exactly one coin to be sent."}
	}
	if bidder == auction.HighBidder {
		return nil, types.ErrHighestBidderCannotOutBid
	}
	coin := funds[0]
	if coin.Denom != auction.Denom || coin.IsZero() {
		return nil, types.ErrInvalidFunds{
			Msg: fmt.Sprintf("No %s assets are provided to auction", auction.Denom),
		}
	}
	if !coin.Amount.GT(auction.HighBidAmount) {
		return nil, types.ErrBidSmallerThanHighestBid
	}
	if !types.AmountFits(coin.Amount) {
		return nil, types.ErrOverflow
	}
	if auction.MinBid != nil && coin.Amount.LT(*auction.MinBid) {
		return nil, fmt.Errorf("%w: minimum is %s", types.ErrBidSmallerThanMinBid, auction.MinBid)
	}

	res = types.NewResult(ActionBid)
	if auction.HasBid() {
		res.AddInstruction(types.PayCurrency(
			auction.HighBidder,
			types.Coin{Denom: auction.Denom, Amount: auction.HighBidAmount},
		))
	}

	auction.HighBidder = bidder
	auction.HighBidAmount = coin.Amount

	u := e.store.NewUpdate()
	if err := u.AppendBid(auction.ID, types.Bid{
		Bidder:     bidder,
		Amount:     coin.Amount,
		AcceptedAt: block.Time,
	}); err != nil {
		u.Discard()
		return nil, err
	}
	u.SaveAuction(auction)
	if err := u.Commit(); err != nil {
		return nil, err
	}

	e.metrics.BidsAccepted.Add(1)
	e.logger.Info("bid accepted", "auction_id", auction.ID, "bidder", bidder, "amount", coin.Amount)

	return res.
		AddAttribute("token_id", asset.TokenID).
		AddAttribute("bidder", bidder).
		AddAttribute("amount", coin.Amount.String()).
		AddAttribute("auction_id", strconv.FormatUint(auction.ID, 10)), nil
}

// CancelAuction lets the owner withdraw the asset before the auction ends.
// The current high bid, if any, is refunded.
func (e *Engine) CancelAuction(
	block types.BlockInfo,
	requester string,
	asset types.AssetRef,
) (res *types.Result, err error) {
	defer func(start time.Time) { e.observe(ActionCancelAuction, start, err) }(time.Now())

	auction, err := e.store.LatestAuction(asset)
	if err != nil {
		return nil, err
	}
	if requester != auction.Owner {
		return nil, types.ErrUnauthorized
	}
	if auction.End.IsExpired(block) {
		return nil, types.ErrAuctionEnded
	}
	if auction.Cancelled {
		return nil, types.ErrAuctionCancelled
	}

	res = types.NewResult(ActionCancelAuction).
		AddInstruction(types.ReleaseAsset(auction.Owner, asset))
	refunded := sdkmath.ZeroUint()
	if auction.HasBid() {
		refunded = auction.HighBidAmount
		res.AddInstruction(types.PayCurrency(
			auction.HighBidder,
			types.Coin{Denom: auction.Denom, Amount: auction.HighBidAmount},
		))
	}

	auction.Cancelled = true
	u := e.store.NewUpdate()
	u.SaveAuction(auction)
	if err := u.Commit(); err != nil {
		return nil, err
	}

	e.metrics.AuctionsCancelled.Add(1)
	e.logger.Info("auction cancelled", "auction_id", auction.ID, "refunded", refunded)

	return res.
		AddAttribute("token_id", asset.TokenID).
		AddAttribute("token_contract", asset.Collection).
		AddAttribute("auction_id", strconv.FormatUint(auction.ID, 10)).
		AddAttribute("refunded_amount", refunded.String()), nil
}

// Claim settles an ended auction. Anyone may call it. The asset goes to the
// highest bidder and the proceeds to the owner, or the asset returns to the
// owner when nobody bid.
func (e *Engine) Claim(
	block types.BlockInfo,
	requester string,
	asset types.AssetRef,
) (res *types.Result, err error) {
	defer func(start time.Time) { e.observe(ActionClaim, start, err) }(time.Now())

	auction, err := e.store.LatestAuction(asset)
	if err != nil {
		return nil, err
	}
	if !auction.End.IsExpired(block) {
		return nil, types.ErrAuctionNotEnded
	}
	if auction.Cancelled {
		return nil, types.ErrAuctionCancelled
	}
	if auction.Claimed {
		return nil, types.ErrAuctionAlreadyClaimed
	}

	res = types.NewResult(ActionClaim)
	recipient := auction.Owner
	winning := sdkmath.ZeroUint()
	if auction.HasBid() {
		recipient = auction.HighBidder
		winning = auction.HighBidAmount
		res.AddInstruction(types.PayCurrency(
			auction.Owner,
			types.Coin{Denom: auction.Denom, Amount: auction.HighBidAmount},
		))
	}
	res.AddInstruction(types.ReleaseAsset(recipient, asset))

	auction.Claimed = true
	u := e.store.NewUpdate()
	u.SaveAuction(auction)
	if err := u.Commit(); err != nil {
		return nil, err
	}

	e.metrics.AuctionsClaimed.Add(1)
	e.logger.Info("auction claimed",
		"auction_id", auction.ID,
		"requester", requester,
		"recipient", recipient,
		"amount", winning)

	return res.
		AddAttribute("action", ActionClaim).
		AddAttribute("token_id", asset.TokenID).
		AddAttribute("token_contract", asset.Collection).
		AddAttribute("recipient", recipient).
		AddAttribute("winning_bid_amount", winning.String()).
		AddAttribute("auction_id", strconv.FormatUint(auction.ID, 10)), nil
}
