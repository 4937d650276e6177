package engine

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/nftauction/internal/store"
	"github.com/tendermint/nftauction/libs/log"
	"github.com/tendermint/nftauction/types"
)

const (
	tokenOwner   = "dummy_token_owner"
	tokenID      = "dummy_unclaimed_token"
	tokenAddress = "dummy_token_addr"
	denom        = "usd"
)

var testAsset = types.AssetRef{Collection: tokenAddress, TokenID: tokenID}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	s := store.NewStore(dbm.NewMemDB(), store.DefaultPageLimits())
	require.NoError(t, s.Init())
	return New(s, log.TestingLogger(), NopMetrics())
}

// blockAt returns a block whose time is ms milliseconds after the epoch.
func blockAt(ms int64) types.BlockInfo {
	return types.BlockInfo{
		Height:  12345,
		Time:    time.Unix(0, ms*int64(time.Millisecond)).UTC(),
		ChainID: "auction-test",
	}
}

func defaultParams() types.StartAuction {
	return types.StartAuction{StartTime: 100_000, Duration: 100_000, CoinDenom: denom}
}

func usd(amount uint64) types.Coins {
	return types.Coins{types.NewCoin(denom, amount)}
}

func startAuction(t *testing.T, e *Engine) {
	t.Helper()
	_, err := e.OpenAuction(blockAt(0), tokenOwner, testAsset, defaultParams())
	require.NoError(t, err)
}

func attr(t *testing.T, res *types.Result, key string) string {
	t.Helper()
	v, ok := res.Attribute(key)
	require.True(t, ok, "missing attribute %s", key)
	return v
}

func TestOpenAuction(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.OpenAuction(blockAt(0), tokenOwner, testAsset, defaultParams())
	require.NoError(t, err)
	assert.Equal(t, ActionStartAuction, res.Action)
	assert.Equal(t, "expiration time: 100.000000000", attr(t, res, "start_time"))
	assert.Equal(t, "expiration time: 200.000000000", attr(t, res, "end_time"))
	assert.Equal(t, denom, attr(t, res, "coin_denom"))
	assert.Equal(t, "1", attr(t, res, "auction_id"))
	assert.Empty(t, res.Instructions)

	auction, err := e.Store().LatestAuction(testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 1, auction.ID)
	assert.Equal(t, tokenOwner, auction.Owner)
	assert.Equal(t, types.AtTime(100_000_000_000), auction.Start)
	assert.Equal(t, types.AtTime(200_000_000_000), auction.End)
	assert.Empty(t, auction.HighBidder)
	assert.True(t, auction.HighBidAmount.IsZero())
	assert.False(t, auction.Cancelled)
	assert.Nil(t, auction.MinBid)

	count, err := e.Store().BidCount(1)
	require.NoError(t, err)
	assert.Zero(t, count)

	next, err := e.Store().NextAuctionID()
	require.NoError(t, err)
	assert.EqualValues(t, 2, next)
}

func TestOpenAuctionRejected(t *testing.T) {
	testCases := map[string]struct {
		block  types.BlockInfo
		params types.StartAuction
		check  func(t *testing.T, err error)
	}{
		"zero start": {
			block:  blockAt(0),
			params: types.StartAuction{StartTime: 0, Duration: 100_000, CoinDenom: denom},
			check:  func(t *testing.T, err error) { require.ErrorIs(t, err, types.ErrInvalidExpiration) },
		},
		"zero duration": {
			block:  blockAt(0),
			params: types.StartAuction{StartTime: 100_000, Duration: 0, CoinDenom: denom},
			check:  func(t *testing.T, err error) { require.ErrorIs(t, err, types.ErrInvalidExpiration) },
		},
		"start too large": {
			block:  blockAt(0),
			params: types.StartAuction{StartTime: 1 << 62, Duration: 1, CoinDenom: denom},
			check:  func(t *testing.T, err error) { require.ErrorIs(t, err, types.ErrInvalidExpiration) },
		},
		"end wraps": {
			block:  blockAt(0),
			params: types.StartAuction{StartTime: 10, Duration: ^uint64(0), CoinDenom: denom},
			check:  func(t *testing.T, err error) { require.ErrorIs(t, err, types.ErrInvalidExpiration) },
		},
		"start in the past": {
			block:  blockAt(150_000),
			params: defaultParams(),
			check: func(t *testing.T, err error) {
				var invalid types.ErrInvalidStartTime
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, types.ErrInvalidStartTime{CurrentTime: 150_000, CurrentBlock: 12345}, invalid)
			},
		},
		"start now": {
			block:  blockAt(100_000),
			params: defaultParams(),
			check: func(t *testing.T, err error) {
				var invalid types.ErrInvalidStartTime
				require.ErrorAs(t, err, &invalid)
			},
		},
		"bad denom": {
			block:  blockAt(0),
			params: types.StartAuction{StartTime: 100_000, Duration: 100_000, CoinDenom: ""},
			check: func(t *testing.T, err error) {
				var invalid types.ErrInvalidFunds
				require.ErrorAs(t, err, &invalid)
			},
		},
		"short denom": {
			block:  blockAt(0),
			params: types.StartAuction{StartTime: 100_000, Duration: 100_000, CoinDenom: "ab"},
			check: func(t *testing.T, err error) {
				var invalid types.ErrInvalidFunds
				require.ErrorAs(t, err, &invalid)
			},
		},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(t)
			res, err := e.OpenAuction(tc.block, tokenOwner, testAsset, tc.params)
			require.Nil(t, res)
			tc.check(t, err)

			next, err := e.Store().NextAuctionID()
			require.NoError(t, err)
			assert.EqualValues(t, 1, next)

			_, err = e.Store().LatestAuction(testAsset)
			require.ErrorIs(t, err, types.ErrAuctionDoesNotExist)
		})
	}
}

func TestOpenAuctionWhileInEscrow(t *testing.T) {
	e := newTestEngine(t)
	startAuction(t, e)

	_, err := e.OpenAuction(blockAt(0), tokenOwner, testAsset, defaultParams())
	require.ErrorIs(t, err, types.ErrAuctionAlreadyOpen)

	// a different token of the same collection is independent
	other := types.AssetRef{Collection: tokenAddress, TokenID: "other"}
	res, err := e.OpenAuction(blockAt(0), tokenOwner, other, defaultParams())
	require.NoError(t, err)
	assert.Equal(t, "2", attr(t, res, "auction_id"))
}

func TestPlaceBid(t *testing.T) {
	e := newTestEngine(t)
	startAuction(t, e)

	res, err := e.PlaceBid(blockAt(150_000), "bidder", testAsset, usd(100))
	require.NoError(t, err)
	assert.Equal(t, ActionBid, res.Action)
	assert.Equal(t, tokenID, attr(t, res, "token_id"))
	assert.Equal(t, "bidder", attr(t, res, "bidder"))
	assert.Equal(t, "100", attr(t, res, "amount"))
	assert.Empty(t, res.Instructions)

	_, err = e.PlaceBid(blockAt(160_000), "other_bidder", testAsset, usd(50))
	require.ErrorIs(t, err, types.ErrBidSmallerThanHighestBid)

	_, err = e.PlaceBid(blockAt(160_000), "other_bidder", testAsset, usd(100))
	require.ErrorIs(t, err, types.ErrBidSmallerThanHighestBid)

	_, err = e.PlaceBid(blockAt(160_000), "bidder", testAsset, usd(200))
	require.ErrorIs(t, err, types.ErrHighestBidderCannotOutBid)

	res, err = e.PlaceBid(blockAt(170_000), "other_bidder", testAsset, usd(200))
	require.NoError(t, err)
	require.Len(t, res.Instructions, 1)
	refund := res.Instructions[0].TransferCurrency
	require.NotNil(t, refund)
	assert.Equal(t, "bidder", refund.To)
	assert.Equal(t, "100usd", refund.Coin.String())

	auction, err := e.Store().LatestAuction(testAsset)
	require.NoError(t, err)
	assert.Equal(t, "other_bidder", auction.HighBidder)
	assert.Equal(t, "200", auction.HighBidAmount.String())

	bids, err := e.Store().ReadBids(auction.ID, nil, nil, types.OrderAscending)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	assert.Equal(t, "bidder", bids[0].Bidder)
	assert.True(t, bids[0].AcceptedAt.Equal(blockAt(150_000).Time))
	assert.Equal(t, "other_bidder", bids[1].Bidder)
}

func TestPlaceBidRejected(t *testing.T) {
	testCases := map[string]struct {
		block  types.BlockInfo
		bidder string
		funds  types.Coins
		setup  func(t *testing.T, e *Engine)
		check  func(t *testing.T, err error)
	}{
		"not started": {
			block: blockAt(50_000), bidder: "bidder", funds: usd(100),
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, types.ErrAuctionNotStarted) },
		},
		"ended at the boundary": {
			block: blockAt(200_000), bidder: "bidder", funds: usd(100),
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, types.ErrAuctionEnded) },
		},
		"owner": {
			block: blockAt(150_000), bidder: tokenOwner, funds: usd(100),
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, types.ErrTokenOwnerCannotBid) },
		},
		"owner without funds": {
			block: blockAt(150_000), bidder: tokenOwner, funds: nil,
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, types.ErrTokenOwnerCannotBid) },
		},
		"no funds": {
			block: blockAt(150_000), bidder: "bidder", funds: nil,
			check: func(t *testing.T, err error) {
				require.Equal(t, types.ErrInvalidFunds{Msg: "Auctions require exactly one coin to be sent."}, err)
			},
		},
		"two coins": {
			block: blockAt(150_000), bidder: "bidder",
			funds: types.Coins{types.NewCoin(denom, 100), types.NewCoin("eur", 100)},
			check: func(t *testing.T, err error) {
				require.Equal(t, types.ErrInvalidFunds{Msg: "Auctions require exactly one coin to be sent."}, err)
			},
		},
		"wrong denom": {
			block: blockAt(150_000), bidder: "bidder", funds: types.Coins{types.NewCoin("eur", 100)},
			check: func(t *testing.T, err error) {
				require.Equal(t, types.ErrInvalidFunds{Msg: "No usd assets are provided to auction"}, err)
			},
		},
		"zero amount": {
			block: blockAt(150_000), bidder: "bidder", funds: usd(0),
			check: func(t *testing.T, err error) {
				require.Equal(t, types.ErrInvalidFunds{Msg: "No usd assets are provided to auction"}, err)
			},
		},
		"cancelled wins over timing": {
			block: blockAt(50_000), bidder: "bidder", funds: usd(100),
			setup: func(t *testing.T, e *Engine) {
				_, err := e.CancelAuction(blockAt(10_000), tokenOwner, testAsset)
				require.NoError(t, err)
			},
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, types.ErrAuctionCancelled) },
		},
		"highest bidder before denom": {
			block: blockAt(160_000), bidder: "bidder", funds: types.Coins{types.NewCoin("eur", 1)},
			setup: func(t *testing.T, e *Engine) {
				_, err := e.PlaceBid(blockAt(150_000), "bidder", testAsset, usd(10))
				require.NoError(t, err)
			},
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, types.ErrHighestBidderCannotOutBid) },
		},
		"amount above 128 bits": {
			block: blockAt(150_000), bidder: "bidder",
			funds: types.Coins{{
				Denom:  denom,
				Amount: sdkmath.NewUintFromString("340282366920938463463374607431768211456"),
			}},
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, types.ErrOverflow) },
		},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(t)
			startAuction(t, e)
			if tc.setup != nil {
				tc.setup(t, e)
			}
			before, err := e.Store().LatestAuction(testAsset)
			require.NoError(t, err)
			count, err := e.Store().BidCount(before.ID)
			require.NoError(t, err)

			res, err := e.PlaceBid(tc.block, tc.bidder, testAsset, tc.funds)
			require.Nil(t, res)
			tc.check(t, err)

			after, err := e.Store().LatestAuction(testAsset)
			require.NoError(t, err)
			assert.Equal(t, before.HighBidder, after.HighBidder)
			assert.True(t, before.HighBidAmount.Equal(after.HighBidAmount))
			countAfter, err := e.Store().BidCount(before.ID)
			require.NoError(t, err)
			assert.Equal(t, count, countAfter)
		})
	}
}

func TestPlaceBidUnknownAsset(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.PlaceBid(blockAt(150_000), "bidder", testAsset, usd(100))
	require.ErrorIs(t, err, types.ErrAuctionDoesNotExist)
}

func TestMinBid(t *testing.T) {
	e := newTestEngine(t)
	params := defaultParams()
	minBid := sdkmath.NewUint(50)
	params.MinBid = &minBid
	_, err := e.OpenAuction(blockAt(0), tokenOwner, testAsset, params)
	require.NoError(t, err)

	_, err = e.PlaceBid(blockAt(150_000), "bidder", testAsset, usd(49))
	require.ErrorIs(t, err, types.ErrBidSmallerThanMinBid)

	_, err = e.PlaceBid(blockAt(150_000), "bidder", testAsset, usd(50))
	require.NoError(t, err)
}

func TestCancelAuction(t *testing.T) {
	e := newTestEngine(t)
	startAuction(t, e)

	_, err := e.CancelAuction(blockAt(150_000), "bidder", testAsset)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	_, err = e.PlaceBid(blockAt(150_000), "bidder", testAsset, usd(100))
	require.NoError(t, err)

	res, err := e.CancelAuction(blockAt(160_000), tokenOwner, testAsset)
	require.NoError(t, err)
	assert.Equal(t, ActionCancelAuction, res.Action)
	assert.Equal(t, "100", attr(t, res, "refunded_amount"))
	require.Len(t, res.Instructions, 2)
	assert.Equal(t, &types.TransferAssetOut{To: tokenOwner, Asset: testAsset}, res.Instructions[0].TransferAssetOut)
	assert.Equal(t, "bidder", res.Instructions[1].TransferCurrency.To)
	assert.Equal(t, "100usd", res.Instructions[1].TransferCurrency.Coin.String())

	auction, err := e.Store().LatestAuction(testAsset)
	require.NoError(t, err)
	assert.True(t, auction.Cancelled)
	assert.Equal(t, types.StatusCancelled, auction.StatusAt(blockAt(160_000)))

	_, err = e.CancelAuction(blockAt(170_000), tokenOwner, testAsset)
	require.ErrorIs(t, err, types.ErrAuctionCancelled)

	_, err = e.PlaceBid(blockAt(170_000), "other", testAsset, usd(500))
	require.ErrorIs(t, err, types.ErrAuctionCancelled)

	_, err = e.Claim(blockAt(300_000), "anyone", testAsset)
	require.ErrorIs(t, err, types.ErrAuctionCancelled)
}

func TestCancelAuctionWithoutBids(t *testing.T) {
	e := newTestEngine(t)
	startAuction(t, e)

	// owner may cancel before the auction starts
	res, err := e.CancelAuction(blockAt(10_000), tokenOwner, testAsset)
	require.NoError(t, err)
	require.Len(t, res.Instructions, 1)
	assert.NotNil(t, res.Instructions[0].TransferAssetOut)
	assert.Equal(t, "0", attr(t, res, "refunded_amount"))
}

func TestCancelAuctionAfterEnd(t *testing.T) {
	e := newTestEngine(t)
	startAuction(t, e)

	_, err := e.CancelAuction(blockAt(200_000), tokenOwner, testAsset)
	require.ErrorIs(t, err, types.ErrAuctionEnded)
}

func TestClaimWithoutBids(t *testing.T) {
	e := newTestEngine(t)
	startAuction(t, e)

	_, err := e.Claim(blockAt(199_999), "anyone", testAsset)
	require.ErrorIs(t, err, types.ErrAuctionNotEnded)

	res, err := e.Claim(blockAt(200_000), "anyone", testAsset)
	require.NoError(t, err)
	require.Len(t, res.Instructions, 1)
	assert.Equal(t, &types.TransferAssetOut{To: tokenOwner, Asset: testAsset}, res.Instructions[0].TransferAssetOut)
	assert.Equal(t, tokenOwner, attr(t, res, "recipient"))
	assert.Equal(t, "0", attr(t, res, "winning_bid_amount"))
}

func TestClaimWithBids(t *testing.T) {
	e := newTestEngine(t)
	startAuction(t, e)

	_, err := e.PlaceBid(blockAt(150_000), "bidder", testAsset, usd(100))
	require.NoError(t, err)
	_, err = e.PlaceBid(blockAt(151_000), "other_bidder", testAsset, usd(300))
	require.NoError(t, err)

	res, err := e.Claim(blockAt(250_000), "anyone", testAsset)
	require.NoError(t, err)
	assert.Equal(t, ActionClaim, attr(t, res, "action"))
	assert.Equal(t, tokenID, attr(t, res, "token_id"))
	assert.Equal(t, tokenAddress, attr(t, res, "token_contract"))
	assert.Equal(t, "other_bidder", attr(t, res, "recipient"))
	assert.Equal(t, "300", attr(t, res, "winning_bid_amount"))
	assert.Equal(t, "1", attr(t, res, "auction_id"))

	require.Len(t, res.Instructions, 2)
	pay := res.Instructions[0].TransferCurrency
	require.NotNil(t, pay)
	assert.Equal(t, tokenOwner, pay.To)
	assert.Equal(t, "300usd", pay.Coin.String())
	assert.Equal(t, &types.TransferAssetOut{To: "other_bidder", Asset: testAsset}, res.Instructions[1].TransferAssetOut)

	_, err = e.Claim(blockAt(260_000), tokenOwner, testAsset)
	require.ErrorIs(t, err, types.ErrAuctionAlreadyClaimed)
}

func TestReauctionAfterClaim(t *testing.T) {
	e := newTestEngine(t)
	startAuction(t, e)

	_, err := e.PlaceBid(blockAt(150_000), "winner", testAsset, usd(100))
	require.NoError(t, err)
	_, err = e.Claim(blockAt(200_000), "winner", testAsset)
	require.NoError(t, err)

	res, err := e.OpenAuction(blockAt(200_000), "winner", testAsset, types.StartAuction{
		StartTime: 300_000, Duration: 1_000, CoinDenom: denom,
	})
	require.NoError(t, err)
	assert.Equal(t, "2", attr(t, res, "auction_id"))

	entry, err := e.Store().LoadAssetEntry(testAsset)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, entry.AuctionIDs)

	latest, err := e.Store().LatestAuction(testAsset)
	require.NoError(t, err)
	assert.Equal(t, "winner", latest.Owner)
	assert.Empty(t, latest.HighBidder)

	// the previous winner now owns the asset and cannot bid on it
	_, err = e.PlaceBid(blockAt(300_000), "winner", testAsset, usd(1))
	require.ErrorIs(t, err, types.ErrTokenOwnerCannotBid)
}
