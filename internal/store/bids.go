package store

import (
	"encoding/json"
	"fmt"

	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/nftauction/types"
)

// BidCount returns the number of bids accepted for an auction.
func (s *Store) BidCount(auctionID uint64) (uint64, error) {
	bz, err := s.get(bidCountKey(auctionID))
	if err != nil {
		return 0, err
	}
	if len(bz) == 0 {
		return 0, fmt.Errorf("%w: no bid ledger for id %d", types.ErrAuctionDoesNotExist, auctionID)
	}
	return decodeUint64(bz)
}

// ReadBids returns a window of the bid ledger of an auction. startAfter is
// an exclusive offset cursor and limit is clamped by the store limits.
// Descending reads walk the ledger newest first.
func (s *Store) ReadBids(
	auctionID uint64,
	startAfter *uint64,
	limit *uint64,
	order types.Order,
) ([]types.Bid, error) {
	count, err := s.BidCount(auctionID)
	if err != nil {
		return nil, err
	}

	lo, hi := bidWindow(count, startAfter, s.limits.Clamp(limit), order)
	if lo >= hi {
		return []types.Bid{}, nil
	}

	var iter dbm.Iterator
	if order == types.OrderDescending {
		iter, err = s.db.ReverseIterator(bidKey(auctionID, lo), bidKey(auctionID, hi))
	} else {
		iter, err = s.db.Iterator(bidKey(auctionID, lo), bidKey(auctionID, hi))
	}
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	bids := make([]types.Bid, 0, hi-lo)
	for ; iter.Valid(); iter.Next() {
		var bid types.Bid
		if err := json.Unmarshal(iter.Value(), &bid); err != nil {
			return nil, fmt.Errorf("unmarshal bid of auction %d: %w", auctionID, err)
		}
		bids = append(bids, bid)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return bids, nil
}

// InitBids schedules an empty bid ledger for a new auction.
func (u *Update) InitBids(auctionID uint64) {
	u.set(bidCountKey(auctionID), encodeUint64(0))
}

// AppendBid schedules bid as the next entry of the auction's ledger. It
// must be called at most once per auction and Update.
func (u *Update) AppendBid(auctionID uint64, bid types.Bid) error {
	count, err := u.store.BidCount(auctionID)
	if err != nil {
		return err
	}
	u.setJSON(bidKey(auctionID, count), bid)
	u.set(bidCountKey(auctionID), encodeUint64(count+1))
	return nil
}
