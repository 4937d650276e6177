package types

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
)

// AssetRef identifies a non-fungible asset by its collection and token id.
type AssetRef struct {
	Collection string `json:"collection"`
	TokenID    string `json:"token_id"`
}

func (a AssetRef) String() string {
	return fmt.Sprintf("%s/%s", a.Collection, a.TokenID)
}

// ValidateBasic performs basic validation.
func (a AssetRef) ValidateBasic() error {
	if a.Collection == "" {
		return ErrInvalidMsg{Reason: "empty collection"}
	}
	if a.TokenID == "" {
		return ErrInvalidMsg{Reason: "empty token id"}
	}
	return nil
}

// AssetEntry lists every auction ever opened for an asset, oldest first.
type AssetEntry struct {
	AuctionIDs []uint64 `json:"auction_ids"`
}

// Latest returns the most recently opened auction id.
func (e AssetEntry) Latest() (uint64, bool) {
	if len(e.AuctionIDs) == 0 {
		return 0, false
	}
	return e.AuctionIDs[len(e.AuctionIDs)-1], true
}

// AuctionSummary is one row of the asset index.
type AuctionSummary struct {
	Collection string   `json:"collection"`
	TokenID    string   `json:"token_id"`
	AuctionIDs []uint64 `json:"auction_ids"`
}

// Auction is the persisted record of a single auction.
type Auction struct {
	ID     uint64        `json:"id"`
	Owner  string        `json:"owner"`
	Asset  AssetRef      `json:"asset"`
	Denom  string        `json:"coin_denom"`
	Start  Expiration    `json:"start"`
	End    Expiration    `json:"end"`
	MinBid *sdkmath.Uint `json:"min_bid,omitempty"`

	// HighBidder is empty until the first bid is accepted.
	HighBidder    string       `json:"high_bidder"`
	HighBidAmount sdkmath.Uint `json:"high_bid_amount"`

	Cancelled bool `json:"is_cancelled"`
	Claimed   bool `json:"is_claimed"`
}

// HasBid reports whether any bid has been accepted.
func (a *Auction) HasBid() bool {
	return !IsZeroAmount(a.HighBidAmount)
}

// AuctionStatus is the lifecycle state derived from an Auction and the
// current block.
type AuctionStatus string

const (
	StatusPending   AuctionStatus = "pending"
	StatusOpen      AuctionStatus = "open"
	StatusEnded     AuctionStatus = "ended"
	StatusCancelled AuctionStatus = "cancelled"
	StatusClaimed   AuctionStatus = "claimed"
)

// StatusAt derives the lifecycle state at block.
func (a *Auction) StatusAt(block BlockInfo) AuctionStatus {
	switch {
	case a.Cancelled:
		return StatusCancelled
	case a.Claimed:
		return StatusClaimed
	case a.End.IsExpired(block):
		return StatusEnded
	case a.Start.IsExpired(block):
		return StatusOpen
	default:
		return StatusPending
	}
}

// Settled reports whether the asset has left escrow.
func (a *Auction) Settled() bool {
	return a.Cancelled || a.Claimed
}

// Bid is an accepted bid. Bids are never modified once stored.
type Bid struct {
	Bidder     string       `json:"bidder"`
	Amount     sdkmath.Uint `json:"amount"`
	AcceptedAt time.Time    `json:"timestamp"`
}

// Order is the direction of a paginated read.
type Order string

const (
	OrderAscending  Order = "asc"
	OrderDescending Order = "desc"
)

// ParseOrder accepts "", "asc" and "desc". The empty string means ascending.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "", OrderAscending:
		return OrderAscending, nil
	case OrderDescending:
		return OrderDescending, nil
	default:
		return "", fmt.Errorf("unknown order %q", s)
	}
}
