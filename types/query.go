package types

// Query paths served by the application.
const (
	QueryPathAuction   = "/auction"
	QueryPathLatest    = "/latest"
	QueryPathBids      = "/bids"
	QueryPathSummaries = "/summaries"
)

type QueryAuctionRequest struct {
	AuctionID uint64 `json:"auction_id"`
}

type QueryLatestRequest struct {
	Collection string `json:"collection"`
	TokenID    string `json:"token_id"`
}

// QueryAuctionResponse is the answer to /auction and /latest.
type QueryAuctionResponse struct {
	Auction *Auction      `json:"auction"`
	Status  AuctionStatus `json:"status"`
}

type QueryBidsRequest struct {
	AuctionID  uint64  `json:"auction_id"`
	StartAfter *uint64 `json:"start_after,omitempty"`
	Limit      *uint64 `json:"limit,omitempty"`
	Order      string  `json:"order,omitempty"`
}

type QueryBidsResponse struct {
	Bids []Bid `json:"bids"`
}

type QuerySummariesRequest struct {
	Collection *string   `json:"collection,omitempty"`
	StartAfter *AssetRef `json:"start_after,omitempty"`
	Limit      *uint64   `json:"limit,omitempty"`
}

type QuerySummariesResponse struct {
	Summaries []AuctionSummary `json:"summaries"`
}
