package auction

import (
	"errors"

	"github.com/tendermint/nftauction/types"
)

// Return codes for the auction application.
const (
	CodeTypeOK                        uint32 = 0
	CodeTypeEncodingError             uint32 = 1
	CodeTypeInvalidMsg                uint32 = 2
	CodeTypeInvalidExpiration         uint32 = 3
	CodeTypeInvalidStartTime          uint32 = 4
	CodeTypeOverflow                  uint32 = 5
	CodeTypeAuctionDoesNotExist       uint32 = 6
	CodeTypeAuctionCancelled          uint32 = 7
	CodeTypeAuctionNotStarted         uint32 = 8
	CodeTypeAuctionEnded              uint32 = 9
	CodeTypeAuctionNotEnded           uint32 = 10
	CodeTypeAuctionAlreadyClaimed     uint32 = 11
	CodeTypeTokenOwnerCannotBid       uint32 = 12
	CodeTypeHighestBidderCannotOutBid uint32 = 13
	CodeTypeBidSmallerThanHighestBid  uint32 = 14
	CodeTypeInvalidFunds              uint32 = 15
	CodeTypeUnauthorized              uint32 = 16
	CodeTypeBidSmallerThanMinBid      uint32 = 17
	CodeTypeAuctionAlreadyOpen        uint32 = 18
	CodeTypeUnknownQuery              uint32 = 19
	CodeTypeInternalError             uint32 = 100
)

var sentinelCodes = []struct {
	err  error
	code uint32
}{
	{types.ErrInvalidExpiration, CodeTypeInvalidExpiration},
	{types.ErrOverflow, CodeTypeOverflow},
	{types.ErrAuctionDoesNotExist, CodeTypeAuctionDoesNotExist},
	{types.ErrAuctionCancelled, CodeTypeAuctionCancelled},
	{types.ErrAuctionNotStarted, CodeTypeAuctionNotStarted},
	{types.ErrAuctionEnded, CodeTypeAuctionEnded},
	{types.ErrAuctionNotEnded, CodeTypeAuctionNotEnded},
	{types.ErrAuctionAlreadyClaimed, CodeTypeAuctionAlreadyClaimed},
	{types.ErrTokenOwnerCannotBid, CodeTypeTokenOwnerCannotBid},
	{types.ErrHighestBidderCannotOutBid, CodeTypeHighestBidderCannotOutBid},
	{types.ErrBidSmallerThanHighestBid, CodeTypeBidSmallerThanHighestBid},
	{types.ErrUnauthorized, CodeTypeUnauthorized},
	{types.ErrBidSmallerThanMinBid, CodeTypeBidSmallerThanMinBid},
	{types.ErrAuctionAlreadyOpen, CodeTypeAuctionAlreadyOpen},
}

// ErrorCode maps an error returned by the engine to a response code.
func ErrorCode(err error) uint32 {
	if err == nil {
		return CodeTypeOK
	}
	for _, sc := range sentinelCodes {
		if errors.Is(err, sc.err) {
			return sc.code
		}
	}

	var (
		startTime types.ErrInvalidStartTime
		funds     types.ErrInvalidFunds
		msg       types.ErrInvalidMsg
	)
	switch {
	case errors.As(err, &startTime):
		return CodeTypeInvalidStartTime
	case errors.As(err, &funds):
		return CodeTypeInvalidFunds
	case errors.As(err, &msg):
		return CodeTypeInvalidMsg
	}
	return CodeTypeInternalError
}
