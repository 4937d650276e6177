package types

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidExpiration         = errors.New("invalid expiration")
	ErrIncomparableExpirations   = errors.New("cannot compare expirations of different kinds")
	ErrOverflow                  = errors.New("overflow")
	ErrAuctionDoesNotExist       = errors.New("auction does not exist")
	ErrAuctionCancelled          = errors.New("auction has been cancelled")
	ErrAuctionNotStarted         = errors.New("auction has not started yet")
	ErrAuctionEnded              = errors.New("auction has ended")
	ErrAuctionNotEnded           = errors.New("auction has not ended yet")
	ErrAuctionAlreadyClaimed     = errors.New("auction has already been claimed")
	ErrAuctionAlreadyOpen        = errors.New("asset is already in an auction that has not been settled")
	ErrTokenOwnerCannotBid       = errors.New("token owner cannot bid")
	ErrHighestBidderCannotOutBid = errors.New("highest bidder cannot outbid itself")
	ErrBidSmallerThanHighestBid  = errors.New("bid must be larger than the current highest bid")
	ErrBidSmallerThanMinBid      = errors.New("bid is smaller than the minimum bid")
	ErrUnauthorized              = errors.New("unauthorized")
)

// ErrInvalidStartTime is returned when an auction would start at or before
// the current block time. CurrentTime is in milliseconds.
type ErrInvalidStartTime struct {
	CurrentTime  uint64
	CurrentBlock uint64
}

func (e ErrInvalidStartTime) Error() string {
	return fmt.Sprintf("start time is in the past: current time %d ms, current block %d",
		e.CurrentTime, e.CurrentBlock)
}

// ErrInvalidFunds is returned when the funds attached to a message do not
// form a valid bid.
type ErrInvalidFunds struct {
	Msg string
}

func (e ErrInvalidFunds) Error() string {
	return "invalid funds: " + e.Msg
}

func newInvalidFunds(format string, args ...interface{}) error {
	return ErrInvalidFunds{Msg: fmt.Sprintf(format, args...)}
}

// ErrInvalidMsg is returned by ValidateBasic on malformed messages.
type ErrInvalidMsg struct {
	Reason string
}

func (e ErrInvalidMsg) Error() string {
	return "invalid message: " + e.Reason
}
