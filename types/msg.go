package types

import (
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Tx is the envelope delivered to the application. Sender is the
// authenticated caller and Funds the coins transferred along with the call.
type Tx struct {
	Sender string `json:"sender"`
	Funds  Coins  `json:"funds,omitempty"`
	Msg    Msg    `json:"msg"`
}

// DecodeTx parses a JSON encoded transaction and validates it.
func DecodeTx(bz []byte) (*Tx, error) {
	tx := new(Tx)
	if err := json.Unmarshal(bz, tx); err != nil {
		return nil, fmt.Errorf("decode tx: %w", err)
	}
	if err := tx.ValidateBasic(); err != nil {
		return nil, err
	}
	return tx, nil
}

// Marshal encodes the transaction as JSON.
func (tx *Tx) Marshal() ([]byte, error) {
	return json.Marshal(tx)
}

// ValidateBasic performs stateless validation.
func (tx *Tx) ValidateBasic() error {
	if tx.Sender == "" {
		return ErrInvalidMsg{Reason: "empty sender"}
	}
	return tx.Msg.ValidateBasic()
}

// Msg is a tagged union. Exactly one field must be set.
type Msg struct {
	ReceiveAsset  *MsgReceiveAsset  `json:"receive_asset,omitempty"`
	PlaceBid      *MsgPlaceBid      `json:"place_bid,omitempty"`
	CancelAuction *MsgCancelAuction `json:"cancel_auction,omitempty"`
	Claim         *MsgClaim         `json:"claim,omitempty"`
}

// Sum returns the single message variant that is set, or nil.
func (m Msg) Sum() interface{ ValidateBasic() error } {
	var (
		sum interface{ ValidateBasic() error }
		n   int
	)
	if m.ReceiveAsset != nil {
		sum, n = m.ReceiveAsset, n+1
	}
	if m.PlaceBid != nil {
		sum, n = m.PlaceBid, n+1
	}
	if m.CancelAuction != nil {
		sum, n = m.CancelAuction, n+1
	}
	if m.Claim != nil {
		sum, n = m.Claim, n+1
	}
	if n != 1 {
		return nil
	}
	return sum
}

// Type returns the variant name used in logs and metrics.
func (m Msg) Type() string {
	switch m.Sum().(type) {
	case *MsgReceiveAsset:
		return "receive_asset"
	case *MsgPlaceBid:
		return "place_bid"
	case *MsgCancelAuction:
		return "cancel_auction"
	case *MsgClaim:
		return "claim"
	default:
		return "unknown"
	}
}

func (m Msg) ValidateBasic() error {
	sum := m.Sum()
	if sum == nil {
		return ErrInvalidMsg{Reason: "exactly one message variant must be set"}
	}
	return sum.ValidateBasic()
}

// MsgReceiveAsset is the custody notification sent by a collection when an
// asset has been deposited. The collection is the sender of the Tx.
type MsgReceiveAsset struct {
	Sender  string    `json:"sender"`
	TokenID string    `json:"token_id"`
	Msg     AssetHook `json:"msg"`
}

func (msg *MsgReceiveAsset) ValidateBasic() error {
	if msg.Sender == "" {
		return ErrInvalidMsg{Reason: "empty asset sender"}
	}
	if msg.TokenID == "" {
		return ErrInvalidMsg{Reason: "empty token id"}
	}
	if msg.Msg.StartAuction == nil {
		return ErrInvalidMsg{Reason: "missing start_auction payload"}
	}
	return nil
}

// AssetHook is the payload carried by a deposit notification.
type AssetHook struct {
	StartAuction *StartAuction `json:"start_auction,omitempty"`
}

// StartAuction parameters. StartTime and Duration are in milliseconds.
type StartAuction struct {
	StartTime uint64        `json:"start_time"`
	Duration  uint64        `json:"duration"`
	CoinDenom string        `json:"coin_denom"`
	MinBid    *sdkmath.Uint `json:"min_bid,omitempty"`
}

// AssetMsg is embedded by messages that address the latest auction of an
// asset.
type AssetMsg struct {
	TokenID      string `json:"token_id"`
	TokenAddress string `json:"token_address"`
}

func (m AssetMsg) Asset() AssetRef {
	return AssetRef{Collection: m.TokenAddress, TokenID: m.TokenID}
}

func (m AssetMsg) ValidateBasic() error {
	return m.Asset().ValidateBasic()
}

type MsgPlaceBid struct {
	AssetMsg
}

type MsgCancelAuction struct {
	AssetMsg
}

type MsgClaim struct {
	AssetMsg
}
