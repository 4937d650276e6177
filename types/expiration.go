package types

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// BlockInfo is the execution context every state transition runs in.
type BlockInfo struct {
	Height  int64     `json:"height"`
	Time    time.Time `json:"time"`
	ChainID string    `json:"chain_id"`
}

// UnixNano returns the block time as nanoseconds since the epoch, clamped at
// zero for times before 1970.
func (b BlockInfo) UnixNano() uint64 {
	ns := b.Time.UnixNano()
	if ns < 0 {
		return 0
	}
	return uint64(ns)
}

// UnixMilli returns the block time in milliseconds since the epoch.
func (b BlockInfo) UnixMilli() uint64 {
	return b.UnixNano() / nanosPerMilli
}

func (b BlockInfo) height() uint64 {
	if b.Height < 0 {
		return 0
	}
	return uint64(b.Height)
}

const nanosPerMilli = uint64(1_000_000)

// ExpirationKind tags the variant held by an Expiration.
type ExpirationKind uint8

const (
	ExpirationNever ExpirationKind = iota
	ExpirationAtHeight
	ExpirationAtTime
)

func (k ExpirationKind) String() string {
	switch k {
	case ExpirationNever:
		return "never"
	case ExpirationAtHeight:
		return "at_height"
	case ExpirationAtTime:
		return "at_time"
	default:
		return fmt.Sprintf("ExpirationKind(%d)", uint8(k))
	}
}

// Expiration is a point on either the block-height or the wall-clock axis.
// AtTime values are nanoseconds since the Unix epoch.
type Expiration struct {
	Kind  ExpirationKind
	Value uint64
}

func Never() Expiration                 { return Expiration{Kind: ExpirationNever} }
func AtHeight(height uint64) Expiration { return Expiration{Kind: ExpirationAtHeight, Value: height} }
func AtTime(nanos uint64) Expiration    { return Expiration{Kind: ExpirationAtTime, Value: nanos} }

// FromMilliseconds converts a millisecond timestamp into an AtTime
// expiration. Values that do not fit in nanoseconds are rejected.
func FromMilliseconds(ms uint64) (Expiration, error) {
	if ms > math.MaxUint64/nanosPerMilli {
		return Expiration{}, ErrInvalidExpiration
	}
	return AtTime(ms * nanosPerMilli), nil
}

// IsExpired reports whether the expiration has been reached at the given
// block. The boundary instant counts as reached. Never is never reached.
func (e Expiration) IsExpired(block BlockInfo) bool {
	switch e.Kind {
	case ExpirationAtHeight:
		return block.height() >= e.Value
	case ExpirationAtTime:
		return block.UnixNano() >= e.Value
	default:
		return false
	}
}

// CurrentFor returns the current instant of the block in the same variant
// as e. Never has no current instant.
func (e Expiration) CurrentFor(block BlockInfo) (Expiration, bool) {
	switch e.Kind {
	case ExpirationAtHeight:
		return AtHeight(block.height()), true
	case ExpirationAtTime:
		return AtTime(block.UnixNano()), true
	default:
		return Expiration{}, false
	}
}

// Compare orders two expirations of the same variant. It returns -1, 0 or 1
// like bytes.Compare.
func (e Expiration) Compare(other Expiration) (int, error) {
	if e.Kind != other.Kind {
		return 0, fmt.Errorf("%w: %s vs %s", ErrIncomparableExpirations, e.Kind, other.Kind)
	}
	switch {
	case e.Kind == ExpirationNever:
		return 0, nil
	case e.Value < other.Value:
		return -1, nil
	case e.Value > other.Value:
		return 1, nil
	default:
		return 0, nil
	}
}

// After reports whether e is strictly later than other.
func (e Expiration) After(other Expiration) (bool, error) {
	c, err := e.Compare(other)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (e Expiration) String() string {
	switch e.Kind {
	case ExpirationAtHeight:
		return fmt.Sprintf("expiration height: %d", e.Value)
	case ExpirationAtTime:
		return fmt.Sprintf("expiration time: %d.%09d", e.Value/1_000_000_000, e.Value%1_000_000_000)
	default:
		return "expiration: never"
	}
}

type expirationJSON struct {
	AtHeight *uint64   `json:"at_height,omitempty"`
	AtTime   *uint64   `json:"at_time,omitempty,string"`
	Never    *struct{} `json:"never,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (e Expiration) MarshalJSON() ([]byte, error) {
	var out expirationJSON
	switch e.Kind {
	case ExpirationAtHeight:
		v := e.Value
		out.AtHeight = &v
	case ExpirationAtTime:
		v := e.Value
		out.AtTime = &v
	default:
		out.Never = &struct{}{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (e *Expiration) UnmarshalJSON(data []byte) error {
	var in expirationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch {
	case in.AtHeight != nil && in.AtTime == nil && in.Never == nil:
		*e = AtHeight(*in.AtHeight)
	case in.AtTime != nil && in.AtHeight == nil && in.Never == nil:
		*e = AtTime(*in.AtTime)
	case in.Never != nil && in.AtHeight == nil && in.AtTime == nil:
		*e = Never()
	default:
		return fmt.Errorf("expiration must set exactly one of at_height, at_time, never: %s", data)
	}
	return nil
}
