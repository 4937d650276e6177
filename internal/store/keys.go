package store

import (
	"encoding/binary"
	"fmt"

	"github.com/google/orderedcode"

	"github.com/tendermint/nftauction/types"
)

//---------------------------------- KEY ENCODING -----------------------------------------

// key prefixes
const (
	prefixNextAuctionID = int64(1)
	prefixAuction       = int64(2)
	prefixAssetIndex    = int64(3)
	prefixBidCount      = int64(4)
	prefixBid           = int64(5)
	prefixAppState      = int64(6)
)

func nextAuctionIDKey() []byte {
	key, err := orderedcode.Append(nil, prefixNextAuctionID)
	if err != nil {
		panic(err)
	}
	return key
}

func auctionKey(id uint64) []byte {
	key, err := orderedcode.Append(nil, prefixAuction, id)
	if err != nil {
		panic(err)
	}
	return key
}

func assetIndexKey(asset types.AssetRef) []byte {
	key, err := orderedcode.Append(nil, prefixAssetIndex, asset.Collection, asset.TokenID)
	if err != nil {
		panic(err)
	}
	return key
}

// assetIndexRange returns the [start, end) range covering every asset, or
// every asset of one collection when collection is non-nil.
func assetIndexRange(collection *string) (start, end []byte) {
	var err error
	if collection == nil {
		start, err = orderedcode.Append(nil, prefixAssetIndex)
		if err != nil {
			panic(err)
		}
		end, err = orderedcode.Append(nil, prefixAssetIndex, orderedcode.Infinity)
	} else {
		start, err = orderedcode.Append(nil, prefixAssetIndex, *collection)
		if err != nil {
			panic(err)
		}
		end, err = orderedcode.Append(nil, prefixAssetIndex, *collection, orderedcode.Infinity)
	}
	if err != nil {
		panic(err)
	}
	return start, end
}

func decodeAssetIndexKey(key []byte) (asset types.AssetRef, err error) {
	var prefix int64
	remaining, err := orderedcode.Parse(string(key), &prefix, &asset.Collection, &asset.TokenID)
	if err != nil {
		return
	}
	if len(remaining) != 0 {
		return types.AssetRef{}, fmt.Errorf("expected complete key but got remainder: %s", remaining)
	}
	if prefix != prefixAssetIndex {
		return types.AssetRef{}, fmt.Errorf("incorrect prefix. Expected %v, got %v", prefixAssetIndex, prefix)
	}
	return
}

func bidCountKey(auctionID uint64) []byte {
	key, err := orderedcode.Append(nil, prefixBidCount, auctionID)
	if err != nil {
		panic(err)
	}
	return key
}

func bidKey(auctionID, seq uint64) []byte {
	key, err := orderedcode.Append(nil, prefixBid, auctionID, seq)
	if err != nil {
		panic(err)
	}
	return key
}

func appStateKey() []byte {
	key, err := orderedcode.Append(nil, prefixAppState)
	if err != nil {
		panic(err)
	}
	return key
}

//-----------------------------------------------------------------------------

func encodeUint64(v uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, v)
	return bz
}

func decodeUint64(bz []byte) (uint64, error) {
	if len(bz) != 8 {
		return 0, fmt.Errorf("expected 8 bytes, got %d", len(bz))
	}
	return binary.BigEndian.Uint64(bz), nil
}
