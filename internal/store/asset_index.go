package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tendermint/nftauction/types"
)

// LoadAssetEntry returns the auctions opened for an asset. A missing entry
// is returned as an empty one.
func (s *Store) LoadAssetEntry(asset types.AssetRef) (types.AssetEntry, error) {
	var entry types.AssetEntry
	bz, err := s.get(assetIndexKey(asset))
	if err != nil {
		return entry, err
	}
	if len(bz) == 0 {
		return entry, nil
	}
	if err := json.Unmarshal(bz, &entry); err != nil {
		return entry, fmt.Errorf("unmarshal asset entry %s: %w", asset, err)
	}
	return entry, nil
}

// IndexAuction schedules id to be appended to the asset's entry.
func (u *Update) IndexAuction(asset types.AssetRef, id uint64) error {
	entry, err := u.store.LoadAssetEntry(asset)
	if err != nil {
		return err
	}
	entry.AuctionIDs = append(entry.AuctionIDs, id)
	u.setJSON(assetIndexKey(asset), entry)
	return nil
}

// ReadAuctionSummaries lists asset entries ordered by (collection, token id).
// A non-nil collection restricts the scan to that collection. startAfter is
// an exclusive cursor; when filtering by collection an empty cursor
// collection is taken to be the filter.
func (s *Store) ReadAuctionSummaries(
	collection *string,
	startAfter *types.AssetRef,
	limit *uint64,
) ([]types.AuctionSummary, error) {
	n := s.limits.Clamp(limit)
	summaries := []types.AuctionSummary{}
	if n == 0 {
		return summaries, nil
	}

	start, end := assetIndexRange(collection)
	var cursor []byte
	if startAfter != nil {
		after := *startAfter
		if collection != nil && after.Collection == "" {
			after.Collection = *collection
		}
		cursor = assetIndexKey(after)
		if bytes.Compare(cursor, end) >= 0 {
			return summaries, nil
		}
		if bytes.Compare(cursor, start) > 0 {
			start = cursor
		}
	}

	iter, err := s.db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	for ; iter.Valid() && uint64(len(summaries)) < n; iter.Next() {
		if cursor != nil && bytes.Equal(iter.Key(), cursor) {
			continue
		}
		asset, err := decodeAssetIndexKey(iter.Key())
		if err != nil {
			return nil, err
		}
		var entry types.AssetEntry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			return nil, fmt.Errorf("unmarshal asset entry %s: %w", asset, err)
		}
		summaries = append(summaries, types.AuctionSummary{
			Collection: asset.Collection,
			TokenID:    asset.TokenID,
			AuctionIDs: entry.AuctionIDs,
		})
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return summaries, nil
}
