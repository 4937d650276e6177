package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/nftauction/types"
)

/*
Store is the persistent data model of the auction engine.

There are four kinds of information stored:
 - NextAuctionID: the id the next opened auction will receive
 - Auction:       the record of every auction, keyed by id
 - AssetIndex:    every auction id ever opened for an asset, oldest first
 - Bids:          the append-only bid ledger of each auction

All writes go through an Update, which is applied atomically or not at all.
Between BeginBlock and CommitBlock committed updates are held in memory and
point reads see them; CommitBlock flushes them together with the AppState
in one synced batch, so the DB never holds a partially applied block.
Ranged reads always see the last flushed state.
*/
type Store struct {
	db     dbm.DB
	limits PageLimits

	// writes of the open block, nil outside a block
	pending map[string][]byte
}

// NewStore returns a Store over db using the given pagination limits.
func NewStore(db dbm.DB, limits PageLimits) *Store {
	return &Store{db: db, limits: limits}
}

// Limits returns the pagination limits used by ranged reads.
func (s *Store) Limits() PageLimits {
	return s.limits
}

// Init seeds the auction id counter. It is a no-op if the counter exists.
func (s *Store) Init() error {
	bz, err := s.get(nextAuctionIDKey())
	if err != nil {
		return err
	}
	if len(bz) != 0 {
		return nil
	}
	return s.db.SetSync(nextAuctionIDKey(), encodeUint64(1))
}

// Committed returns a view of s that ignores the writes of the open block.
func (s *Store) Committed() *Store {
	return &Store{db: s.db, limits: s.limits}
}

func (s *Store) get(key []byte) ([]byte, error) {
	if v, ok := s.pending[string(key)]; ok {
		return v, nil
	}
	return s.db.Get(key)
}

// NextAuctionID returns the id the next auction will receive.
func (s *Store) NextAuctionID() (uint64, error) {
	bz, err := s.get(nextAuctionIDKey())
	if err != nil {
		return 0, err
	}
	if len(bz) == 0 {
		// an uninitialized store behaves like a freshly seeded one
		return 1, nil
	}
	return decodeUint64(bz)
}

// LoadAuction returns the auction with the given id, or
// types.ErrAuctionDoesNotExist.
func (s *Store) LoadAuction(id uint64) (*types.Auction, error) {
	bz, err := s.get(auctionKey(id))
	if err != nil {
		return nil, err
	}
	if len(bz) == 0 {
		return nil, fmt.Errorf("%w: id %d", types.ErrAuctionDoesNotExist, id)
	}
	auction := new(types.Auction)
	if err := json.Unmarshal(bz, auction); err != nil {
		return nil, fmt.Errorf("unmarshal auction %d: %w", id, err)
	}
	return auction, nil
}

// LatestAuction resolves the most recent auction of an asset.
func (s *Store) LatestAuction(asset types.AssetRef) (*types.Auction, error) {
	entry, err := s.LoadAssetEntry(asset)
	if err != nil {
		return nil, err
	}
	id, ok := entry.Latest()
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrAuctionDoesNotExist, asset)
	}
	return s.LoadAuction(id)
}

//-----------------------------------------------------------------------------

// AppState is the last committed application state. Time and ChainID are
// those of the block at Height.
type AppState struct {
	Height  int64     `json:"height"`
	AppHash []byte    `json:"app_hash"`
	Time    time.Time `json:"time"`
	ChainID string    `json:"chain_id"`
}

func (s *Store) LoadAppState() (AppState, error) {
	var state AppState
	bz, err := s.db.Get(appStateKey())
	if err != nil {
		return state, err
	}
	if len(bz) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(bz, &state); err != nil {
		return state, fmt.Errorf("unmarshal app state: %w", err)
	}
	return state, nil
}

// BeginBlock starts holding committed updates in memory. Any writes left
// from an unfinished block are dropped.
func (s *Store) BeginBlock() {
	s.pending = make(map[string][]byte)
}

// CommitBlock durably writes the updates of the open block together with
// state and closes the block. It may be called without an open block.
func (s *Store) CommitBlock(state AppState) error {
	bz, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal app state: %w", err)
	}
	batch := s.db.NewBatch()
	defer batch.Close()
	for k, v := range s.pending {
		if err := batch.Set([]byte(k), v); err != nil {
			return err
		}
	}
	if err := batch.Set(appStateKey(), bz); err != nil {
		return err
	}
	if err := batch.WriteSync(); err != nil {
		return err
	}
	s.pending = nil
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

//-----------------------------------------------------------------------------

// Update collects the writes of one state transition. Nothing is visible
// until Commit; Discard drops the collected writes.
type Update struct {
	store *Store
	keys  [][]byte
	vals  [][]byte
	err   error
}

// NewUpdate starts an atomic write set.
func (s *Store) NewUpdate() *Update {
	return &Update{store: s}
}

func (u *Update) set(key []byte, value []byte) {
	if u.err != nil {
		return
	}
	u.keys = append(u.keys, key)
	u.vals = append(u.vals, value)
}

func (u *Update) setJSON(key []byte, v interface{}) {
	if u.err != nil {
		return
	}
	bz, err := json.Marshal(v)
	if err != nil {
		u.err = err
		return
	}
	u.set(key, bz)
}

// AllocateAuctionID consumes the next auction id and schedules the counter
// increment.
func (u *Update) AllocateAuctionID() (uint64, error) {
	id, err := u.store.NextAuctionID()
	if err != nil {
		return 0, err
	}
	if id == math.MaxUint64 {
		return 0, types.ErrOverflow
	}
	u.set(nextAuctionIDKey(), encodeUint64(id+1))
	return id, nil
}

// SaveAuction schedules the auction record for writing.
func (u *Update) SaveAuction(auction *types.Auction) {
	u.setJSON(auctionKey(auction.ID), auction)
}

// Commit applies the collected changes. Inside a block they join the
// block's writes, otherwise they are written durably in one batch.
func (u *Update) Commit() error {
	defer u.Discard()
	if u.err != nil {
		return fmt.Errorf("prepare update: %w", u.err)
	}
	if u.store.pending != nil {
		for i, k := range u.keys {
			u.store.pending[string(k)] = u.vals[i]
		}
		return nil
	}

	batch := u.store.db.NewBatch()
	defer batch.Close()
	for i, k := range u.keys {
		if err := batch.Set(k, u.vals[i]); err != nil {
			return err
		}
	}
	return batch.WriteSync()
}

// Discard drops the collected writes.
func (u *Update) Discard() {
	u.keys, u.vals = nil, nil
}

// IsNotFound reports whether err means a record is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, types.ErrAuctionDoesNotExist)
}
