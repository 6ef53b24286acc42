// Package memory holds concurrency-safe in-memory implementations of the
// auction repositories. They back the test suites and the standalone demo
// mode, the aggregates they return are shared pointers so the aggregate's own
// mutex is the critical section.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/farmgate/bidEngine/internal/auction/domain"
)

// Tx is the no-op unit of work for the in-memory stores
type Tx struct{}

func (Tx) Commit(ctx context.Context) error   { return nil }
func (Tx) Rollback(ctx context.Context) error { return nil }

// TxManager hands out no-op transactions
type TxManager struct{}

func NewTxManager() *TxManager { return &TxManager{} }

func (*TxManager) Begin(ctx context.Context) (domain.Tx, error) { return Tx{}, nil }

// AuctionRepository is an in-memory domain.AuctionRepository
type AuctionRepository struct {
	mu       sync.RWMutex
	auctions map[uuid.UUID]*domain.Auction
}

func NewAuctionRepository() *AuctionRepository {
	return &AuctionRepository{auctions: make(map[uuid.UUID]*domain.Auction)}
}

func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	return a, nil
}

func (r *AuctionRepository) Save(ctx context.Context, tx domain.Tx, a *domain.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions[a.ID] = a
	return nil
}

func (r *AuctionRepository) List(ctx context.Context, state domain.State, limit, offset int) ([]*domain.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.Auction, 0, len(r.auctions))
	for _, a := range r.auctions {
		if state != "" && a.CurrentState() != state {
			continue
		}
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].EndTime.After(all[j].EndTime) })

	if offset >= len(all) {
		return []*domain.Auction{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// BidRepository is an in-memory domain.BidRepository
type BidRepository struct {
	mu   sync.RWMutex
	bids map[uuid.UUID][]*domain.Bid // key: auctionID, in acceptance order
}

func NewBidRepository() *BidRepository {
	return &BidRepository{bids: make(map[uuid.UUID][]*domain.Bid)}
}

func (r *BidRepository) Save(ctx context.Context, tx domain.Tx, bid *domain.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], bid)
	return nil
}

func (r *BidRepository) GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*domain.Bid(nil), r.bids[auctionID]...), nil
}

func (r *BidRepository) GetLatestByAuctionID(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bids := r.bids[auctionID]
	if len(bids) == 0 {
		return nil, nil
	}
	return bids[len(bids)-1], nil
}
