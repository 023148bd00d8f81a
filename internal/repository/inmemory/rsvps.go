package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	rsvpdomain "wedding-rsvp/internal/domain/rsvp"

	"github.com/google/uuid"
)

// InMemoryRSVPRepository is a process-local Record Store used with
// STORE_DRIVER=memory and in tests. Records are cloned on the way in and out.
type InMemoryRSVPRepository struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	items map[string]rsvpdomain.RSVP
	revs  map[string]uint64
	now   func() time.Time
}

func NewInMemoryRSVPRepository() *InMemoryRSVPRepository {
	return &InMemoryRSVPRepository{
		items: make(map[string]rsvpdomain.RSVP),
		revs:  make(map[string]uint64),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Transaction serialises fn against other transactions. When fn fails only
// the keys it wrote are rolled back, and only if nothing wrote them since.
func (r *InMemoryRSVPRepository) Transaction(ctx context.Context, fn func(rsvpdomain.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	tx := &rsvpTx{repo: r, undo: make(map[string]undoEntry)}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (r *InMemoryRSVPRepository) Create(ctx context.Context, record *rsvpdomain.RSVP) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.createLocked(record)
	return nil
}

func (r *InMemoryRSVPRepository) createLocked(record *rsvpdomain.RSVP) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now()
	}
	stored := record.Clone()
	*record = stored.Clone()
	r.put(stored)
}

func (r *InMemoryRSVPRepository) put(record rsvpdomain.RSVP) {
	r.items[record.ID] = record
	r.revs[record.ID]++
}

func (r *InMemoryRSVPRepository) remove(id string) {
	delete(r.items, id)
	r.revs[id]++
}

func (r *InMemoryRSVPRepository) List(ctx context.Context) ([]rsvpdomain.RSVP, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	records := make([]rsvpdomain.RSVP, 0, len(r.items))
	for _, item := range r.items {
		records = append(records, item.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

func (r *InMemoryRSVPRepository) GetByID(ctx context.Context, id string) (*rsvpdomain.RSVP, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	item, ok := r.items[id]
	r.mu.RUnlock()
	if !ok {
		return nil, rsvpdomain.ErrRSVPNotFound
	}

	record := item.Clone()
	return &record, nil
}

func (r *InMemoryRSVPRepository) Update(ctx context.Context, record *rsvpdomain.RSVP) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateLocked(record)
}

func (r *InMemoryRSVPRepository) updateLocked(record *rsvpdomain.RSVP) error {
	existing, ok := r.items[record.ID]
	if !ok {
		return rsvpdomain.ErrRSVPNotFound
	}
	updated := record.Clone()
	updated.CreatedAt = existing.CreatedAt
	r.put(updated)
	return nil
}

func (r *InMemoryRSVPRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteLocked(id), nil
}

func (r *InMemoryRSVPRepository) deleteLocked(id string) bool {
	if _, ok := r.items[id]; !ok {
		return false
	}
	r.remove(id)
	return true
}

type undoEntry struct {
	before  rsvpdomain.RSVP
	existed bool
	rev     uint64
}

// rsvpTx writes straight through to the repository and keeps the first
// before-image of every key it touches.
type rsvpTx struct {
	repo *InMemoryRSVPRepository
	undo map[string]undoEntry
}

func (tx *rsvpTx) Transaction(_ context.Context, fn func(rsvpdomain.Repository) error) error {
	return fn(tx)
}

func (tx *rsvpTx) Create(ctx context.Context, record *rsvpdomain.RSVP) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r := tx.repo
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	tx.remember(record.ID)
	r.createLocked(record)
	tx.written(record.ID)
	return nil
}

func (tx *rsvpTx) List(ctx context.Context) ([]rsvpdomain.RSVP, error) {
	return tx.repo.List(ctx)
}

func (tx *rsvpTx) GetByID(ctx context.Context, id string) (*rsvpdomain.RSVP, error) {
	return tx.repo.GetByID(ctx, id)
}

func (tx *rsvpTx) Update(ctx context.Context, record *rsvpdomain.RSVP) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r := tx.repo
	r.mu.Lock()
	defer r.mu.Unlock()
	tx.remember(record.ID)
	if err := r.updateLocked(record); err != nil {
		return err
	}
	tx.written(record.ID)
	return nil
}

func (tx *rsvpTx) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r := tx.repo
	r.mu.Lock()
	defer r.mu.Unlock()
	tx.remember(id)
	deleted := r.deleteLocked(id)
	if deleted {
		tx.written(id)
	}
	return deleted, nil
}

// remember must be called with repo.mu held.
func (tx *rsvpTx) remember(id string) {
	if _, ok := tx.undo[id]; ok {
		return
	}
	item, existed := tx.repo.items[id]
	tx.undo[id] = undoEntry{before: item.Clone(), existed: existed, rev: tx.repo.revs[id]}
}

// written must be called with repo.mu held.
func (tx *rsvpTx) written(id string) {
	entry := tx.undo[id]
	entry.rev = tx.repo.revs[id]
	tx.undo[id] = entry
}

func (tx *rsvpTx) rollback() {
	r := tx.repo
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, entry := range tx.undo {
		if r.revs[id] != entry.rev {
			continue
		}
		if entry.existed {
			r.put(entry.before)
		} else if _, ok := r.items[id]; ok {
			r.remove(id)
		}
	}
}
