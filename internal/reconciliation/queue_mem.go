package reconciliation

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/go-petr/swift-ledger/internal/domain"
)

// MemQueue is an in-memory incident queue.
type MemQueue struct {
	mu    sync.Mutex
	items []domain.Incident
}

// NewMemQueue returns an empty MemQueue.
func NewMemQueue() *MemQueue {
	return &MemQueue{}
}

// Record appends the incident to the tail of the queue.
func (q *MemQueue) Record(_ context.Context, inc domain.Incident) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, inc)

	return nil
}

// Pending returns the queued incidents, oldest first.
func (q *MemQueue) Pending(_ context.Context) ([]domain.Incident, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := make([]domain.Incident, len(q.items))
	copy(items, q.items)

	return items, nil
}

// Ack removes the incident with the given id from the queue.
func (q *MemQueue) Ack(_ context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, inc := range q.items {
		if inc.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return nil
		}
	}

	return domain.ErrIncidentNotFound
}
