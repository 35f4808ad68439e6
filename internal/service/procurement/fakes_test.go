package procurement

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Additional-Code/procura/internal/cache"
	"github.com/Additional-Code/procura/internal/entity"
	"github.com/Additional-Code/procura/internal/messaging"
	repo "github.com/Additional-Code/procura/internal/repository/procurement"
)

type memoryStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]entity.ProcurementRequest
	users  map[int64]entity.User
}

func newMemoryStore(users ...entity.User) *memoryStore {
	s := &memoryStore{rows: map[int64]entity.ProcurementRequest{}, users: map[int64]entity.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (m *memoryStore) withRequester(req entity.ProcurementRequest) *entity.ProcurementRequest {
	if u, ok := m.users[req.RequesterID]; ok {
		user := u
		req.Requester = &user
	}
	return &req
}

func (m *memoryStore) Create(_ context.Context, req *entity.ProcurementRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	req.ID = m.nextID
	row := *req
	row.Requester = nil
	m.rows[req.ID] = row
	return nil
}

func (m *memoryStore) GetByID(_ context.Context, id int64) (*entity.ProcurementRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return m.withRequester(row), nil
}

func (m *memoryStore) matching(filter repo.Filter) []entity.ProcurementRequest {
	var out []entity.ProcurementRequest
	for _, row := range m.rows {
		if filter.RequesterID != nil && row.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.VenueName != "" && row.VenueName != filter.VenueName {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		out = append(out, *m.withRequester(row))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *memoryStore) List(_ context.Context, filter repo.Filter, page repo.Page) ([]entity.ProcurementRequest, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.matching(filter)
	start := (page.Number - 1) * page.Size
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *memoryStore) All(_ context.Context, filter repo.Filter) ([]entity.ProcurementRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matching(filter), nil
}

func (m *memoryStore) Update(_ context.Context, req *entity.ProcurementRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[req.ID]; !ok {
		return repo.ErrNotFound
	}
	row := *req
	row.Requester = nil
	m.rows[req.ID] = row
	return nil
}

func (m *memoryStore) UpdateStatus(_ context.Context, id int64, status entity.Status, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return repo.ErrNotFound
	}
	row.Status = status
	row.UpdatedAt = at
	m.rows[id] = row
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, _ []byte, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, value)
	return nil
}

func (p *recordingPublisher) Consume(ctx context.Context, _ messaging.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (p *recordingPublisher) Topic() string { return "procurement.events" }

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}
