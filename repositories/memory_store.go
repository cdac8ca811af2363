package repositories

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/HSouheill/indique_backend/utils"
)

// ErrBatchRejected is the default error of a MemoryStore with FailCommit set.
var ErrBatchRejected = errors.New("batch rejected")

// MemoryStore is an in-process DocumentStore used by tests and local runs.
// Documents keep insertion order.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection

	// FindErr, when set, is consulted before every Find.
	FindErr func(collection string, filters []Filter) error
	// FailCommit makes CommitBatch fail with CommitErr (or ErrBatchRejected)
	// without applying any update.
	FailCommit bool
	CommitErr  error

	finds   []FindCall
	commits [][]Update
}

// FindCall records one Find for assertions.
type FindCall struct {
	Collection string
	Filters    []Filter
}

type memCollection struct {
	order []string
	docs  map[string]map[string]interface{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

// Put inserts or replaces a document.
func (s *MemoryStore) Put(collection, id string, data map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, data)
}

func (s *MemoryStore) put(collection, id string, data map[string]interface{}) {
	c, ok := s.collections[collection]
	if !ok {
		c = &memCollection{docs: make(map[string]map[string]interface{})}
		s.collections[collection] = c
	}
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = copyMap(data)
}

func (s *MemoryStore) Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.finds = append(s.finds, FindCall{Collection: collection, Filters: append([]Filter(nil), filters...)})
	findErr := s.FindErr
	s.mu.Unlock()

	if findErr != nil {
		if err := findErr(collection, filters); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, nil
	}
	var out []Document
	for _, id := range c.order {
		data := c.docs[id]
		if matchesAll(data, filters) {
			out = append(out, Document{ID: id, Data: copyMap(data)})
		}
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Data: copyMap(data)}, nil
}

func (s *MemoryStore) Create(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[collection]; ok {
		if _, exists := c.docs[id]; exists {
			return fmt.Errorf("document %s/%s already exists", collection, id)
		}
	}
	s.put(collection, id, data)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	return s.CommitBatch(ctx, []Update{{Collection: collection, ID: id, Fields: fields}})
}

func (s *MemoryStore) CommitBatch(ctx context.Context, updates []Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCommit {
		if s.CommitErr != nil {
			return s.CommitErr
		}
		return ErrBatchRejected
	}

	// Validate everything first so a missing document leaves the store untouched.
	for _, u := range updates {
		c, ok := s.collections[u.Collection]
		if !ok || c.docs[u.ID] == nil {
			return fmt.Errorf("update %s/%s: %w", u.Collection, u.ID, ErrNotFound)
		}
	}
	for _, u := range updates {
		doc := s.collections[u.Collection].docs[u.ID]
		for k, v := range u.Fields {
			doc[k] = v
		}
	}
	s.commits = append(s.commits, append([]Update(nil), updates...))
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Finds returns every Find issued so far.
func (s *MemoryStore) Finds() []FindCall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]FindCall(nil), s.finds...)
}

// Commits returns every successfully applied write, one entry per batch.
func (s *MemoryStore) Commits() [][]Update {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([][]Update(nil), s.commits...)
}

func matchesAll(data map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		if !matches(data, f) {
			return false
		}
	}
	return true
}

func matches(data map[string]interface{}, f Filter) bool {
	v, ok := data[f.Field]
	if !ok {
		return false
	}
	cmp, orderable := compareValues(v, f.Value)
	switch f.Op {
	case OpEqual:
		if orderable {
			return cmp == 0
		}
		return reflect.DeepEqual(v, f.Value)
	case OpGreaterOrEqual:
		return orderable && cmp >= 0
	case OpLess:
		return orderable && cmp < 0
	}
	return false
}

// compareValues orders strings, numbers and timestamps. Values of different
// kinds are not comparable, matching document database semantics.
func compareValues(a, b interface{}) (int, bool) {
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}
	if af, ok := utils.ToFloat(a); ok {
		bf, ok := utils.ToFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	if _, isBool := a.(bool); isBool {
		return 0, false
	}
	am, ok := utils.TimestampMillis(a)
	if !ok {
		return 0, false
	}
	bm, ok := utils.TimestampMillis(b)
	if !ok {
		return 0, false
	}
	switch {
	case am < bm:
		return -1, true
	case am > bm:
		return 1, true
	}
	return 0, true
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
