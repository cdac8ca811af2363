package repositories

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is a raw stored document. Data keeps the driver's value types so
// readers can decide how tolerant to be with malformed fields.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Operator is a query comparison supported by every store driver.
type Operator string

const (
	OpEqual          Operator = "=="
	OpGreaterOrEqual Operator = ">="
	OpLess           Operator = "<"
)

// Filter is one field predicate. Filters in a query are ANDed.
type Filter struct {
	Field string
	Op    Operator
	Value interface{}
}

// Where builds a Filter.
func Where(field string, op Operator, value interface{}) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Update sets Fields on one document.
type Update struct {
	Collection string
	ID         string
	Fields     map[string]interface{}
}

// DocumentStore is the document database the services read and write.
// CommitBatch applies every update or none of them.
type DocumentStore interface {
	Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	Get(ctx context.Context, collection, id string) (*Document, error)
	Create(ctx context.Context, collection, id string, data map[string]interface{}) error
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	CommitBatch(ctx context.Context, updates []Update) error
	Close() error
}
