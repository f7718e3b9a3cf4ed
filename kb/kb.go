package kb

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/tle-generator/model"
)

var (
	// ErrRecordExists indicates a catalog number has already been assigned.
	ErrRecordExists = errors.New("catalog number already assigned")
	// ErrInvalidCatalogNumber indicates a catalog number outside 1..99999.
	ErrInvalidCatalogNumber = errors.New("invalid catalog number")
)

// maxCatalogNumber is the largest number that fits the 5 column field.
const maxCatalogNumber = 99999

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventRecordAdded EventType = iota
)

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type   EventType
	Record model.TleRecord
}

// KnowledgeBase is an in-memory, thread-safe catalog of assembled element
// sets keyed by catalog number. Workers may add records in any order;
// snapshots are always returned in catalog order.
type KnowledgeBase struct {
	mu sync.RWMutex

	records map[int]model.TleRecord

	subs map[int]func(Event)
	next int
}

// NewKnowledgeBase constructs an empty KB.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		records: make(map[int]model.TleRecord),
		subs:    make(map[int]func(Event)),
	}
}

// AddRecord stores rec under its catalog number and notifies subscribers.
func (kb *KnowledgeBase) AddRecord(rec model.TleRecord) error {
	if rec.CatalogNumber < 1 || rec.CatalogNumber > maxCatalogNumber {
		return fmt.Errorf("%w: %d", ErrInvalidCatalogNumber, rec.CatalogNumber)
	}

	kb.mu.Lock()
	if _, exists := kb.records[rec.CatalogNumber]; exists {
		kb.mu.Unlock()
		return fmt.Errorf("%w: %05d", ErrRecordExists, rec.CatalogNumber)
	}
	kb.records[rec.CatalogNumber] = rec
	subs := make([]func(Event), 0, len(kb.subs))
	for _, fn := range kb.subs {
		subs = append(subs, fn)
	}
	kb.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	event := Event{Type: EventRecordAdded, Record: rec}
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// GetRecord returns the record with the given catalog number.
func (kb *KnowledgeBase) GetRecord(catalog int) (model.TleRecord, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	rec, ok := kb.records[catalog]
	return rec, ok
}

// Len returns the number of stored records.
func (kb *KnowledgeBase) Len() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.records)
}

// ListRecords returns a snapshot of all records ordered by catalog number.
func (kb *KnowledgeBase) ListRecords() []model.TleRecord {
	kb.mu.RLock()
	res := make([]model.TleRecord, 0, len(kb.records))
	for _, rec := range kb.records {
		res = append(res, rec)
	}
	kb.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool { return res[i].CatalogNumber < res[j].CatalogNumber })
	return res
}

// Contiguous reports whether the stored catalog numbers are exactly 1..Len().
func (kb *KnowledgeBase) Contiguous() bool {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	for i := 1; i <= len(kb.records); i++ {
		if _, ok := kb.records[i]; !ok {
			return false
		}
	}
	return true
}

// Subscribe registers a callback for KB events. It returns an unsubscribe function.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	id := kb.next
	kb.next++
	kb.subs[id] = fn

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		delete(kb.subs, id)
	}
}
