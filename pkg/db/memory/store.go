// Package memory is an in-process storage engine with the same optimistic
// concurrency contract as the Mongo repositories. Writes carry a Check that
// is evaluated when the write is staged and again, under the store lock, when
// the surrounding transaction commits. A transaction whose checks no longer
// hold at commit time applies nothing.
package memory

import (
	"context"
	"sync"
	"tms/pkg/db"
)

// View is a read-only picture of the store as seen by one write.
type View interface {
	Get(table, id string) (any, bool)
	Scan(table string, fn func(id string, value any) bool)
}

// Check validates a write against the current view. It returns nil when the
// write may proceed.
type Check func(v View) error

type Store struct {
	mu     sync.RWMutex
	tables map[string]map[string]any
}

func New() *Store {
	return &Store{tables: make(map[string]map[string]any)}
}

type txKey struct{}

type write struct {
	table string
	id    string
	value any
	check Check
}

type tx struct {
	writes []write
	staged map[string]map[string]any
}

func (t *tx) stage(w write) {
	t.writes = append(t.writes, w)
	if t.staged[w.table] == nil {
		t.staged[w.table] = make(map[string]any)
	}
	t.staged[w.table][w.id] = w.value
}

func txFrom(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

type overlay struct {
	committed map[string]map[string]any
	staged    map[string]map[string]any
}

func (o overlay) Get(table, id string) (any, bool) {
	if v, ok := o.staged[table][id]; ok {
		return v, true
	}
	v, ok := o.committed[table][id]
	return v, ok
}

func (o overlay) Scan(table string, fn func(id string, value any) bool) {
	staged := o.staged[table]
	for id, v := range o.committed[table] {
		if _, shadowed := staged[id]; shadowed {
			continue
		}
		if !fn(id, v) {
			return
		}
	}
	for id, v := range staged {
		if !fn(id, v) {
			return
		}
	}
}

func (s *Store) view(ctx context.Context) overlay {
	o := overlay{committed: s.tables}
	if t := txFrom(ctx); t != nil {
		o.staged = t.staged
	}
	return o
}

// Get returns the value visible to ctx: staged writes of the caller's
// transaction first, committed state otherwise.
func (s *Store) Get(ctx context.Context, table, id string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view(ctx).Get(table, id)
}

// Scan iterates every value visible to ctx in unspecified order. fn must not
// call back into the store.
func (s *Store) Scan(ctx context.Context, table string, fn func(id string, value any) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.view(ctx).Scan(table, fn)
}

// Put writes value under id. Inside a transaction the write is staged until
// commit; otherwise it is applied immediately. check may be nil.
func (s *Store) Put(ctx context.Context, table, id string, value any, check Check) error {
	w := write{table: table, id: id, value: value, check: check}

	if t := txFrom(ctx); t != nil {
		s.mu.RLock()
		err := runCheck(w, s.view(ctx))
		s.mu.RUnlock()
		if err != nil {
			return err
		}
		t.stage(w)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := runCheck(w, overlay{committed: s.tables}); err != nil {
		return err
	}
	s.apply(w.table, w.id, w.value)
	return nil
}

func runCheck(w write, v View) error {
	if w.check == nil {
		return nil
	}
	return w.check(v)
}

func (s *Store) apply(table, id string, value any) {
	if s.tables[table] == nil {
		s.tables[table] = make(map[string]any)
	}
	s.tables[table][id] = value
}

// ExecuteTransaction always opens a fresh transaction, even when ctx already
// carries one, so that a nested call commits independently of its parent.
func (s *Store) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	t := &tx{staged: make(map[string]map[string]any)}
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}
	return s.commit(t)
}

func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := &tx{staged: make(map[string]map[string]any)}
	for _, w := range t.writes {
		if err := runCheck(w, overlay{committed: s.tables, staged: pending.staged}); err != nil {
			return err
		}
		pending.stage(w)
	}

	for table, rows := range pending.staged {
		for id, v := range rows {
			s.apply(table, id, v)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

var _ db.TransactionManager = (*Store)(nil)

// MustNotExist rejects a write when id is already present in table.
func MustNotExist(table, id string, err error) Check {
	return func(v View) error {
		if _, ok := v.Get(table, id); ok {
			return err
		}
		return nil
	}
}

// Expect rejects a write unless the current value of id satisfies pred. A
// missing record fails with db.ErrVersionConflict as well: it was read before
// and is gone now.
func Expect(table, id string, pred func(current any) bool) Check {
	return func(v View) error {
		cur, ok := v.Get(table, id)
		if !ok || !pred(cur) {
			return db.ErrVersionConflict
		}
		return nil
	}
}

// All combines checks; the first failure wins.
func All(checks ...Check) Check {
	return func(v View) error {
		for _, c := range checks {
			if c == nil {
				continue
			}
			if err := c(v); err != nil {
				return err
			}
		}
		return nil
	}
}

// Page applies offset and limit to an already ordered result set.
func Page[T any](items []T, limit int, offset int64) []T {
	offset = max(0, offset)
	if offset >= int64(len(items)) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
