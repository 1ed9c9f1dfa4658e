package source

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCapacity is the number of workbooks a Store keeps open.
const DefaultCapacity = 16

// Store keeps recently opened workbooks in front of a Resolver. It holds at
// most capacity workbooks and drops the oldest one when full. Concurrent
// acquisitions of the same id share one resolution.
//
// Workbooks are lent out as Handles. A dropped workbook is closed once its
// last handle is released.
type Store struct {
	resolver Resolver
	capacity int

	mu    sync.Mutex
	order []int
	files map[int]*entry
	group singleflight.Group
}

type entry struct {
	id      int
	file    *excelize.File
	refs    int
	evicted bool
	closed  bool
}

// Handle is a workbook borrowed from a Store. Release must be called when
// the holder is done reading File.
type Handle struct {
	File *excelize.File

	store *Store
	entry *entry
	once  sync.Once
}

// Release returns the workbook to the store. Extra calls are no-ops.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.store.release(h.entry)
	})
}

// NewStore returns a Store over r. A capacity below 1 uses
// DefaultCapacity.
func NewStore(r Resolver, capacity int) *Store {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Store{
		resolver: r,
		capacity: capacity,
		files:    make(map[int]*entry),
	}
}

// Acquire lends out the workbook of document id, resolving it on a miss.
func (s *Store) Acquire(ctx context.Context, id int) (*Handle, error) {
	for {
		if h, ok := s.hold(id, nil); ok {
			return h, nil
		}

		v, err, _ := s.group.Do(strconv.Itoa(id), func() (any, error) {
			f, err := s.resolver.Open(ctx, id)
			if err != nil {
				return nil, err
			}
			return s.insert(id, f), nil
		})
		if err != nil {
			return nil, err
		}
		if h, ok := s.hold(id, v.(*entry)); ok {
			return h, nil
		}
		// Dropped and closed before this caller could hold it.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

// Resolve reports whether document id can be opened.
func (s *Store) Resolve(ctx context.Context, id int) error {
	h, err := s.Acquire(ctx, id)
	if err != nil {
		return err
	}
	h.Release()
	return nil
}

// Len returns the number of cached workbooks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Close drops every cached workbook. Idle workbooks are closed now, the
// others when their handles are released.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for id, e := range s.files {
		delete(s.files, id)
		if err := s.drop(e); err != nil {
			errs = append(errs, err)
		}
	}
	s.order = nil
	return errors.Join(errs...)
}

// hold takes a reference on e, or on the cached entry of id when e is nil.
func (s *Store) hold(id int, e *entry) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e == nil {
		var ok bool
		if e, ok = s.files[id]; !ok {
			return nil, false
		}
	}
	if e.closed {
		return nil, false
	}
	e.refs++
	return &Handle{File: e.file, store: s, entry: e}, true
}

func (s *Store) release(e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.refs--
	if e.refs == 0 && e.evicted && !e.closed {
		s.closeEntry(e)
	}
}

func (s *Store) insert(id int, f *excelize.File) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.files[id]; ok {
		if err := f.Close(); err != nil {
			slog.Warn("Failed to close duplicate workbook", "id", id, "error", err)
		}
		return e
	}
	for len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		if old, ok := s.files[oldest]; ok {
			delete(s.files, oldest)
			s.drop(old)
		}
	}
	e := &entry{id: id, file: f}
	s.files[id] = e
	s.order = append(s.order, id)
	return e
}

// drop marks e evicted and closes it when no handle holds it. Callers hold
// s.mu.
func (s *Store) drop(e *entry) error {
	e.evicted = true
	if e.refs > 0 {
		slog.Debug("Deferring close of borrowed workbook", "id", e.id, "refs", e.refs)
		return nil
	}
	return s.closeEntry(e)
}

func (s *Store) closeEntry(e *entry) error {
	e.closed = true
	err := e.file.Close()
	if err != nil {
		slog.Warn("Failed to close workbook", "id", e.id, "error", err)
	}
	return err
}
