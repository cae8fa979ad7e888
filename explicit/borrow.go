package explicit

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// ErrBorrowConflict is wrapped by the panic value of every access that
// conflicts with a live borrow.
var ErrBorrowConflict = errors.New("explicit: borrow conflict")

// BorrowError describes a rejected access.
type BorrowError struct {
	Type   string // Layout type name
	Field  string // Field being accessed, empty for whole-buffer access
	Access string // read, write, ref or mut
	Held   string // The conflicting borrow: "ref" or "mut"
}

func (e *BorrowError) Error() string {
	target := e.Type
	if e.Field != "" {
		target += "." + e.Field
	}
	return fmt.Sprintf("explicit: %s of %s while a %s borrow is live", e.Access, target, e.Held)
}

func (e *BorrowError) Unwrap() error { return ErrBorrowConflict }

const (
	numShards = 64
	exclusive = -1
)

// shard maps an instance address to its borrow state: the number of live
// shared borrows, or exclusive.
type shard struct {
	mu    sync.Mutex
	state map[unsafe.Pointer]int
}

var (
	shards [numShards]shard
	// live counts borrows across all instances so that plain reads and
	// writes skip the table when nothing is borrowed.
	live atomic.Int64
)

func shardFor(p unsafe.Pointer) *shard {
	return &shards[(uintptr(p)>>4)%numShards]
}

func conflict(typ, field, access string, state int) {
	held := "ref"
	if state == exclusive {
		held = "mut"
	}
	panic(&BorrowError{Type: typ, Field: field, Access: access, Held: held})
}

// CheckRead panics if the instance at p is exclusively borrowed.
func CheckRead(p unsafe.Pointer, typ, field string) {
	if live.Load() == 0 {
		return
	}
	s := shardFor(p)
	s.mu.Lock()
	state := s.state[p]
	s.mu.Unlock()
	if state == exclusive {
		conflict(typ, field, "read", state)
	}
}

// CheckWrite panics if the instance at p has any live borrow.
func CheckWrite(p unsafe.Pointer, typ, field string) {
	if live.Load() == 0 {
		return
	}
	s := shardFor(p)
	s.mu.Lock()
	state := s.state[p]
	s.mu.Unlock()
	if state != 0 {
		conflict(typ, field, "write", state)
	}
}

// Shared registers a shared borrow of the instance at p and returns its
// release func. It panics if the instance is exclusively borrowed.
func Shared(p unsafe.Pointer, typ, field string) func() {
	s := shardFor(p)
	s.mu.Lock()
	state := s.state[p]
	if state == exclusive {
		s.mu.Unlock()
		conflict(typ, field, "ref", state)
	}
	if s.state == nil {
		s.state = make(map[unsafe.Pointer]int)
	}
	live.Add(1)
	s.state[p] = state + 1
	s.mu.Unlock()

	return releaser(func() {
		s.mu.Lock()
		if n := s.state[p] - 1; n > 0 {
			s.state[p] = n
		} else {
			delete(s.state, p)
		}
		s.mu.Unlock()
	})
}

// Exclusive registers an exclusive borrow of the instance at p and returns
// its release func. It panics if the instance has any live borrow.
func Exclusive(p unsafe.Pointer, typ, field string) func() {
	s := shardFor(p)
	s.mu.Lock()
	if state := s.state[p]; state != 0 {
		s.mu.Unlock()
		conflict(typ, field, "mut", state)
	}
	if s.state == nil {
		s.state = make(map[unsafe.Pointer]int)
	}
	live.Add(1)
	s.state[p] = exclusive
	s.mu.Unlock()

	return releaser(func() {
		s.mu.Lock()
		delete(s.state, p)
		s.mu.Unlock()
	})
}

// releaser makes fn idempotent and keeps the live counter in step.
func releaser(fn func()) func() {
	var done atomic.Bool
	return func() {
		if done.Swap(true) {
			return
		}
		fn()
		live.Add(-1)
	}
}

// Borrows reports the borrow state of the instance at p: the number of live
// shared borrows and whether it is exclusively borrowed.
func Borrows(p unsafe.Pointer) (shared int, mut bool) {
	s := shardFor(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state[p]
	if state == exclusive {
		return 0, true
	}
	return state, false
}
