// Package store owns decoded frame content on behalf of the frame ring.
// The ring only ever sees opaque handles; payload bytes live here until
// the host releases the handle the ring reported on eviction or clear.
package store

import (
	"errors"
	"sync"
)

// ErrHandleNotFound is returned when releasing a handle that is not (or no
// longer) present. A correct host releases every handle exactly once, so
// hitting this usually means a double release.
var ErrHandleNotFound = errors.New("content handle not found")

// Content is one frame's externally-owned payload.
type Content struct {
	Data   []byte
	Width  int
	Height int
}

// Store maps opaque handles to frame content. Unlike the ring it is safe
// for concurrent use: the decode and display sides of a host touch it from
// different goroutines.
type Store struct {
	mu         sync.RWMutex
	nextHandle uint64
	entries    map[uint64]Content
	bytesHeld  int64
	released   uint64
}

// New creates an empty content store. Handles start at 1 so the zero
// handle never refers to real content.
func New() *Store {
	return &Store{
		nextHandle: 1,
		entries:    make(map[uint64]Content),
	}
}

// Put stores content and returns its newly-allocated handle.
func (s *Store) Put(c Content) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle := s.nextHandle
	s.nextHandle++
	s.entries[handle] = c
	s.bytesHeld += int64(len(c.Data))
	return handle
}

// Get returns the content for a handle.
func (s *Store) Get(handle uint64) (Content, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.entries[handle]
	return c, ok
}

// Release frees the content for a handle. Releasing an unknown handle
// returns ErrHandleNotFound.
func (s *Store) Release(handle uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.entries[handle]
	if !ok {
		return ErrHandleNotFound
	}
	delete(s.entries, handle)
	s.bytesHeld -= int64(len(c.Data))
	s.released++
	return nil
}

// ReleaseAll frees a batch of handles, typically the result of a ring
// clear. It returns the number actually released.
func (s *Store) ReleaseAll(handles []uint64) int {
	released := 0
	for _, h := range handles {
		if err := s.Release(h); err == nil {
			released++
		}
	}
	return released
}

// Len returns the number of held frames.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// BytesHeld returns the total payload bytes currently held.
func (s *Store) BytesHeld() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bytesHeld
}

// Released returns the cumulative count of released handles.
func (s *Store) Released() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.released
}
