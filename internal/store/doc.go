// Package store implements the in-memory bounded position history.
//
// A Ring holds at most Cap() items, oldest first. Appends go to the tail and
// evict from the head once the ring is full. Reads return copies taken under
// a read lock, so every result reflects one state that existed at some
// instant: never longer than the capacity, never a partially applied append.
//
// The ring is safe for one writer and any number of concurrent readers.
// Readers do not block each other; no lock is ever held across I/O.
package store
