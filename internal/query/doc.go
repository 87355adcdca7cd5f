// Package query turns the position history into API response payloads.
//
// Every operation is a read-only projection over one consistent view of the
// history ring: a count and the last_update derived from it always describe
// the same instant.
package query
