// Package stream pushes newly acquired positions to WebSocket subscribers.
//
// A Hub is a poller.PositionHandler. Each position is encoded once and
// offered to every subscriber without blocking; a subscriber whose buffer
// is full is disconnected so a slow client can never stall acquisition.
// On connect a subscriber first receives the latest retained position.
package stream
