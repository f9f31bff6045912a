package chat

import "sync"

// Subscriber is the minimal interface the hub needs from a connection:
// the ability to take a broadcast payload. Deliver must not block; it
// returns false when the subscriber can no longer accept messages.
type Subscriber interface {
	Deliver(payload []byte) bool
}

// Hub manages the active subscribers of each chat room. It maps room ids
// to one or more live connections so a persisted message can be pushed
// to every member currently attached to that room, including the
// sender's own other connections.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[int64]Subscriber
	nextID int64
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[int64]Subscriber)}
}

// Register adds a subscriber to a room and returns a connection id used
// to unregister it when the connection closes.
func (h *Hub) Register(roomID string, s Subscriber) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[int64]Subscriber)
	}

	h.nextID++
	id := h.nextID
	h.rooms[roomID][id] = s
	return id
}

// Unregister removes a previously-registered subscriber from a room.
func (h *Hub) Unregister(roomID string, id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.rooms[roomID]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Broadcast pushes payload to every current subscriber of the room.
// Delivery is best effort: a subscriber that cannot take the payload is
// dropped from the room so one stalled connection never holds up the
// rest of the members.
func (h *Hub) Broadcast(roomID string, payload []byte) {
	h.mu.RLock()
	subs := h.rooms[roomID]
	targets := make(map[int64]Subscriber, len(subs))
	for id, s := range subs {
		targets[id] = s
	}
	h.mu.RUnlock()

	var failedIDs []int64
	for id, s := range targets {
		if !s.Deliver(payload) {
			failedIDs = append(failedIDs, id)
		}
	}

	for _, id := range failedIDs {
		h.Unregister(roomID, id)
	}
}

// RoomSize reports the number of live subscribers in a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
