package game

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// RoomManager assigns connections to rooms. Joins fill existing rooms in
// creation order (FIFO) before a new room is created; a room is torn down
// the moment its last player leaves, and its id is never reused.
type RoomManager struct {
	mu         sync.Mutex
	rooms      map[string]*Room
	order      []string
	playerRoom map[string]*Room

	settings Settings
	listener RoomListener
	ctx      context.Context
}

// NewRoomManager creates a manager that starts rooms under ctx.
func NewRoomManager(ctx context.Context, settings Settings, listener RoomListener) *RoomManager {
	return &RoomManager{
		rooms:      make(map[string]*Room),
		playerRoom: make(map[string]*Room),
		settings:   settings,
		listener:   listener,
		ctx:        ctx,
	}
}

// AddPlayer places the player in the first room with capacity, creating and
// starting a new room when none has space. Returns the room and the created
// player state.
func (rm *RoomManager) AddPlayer(playerID, name string) (*Room, *PlayerState) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	var room *Room
	for _, id := range rm.order {
		candidate := rm.rooms[id]
		if candidate.PlayerCount() < rm.settings.RoomCapacity && !candidate.Match().IsEnded() {
			room = candidate
			break
		}
	}

	if room == nil {
		room = NewRoom(uuid.New().String(), rm.settings, rm.listener)
		rm.rooms[room.ID] = room
		rm.order = append(rm.order, room.ID)
		room.Start(rm.ctx)
		log.Printf("room %s created", room.ID)
	}

	player := room.AddPlayer(playerID, name)
	rm.playerRoom[playerID] = room
	return room, player
}

// RemovePlayer detaches the player and tears the room down if it emptied.
// Teardown fully stops the tick driver and purges the player index before
// the slot can be reused; identifiers never carry across room generations.
func (rm *RoomManager) RemovePlayer(playerID string) {
	rm.mu.Lock()
	room, ok := rm.playerRoom[playerID]
	if !ok {
		rm.mu.Unlock()
		return
	}
	delete(rm.playerRoom, playerID)
	room.RemovePlayer(playerID)

	empty := room.PlayerCount() == 0
	if empty {
		delete(rm.rooms, room.ID)
		for i, id := range rm.order {
			if id == room.ID {
				rm.order = append(rm.order[:i], rm.order[i+1:]...)
				break
			}
		}
	}
	rm.mu.Unlock()

	// Stop outside the lock: Stop waits for the tick goroutine, which may
	// be emitting events at this moment.
	if empty {
		room.Stop()
		log.Printf("room %s released (empty)", room.ID)
	}
}

// GetRoomByPlayerID returns the room a player currently belongs to.
func (rm *RoomManager) GetRoomByPlayerID(playerID string) (*Room, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	room, ok := rm.playerRoom[playerID]
	return room, ok
}

// Rooms returns all live rooms.
func (rm *RoomManager) Rooms() []*Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make([]*Room, 0, len(rm.order))
	for _, id := range rm.order {
		out = append(out, rm.rooms[id])
	}
	return out
}

// RoomCount returns the number of live rooms.
func (rm *RoomManager) RoomCount() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.rooms)
}

// PlayerCount returns the number of players across all rooms.
func (rm *RoomManager) PlayerCount() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.playerRoom)
}

// Shutdown stops every room.
func (rm *RoomManager) Shutdown() {
	rm.mu.Lock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		rooms = append(rooms, room)
	}
	rm.rooms = make(map[string]*Room)
	rm.order = nil
	rm.playerRoom = make(map[string]*Room)
	rm.mu.Unlock()

	for _, room := range rooms {
		room.Stop()
	}
}
