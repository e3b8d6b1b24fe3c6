package network

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/stick-arena/arena-server/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins; the game has no credentialed state and the
		// deployment fronts this with its own origin policy.
		return true
	},
}

// Read loop protection.
const (
	maxInboundFrameBytes = 4096
	// Protocol errors tolerated before the connection is closed.
	maxProtocolErrors = 10
)

// Handler is the connection hub: it upgrades sockets, assigns players to
// rooms, pumps per-connection read/write loops and fans room events out to
// the members' outbound queues. It implements game.RoomListener.
type Handler struct {
	rooms       *game.RoomManager
	idleTimeout time.Duration

	mu          sync.RWMutex
	clients     map[string]*Client            // playerID → client
	roomClients map[string]map[string]*Client // roomID → playerID → client

	// Observability hooks; no-ops unless set.
	OnConnect    func()
	OnDisconnect func()
	OnMessage    func()
}

// NewHandler creates the hub and its room manager. Rooms started by the
// manager live under ctx.
func NewHandler(ctx context.Context, settings game.Settings, idleTimeout time.Duration) *Handler {
	h := &Handler{
		idleTimeout: idleTimeout,
		clients:     make(map[string]*Client),
		roomClients: make(map[string]map[string]*Client),
	}
	h.rooms = game.NewRoomManager(ctx, settings, h)
	return h
}

// Rooms exposes the room manager for stats endpoints and tests.
func (h *Handler) Rooms() *game.RoomManager {
	return h.rooms
}

// Shutdown enqueues room:closing to every client and stops all rooms.
func (h *Handler) Shutdown() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if payload, err := encodeMessage(MsgRoomClosing, nil); err == nil {
		for _, c := range clients {
			c.Enqueue(payload, criticalKinds[MsgRoomClosing])
		}
	}
	for _, c := range clients {
		c.Close()
	}
	h.rooms.Shutdown()
}

// HandleWebSocket upgrades the request and runs the connection until close.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	playerID := uuid.New().String()
	name := r.URL.Query().Get("name")
	if name == "" {
		name = fmt.Sprintf("stick-%s", playerID[:8])
	}

	client := NewClient(playerID, conn)
	conn.SetReadLimit(maxInboundFrameBytes)

	room, _ := h.rooms.AddPlayer(playerID, name)
	client.RoomID = room.ID

	h.mu.Lock()
	h.clients[playerID] = client
	members, ok := h.roomClients[room.ID]
	if !ok {
		members = make(map[string]*Client)
		h.roomClients[room.ID] = members
	}
	members[playerID] = client
	h.mu.Unlock()

	if h.OnConnect != nil {
		h.OnConnect()
	}
	log.Printf("client connected: %s (%s) → room %s", playerID, name, room.ID)

	go client.WriteLoop()

	h.sendRoomJoined(client, room)
	h.sendWeaponSpawns(client, room)

	h.readLoop(client, room)

	// Detach. Order matters: the room must release the player before the
	// leave broadcast so the departing client never receives it.
	h.mu.Lock()
	delete(h.clients, playerID)
	if members, ok := h.roomClients[room.ID]; ok {
		delete(members, playerID)
		if len(members) == 0 {
			delete(h.roomClients, room.ID)
		}
	}
	h.mu.Unlock()

	h.rooms.RemovePlayer(playerID)
	client.Close()

	h.broadcastToRoom(room.ID, MsgPlayerLeft, map[string]string{"playerId": playerID})

	if h.OnDisconnect != nil {
		h.OnDisconnect()
	}
	log.Printf("client disconnected: %s", playerID)
}

// readLoop deserializes inbound frames and dispatches them until the
// connection errors or idles out.
func (h *Handler) readLoop(client *Client, room *game.Room) {
	for {
		if h.idleTimeout > 0 {
			client.conn.SetReadDeadline(time.Now().Add(h.idleTimeout))
		}

		_, payload, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("read error for %s: %v", client.PlayerID, err)
			}
			return
		}

		if h.OnMessage != nil {
			h.OnMessage()
		}

		if err := h.dispatch(client, room, payload); err != nil {
			client.protocolErrors++
			log.Printf("protocol error from %s (%d/%d): %v",
				client.PlayerID, client.protocolErrors, maxProtocolErrors, err)
			if client.protocolErrors >= maxProtocolErrors {
				log.Printf("closing %s: repeated protocol errors", client.PlayerID)
				return
			}
			continue
		}
		client.protocolErrors = 0
	}
}

// sendToPlayer enqueues one message for a single player. Delivery priority
// comes from criticalKinds, never from the call site.
func (h *Handler) sendToPlayer(playerID, kind string, data any) {
	h.mu.RLock()
	client, ok := h.clients[playerID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	payload, err := encodeMessage(kind, data)
	if err != nil {
		log.Printf("encode %s: %v", kind, err)
		return
	}
	client.Enqueue(payload, criticalKinds[kind])
}

// broadcastToRoom enqueues one message for every member of a room. Delivery
// priority comes from criticalKinds, never from the call site.
func (h *Handler) broadcastToRoom(roomID, kind string, data any) {
	payload, err := encodeMessage(kind, data)
	if err != nil {
		log.Printf("encode %s: %v", kind, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.roomClients[roomID] {
		client.Enqueue(payload, criticalKinds[kind])
	}
}

func (h *Handler) sendRoomJoined(client *Client, room *game.Room) {
	h.sendToPlayer(client.PlayerID, MsgRoomJoined, map[string]any{
		"playerId": client.PlayerID,
		"roomId":   room.ID,
		"players":  room.World().PlayerSnapshots(),
		"walls":    room.World().Arena().Walls,
	})
}

func (h *Handler) sendWeaponSpawns(client *Client, room *game.Room) {
	h.sendToPlayer(client.PlayerID, MsgWeaponSpawned, map[string]any{
		"crates": room.Crates().Snapshots(),
	})
}

// ClientCount returns the number of connected clients.
func (h *Handler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
