package network

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stick-arena/arena-server/internal/game"
)

func newTestHub(t *testing.T) (*Handler, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	h := NewHandler(ctx, game.DefaultSettings(), 30*time.Second)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))

	t.Cleanup(func() {
		srv.Close()
		h.Shutdown()
		cancel()
	})
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil scans inbound frames until one of the wanted kind arrives.
func readUntil(t *testing.T, conn *websocket.Conn, kind string, timeout time.Duration) Message {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		conn.SetReadDeadline(deadline)
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", kind)
		if msg.Type == kind {
			return msg
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, kind string, data any) {
	t.Helper()
	payload, err := encodeMessage(kind, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))
}

// TestJoinHandshake tests room:joined and the initial crate listing
func TestJoinHandshake(t *testing.T) {
	h, srv := newTestHub(t)
	conn := dial(t, srv)

	joined := readUntil(t, conn, MsgRoomJoined, 2*time.Second)
	var joinData struct {
		PlayerID string                `json:"playerId"`
		RoomID   string                `json:"roomId"`
		Players  []game.PlayerSnapshot `json:"players"`
	}
	require.NoError(t, json.Unmarshal(joined.Data, &joinData))
	assert.NotEmpty(t, joinData.PlayerID)
	assert.NotEmpty(t, joinData.RoomID)
	assert.Len(t, joinData.Players, 1)

	crates := readUntil(t, conn, MsgWeaponSpawned, 2*time.Second)
	var crateData struct {
		Crates []game.CrateSnapshot `json:"crates"`
	}
	require.NoError(t, json.Unmarshal(crates.Data, &crateData))
	assert.Len(t, crateData.Crates, 4)

	assert.Equal(t, 1, h.ClientCount())
}

// TestInputAcknowledged tests the input:state → player:move sequence ack loop
func TestInputAcknowledged(t *testing.T) {
	_, srv := newTestHub(t)
	conn := dial(t, srv)

	joined := readUntil(t, conn, MsgRoomJoined, 2*time.Second)
	var joinData struct {
		PlayerID string `json:"playerId"`
	}
	require.NoError(t, json.Unmarshal(joined.Data, &joinData))

	send(t, conn, MsgInputState, InputStateData{Right: true, Sequence: 42})

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		move := readUntil(t, conn, MsgPlayerMove, 3*time.Second)
		var moveData struct {
			LastProcessed map[string]uint64 `json:"lastProcessedSequence"`
		}
		require.NoError(t, json.Unmarshal(move.Data, &moveData))
		if moveData.LastProcessed[joinData.PlayerID] == 42 {
			return
		}
	}
	t.Fatal("input sequence 42 was never acknowledged")
}

// TestShootProducesProjectileAndWeaponState tests the fire round trip
func TestShootProducesProjectileAndWeaponState(t *testing.T) {
	_, srv := newTestHub(t)
	conn := dial(t, srv)
	readUntil(t, conn, MsgRoomJoined, 2*time.Second)

	send(t, conn, MsgPlayerShoot, PlayerShootData{AimAngle: 0})

	spawn := readUntil(t, conn, MsgProjectileSpawn, 2*time.Second)
	var pr game.ProjectileSnapshot
	require.NoError(t, json.Unmarshal(spawn.Data, &pr))
	assert.Equal(t, game.WeaponPistol, pr.WeaponType)

	state := readUntil(t, conn, MsgWeaponState, 2*time.Second)
	var info game.WeaponInfo
	require.NoError(t, json.Unmarshal(state.Data, &info))
	assert.Equal(t, 11, info.CurrentAmmo)
}

// TestPeerLeaveBroadcast tests player:left delivery to remaining members
func TestPeerLeaveBroadcast(t *testing.T) {
	h, srv := newTestHub(t)

	conn1 := dial(t, srv)
	readUntil(t, conn1, MsgRoomJoined, 2*time.Second)

	conn2 := dial(t, srv)
	joined2 := readUntil(t, conn2, MsgRoomJoined, 2*time.Second)
	var joinData struct {
		PlayerID string `json:"playerId"`
	}
	require.NoError(t, json.Unmarshal(joined2.Data, &joinData))

	conn2.Close()

	left := readUntil(t, conn1, MsgPlayerLeft, 3*time.Second)
	var leftData struct {
		PlayerID string `json:"playerId"`
	}
	require.NoError(t, json.Unmarshal(left.Data, &leftData))
	assert.Equal(t, joinData.PlayerID, leftData.PlayerID)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}

// TestShutdownDeliversRoomClosing tests that the farewell frame is flushed
// before the socket drops
func TestShutdownDeliversRoomClosing(t *testing.T) {
	h, srv := newTestHub(t)
	conn := dial(t, srv)
	readUntil(t, conn, MsgRoomJoined, 2*time.Second)

	h.Shutdown()

	msg := readUntil(t, conn, MsgRoomClosing, 2*time.Second)
	assert.Equal(t, MsgRoomClosing, msg.Type)
}

// TestUnknownMessageDoesNotKillConnection tests protocol error tolerance
func TestUnknownMessageDoesNotKillConnection(t *testing.T) {
	_, srv := newTestHub(t)
	conn := dial(t, srv)
	readUntil(t, conn, MsgRoomJoined, 2*time.Second)

	send(t, conn, "totally:bogus", nil)

	// Connection survives a single stray frame; normal traffic continues.
	send(t, conn, MsgInputState, InputStateData{Up: true, Sequence: 1})
	readUntil(t, conn, MsgPlayerMove, 3*time.Second)
}
