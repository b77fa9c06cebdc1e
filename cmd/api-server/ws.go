package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/juniorleague/api-server/internals/livebid"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSDetails is what a client subscribed to. PlayerID 0 follows every player.
type WSDetails struct {
	PlayerID uint
	send     chan []byte
}

func (app *App) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	details := &WSDetails{send: make(chan []byte, sendBuffer)}
	if raw := r.URL.Query().Get("player_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			http.Error(w, "player_id must be a number", http.StatusBadRequest)
			return
		}
		details.PlayerID = uint(id)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.Log.Warn("Could not open websocket connection", zap.Error(err))
		return
	}

	app.ClientsM.Lock()
	app.WS[conn] = details
	app.ClientsM.Unlock()

	go app.writeLoop(conn, details.send)
	defer app.dropClient(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writeLoop is the only writer on conn.
func (app *App) writeLoop(conn *websocket.Conn, send <-chan []byte) {
	defer conn.Close()
	for data := range send {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			app.Log.Debug("Websocket write failed", zap.Error(err))
			return
		}
	}
}

func (app *App) dropClient(conn *websocket.Conn) {
	app.ClientsM.Lock()
	app.removeClientLocked(conn)
	app.ClientsM.Unlock()
	conn.Close()
}

// removeClientLocked needs ClientsM held.
func (app *App) removeClientLocked(conn *websocket.Conn) {
	if details, ok := app.WS[conn]; ok {
		delete(app.WS, conn)
		close(details.send)
	}
}

// BidPicker queues a bid event for the clients following its player. Clients
// whose queue is full are disconnected.
func (app *App) BidPicker(data []byte) {
	var event livebid.BidEvent
	if err := json.Unmarshal(data, &event); err != nil {
		app.Log.Warn("Dropping malformed bid event", zap.Error(err))
		return
	}

	var slow []*websocket.Conn
	app.ClientsM.Lock()
	for conn, details := range app.WS {
		if details.PlayerID != 0 && details.PlayerID != event.PlayerID {
			continue
		}
		select {
		case details.send <- data:
		default:
			app.removeClientLocked(conn)
			slow = append(slow, conn)
		}
	}
	app.ClientsM.Unlock()

	for _, conn := range slow {
		app.Log.Info("Dropping slow websocket client", zap.String("remote", conn.RemoteAddr().String()))
		conn.Close()
	}
}
