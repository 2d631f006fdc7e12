package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"carpool/internal/carpool-service/adapters/driver/myhttp/middleware"
	websocketdto "carpool/internal/carpool-service/core/domain/websocket_dto"
	"carpool/internal/mylogger"
)

var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ClientList is a map used to help manage a map of clients
type ClientList map[*Client]bool

// Dispatcher fans live notification events out to connected users. A user
// may hold several connections (phone plus browser); every one gets the
// event.
type Dispatcher struct {
	clients ClientList
	sync.RWMutex
	log mylogger.Logger
}

func NewDispatcher(log mylogger.Logger) *Dispatcher {
	return &Dispatcher{
		clients: make(ClientList),
		log:     log,
	}
}

// Handler upgrades the request into a persistent websocket connection for
// the authenticated user. Auth middleware must run before it.
func (d *Dispatcher) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := d.log.Action("wsHandler")

		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		conn, err := websocketUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("cannot upgrade", err)
			return
		}

		client := NewClient(r.Context(), conn, d, actor.ID)
		d.AddClient(client)
		go client.ReadMessage()
		go client.WriteMessage()

		log.Info("websocket connected", "user_id", actor.ID)
	}
}

// WriteToUser delivers an event to every live connection of the user.
// A client whose egress buffer is full is skipped rather than blocked on.
func (d *Dispatcher) WriteToUser(userID string, event websocketdto.Event) {
	d.RLock()
	defer d.RUnlock()

	for client := range d.clients {
		if client.userID != userID {
			continue
		}
		select {
		case client.egress <- event:
		default:
			d.log.Action("writeToUser").Warn("egress full, dropping event", "user_id", userID)
		}
	}
}

func (d *Dispatcher) AddClient(client *Client) {
	d.Lock()
	defer d.Unlock()

	d.clients[client] = true
}

func (d *Dispatcher) RemoveClient(client *Client) {
	d.Lock()
	defer d.Unlock()

	if _, ok := d.clients[client]; ok {
		client.conn.Close()
		delete(d.clients, client)
	}
}
