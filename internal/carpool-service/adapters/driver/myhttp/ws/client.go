package ws

import (
	"context"

	"github.com/gorilla/websocket"

	websocketdto "carpool/internal/carpool-service/core/domain/websocket_dto"
)

type Client struct {
	ctx    context.Context
	conn   *websocket.Conn
	dis    *Dispatcher
	egress chan websocketdto.Event
	userID string
}

func NewClient(ctx context.Context, conn *websocket.Conn, dis *Dispatcher, userID string) *Client {
	return &Client{
		ctx:    ctx,
		conn:   conn,
		dis:    dis,
		egress: make(chan websocketdto.Event, 16),
		userID: userID,
	}
}

// ReadMessage drains inbound frames. The stream is one-way; clients send
// nothing of interest, but the read loop is what notices a dropped peer.
func (c *Client) ReadMessage() {
	defer c.dis.RemoveClient(c)

	c.conn.SetReadLimit(1024)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.dis.log.Action("readMessage").Warn("unexpected close", "user_id", c.userID)
			}
			return
		}
	}
}

func (c *Client) WriteMessage() {
	for {
		select {
		case <-c.ctx.Done():
			c.dis.RemoveClient(c)
			return
		case event, ok := <-c.egress:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				c.dis.RemoveClient(c)
				return
			}
		}
	}
}
