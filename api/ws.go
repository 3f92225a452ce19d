package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type message struct {
	Event   string `json:"event"`
	Content []byte `json:"content"`
}

func (m *message) Bytes() []byte {
	payload := make(map[string]interface{})
	payload["event"] = m.Event
	var contentAsJSObject map[string]interface{}
	// convert bytes to JSON serializable object so that it is sent as JSON
	err := json.Unmarshal(m.Content, &contentAsJSObject)
	if err != nil {
		// if message content can't be represented as JSON then send string
		payload["content"] = string(m.Content)
	} else {
		payload["content"] = contentAsJSObject
	}
	b, _ := json.Marshal(payload)
	return b
}

// WebSocketHub maintains the set of active dashboard clients and broadcasts mission and
// drone events to all of them.
type WebSocketHub struct {
	clients    map[*WebSocketClient]bool
	broadcast  chan message
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
}

func newWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		broadcast:  make(chan message),
		register:   make(chan *WebSocketClient),
		unregister: make(chan *WebSocketClient),
		clients:    make(map[*WebSocketClient]bool),
	}
}

func (h *WebSocketHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message.Bytes():
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// WebSocketClient is a middleman between the websocket connection and the hub.
type WebSocketClient struct {
	hub  *WebSocketHub
	conn *websocket.Conn
	send chan []byte
}

// upgrader specifies parameters for upgrading an HTTP connection to a WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (a *API) initWebSocket() {
	ws := newWebSocketHub()
	a.ws = ws.broadcast
	go ws.run()

	a.router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {

		// upgrade from http to ws protocol
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error(err)
			return
		}

		client := &WebSocketClient{hub: ws, conn: conn, send: make(chan []byte, 256)}
		client.hub.register <- client

		// allow collection of memory referenced by the caller by doing all work in new goroutines
		go client.writePump()
		go client.readPump()

		a.ws <- message{"notice", []byte("New client connected")}
	})
}

// readPump pumps messages from the websocket connection to the hub.
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		c.hub.broadcast <- message{"notice", msg}
	}
}

// writePump pumps messages from the hub to the websocket connection.
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(50 * time.Second) // must be more frequent than read deadline
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
