package wsrouter

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error

// WSRouter dispatches typed JSON messages read from a websocket connection
// to registered handlers. Used on both ends: the relay serves member
// connections with it and the jam client routes inbound room events.
type WSRouter struct {
	routes         map[string]HandlerFunc
	unknownHandler HandlerFunc
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

// HandleUnknown installs a fallback for message types with no route.
func (r *WSRouter) HandleUnknown(handler HandlerFunc) {
	r.unknownHandler = handler
}

// ServeConn reads messages until the connection or the context dies. Handler
// errors do not stop the loop; read errors do.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, exists := r.routes[msg.Type]
		if !exists {
			handler = r.unknownHandler
		}
		if handler == nil {
			continue
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)
		if err := handler(msgCtx, conn, msg.Payload); err != nil {
			conn.WriteJSON(map[string]any{
				"type": "error",
				"payload": map[string]string{
					"message": err.Error(),
				},
			})
		}
	}
}
