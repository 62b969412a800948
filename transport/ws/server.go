package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Dispatcher answers one decoded request frame the way server.Node's
// HTTP routes do, without requiring this package to import the server
// package (server.Node implements this interface structurally).
type Dispatcher interface {
	Dispatch(ctx context.Context, method, path string, body []byte) (status int, respBody []byte)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades incoming connections and serves every request
// frame received on them by calling into a Dispatcher, writing back a
// correlated response frame. Each connection serves its frames
// concurrently; only the write side is serialized.
type Handler struct {
	dispatcher Dispatcher
}

// NewHandler builds a WebSocket handler delegating to dispatcher.
func NewHandler(dispatcher Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	var wg sync.WaitGroup

	for {
		var frame requestFrame
		if err := conn.ReadJSON(&frame); err != nil {
			break
		}

		wg.Add(1)
		go func(frame requestFrame) {
			defer wg.Done()
			status, body := h.dispatcher.Dispatch(r.Context(), frame.Method, frame.Path, frame.Body)

			resp := responseFrame{ID: frame.ID, Status: status, Body: body}

			writeMu.Lock()
			_ = conn.WriteJSON(resp)
			writeMu.Unlock()
		}(frame)
	}

	wg.Wait()
}
