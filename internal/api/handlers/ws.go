package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/se1907800-collab/mediavalut/internal/selection"
	ws "github.com/se1907800-collab/mediavalut/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The passphrase gate already ran in the auth middleware.
	CheckOrigin: func(*http.Request) bool { return true },
}

// gestureMessage is one pointer/touch event from a client.
type gestureMessage struct {
	Event  selection.Event   `json:"event"`
	Target selection.NodeRef `json:"target"`
}

// WebSocket upgrades the connection and runs the gesture loop. Each
// connection drives its own selection controller; a completed drop is
// applied as one batch move and persisted.
func (h *Handler) WebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	client := &ws.Client{Conn: conn, Controller: selection.New()}
	h.hub.RegisterClient(client)
	defer func() {
		h.hub.UnregisterClient(client)
		conn.Close()
	}()

	// The controller is not safe for concurrent use; ctrlMu covers the
	// read loop and the long-press timer below.
	var ctrlMu sync.Mutex

	for {
		var msg gestureMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		ctrlMu.Lock()
		drop := client.Controller.Handle(msg.Event, msg.Target)
		state := selectionState(client.Controller)
		ctrlMu.Unlock()

		if drop != nil {
			if err := h.lib.BatchMove(drop.Targets, drop.DestID); err != nil {
				h.hub.Send(client, &ws.Notification{
					Type:    ws.OperationError,
					Message: err.Error(),
				})
			} else {
				h.persist(c)
			}
		}

		h.hub.Send(client, state)

		// A held press produces no further events, so push the
		// selection-mode transition the moment the timer elapses
		// instead of waiting for the next message.
		if msg.Event == selection.PointerDown {
			time.AfterFunc(client.Controller.Delay, func() {
				ctrlMu.Lock()
				changed := client.Controller.Tick()
				st := selectionState(client.Controller)
				ctrlMu.Unlock()
				if changed {
					h.hub.Send(client, st)
				}
			})
		}
	}
}

// selectionState reflects the controller back to its client so the
// rendering layer can subscribe to state instead of inspecting the DOM.
func selectionState(ctrl *selection.Controller) *ws.Notification {
	data := map[string]interface{}{
		"mode":     ctrl.Mode().String(),
		"selected": ctrl.Selected(),
	}
	if candidate := ctrl.DropCandidate(); candidate != nil {
		data["drop_candidate"] = candidate
	}
	return &ws.Notification{Type: ws.SelectionState, Data: data}
}
