package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// TestConcurrentWritesToOneClient drives Broadcast and Send from many
// goroutines at once against a single live connection. The connection
// allows only one writer at a time, so this fails under the race detector
// unless the manager serializes per-client writes.
func TestConcurrentWritesToOneClient(t *testing.T) {
	m := NewManager()
	upgrader := websocket.Upgrader{}

	registered := make(chan *Client, 1)
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		client := &Client{Conn: conn}
		m.RegisterClient(client)
		registered <- client
		<-done
		m.UnregisterClient(client)
		conn.Close()
	}))
	defer srv.Close()
	defer close(done)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Drain inbound frames so the server side never blocks on a full
	// buffer; a corrupted frame surfaces here as a read error.
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				readErr <- err
				return
			}
		}
	}()

	client := <-registered

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if n%2 == 0 {
					m.BroadcastTreeChanged(int64(j))
				} else {
					m.Send(client, &Notification{Type: SelectionState})
				}
			}
		}(i)
	}
	wg.Wait()

	select {
	case err := <-readErr:
		t.Fatalf("client read failed mid-broadcast: %v", err)
	default:
	}
}
