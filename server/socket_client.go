// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 5 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 8) / 10

	// Frames replaced in a row before the socket is considered dead (~3 seconds of ticks).
	socketFrameSkipLimit = 30

	// Non-frame messages that may back up before close.
	socketBufferSize = 16

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	debugSocket = false
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	HandshakeTimeout: time.Second,
	ReadBufferSize:   maxMessageSize,
	WriteBufferSize:  2048,
}

// SocketClient is a middleman between the websocket connection and the hub.
//
// Frames don't queue. Each one is a complete view of a tick, so an unsent Frame is replaced
// (and pooled) by the next one and a slow socket only ever falls one Frame behind.
type SocketClient struct {
	ClientData
	conn *websocket.Conn
	send chan Outbound // non-frame messages
	once sync.Once

	mu      sync.Mutex
	frame   *Frame        // newest unsent Frame
	skipped int           // Frames replaced since the writer last took one
	signal  chan struct{} // wakes writePump when frame is set
}

// Create a SocketClient from a connection
func NewSocketClient(conn *websocket.Conn) *SocketClient {
	return &SocketClient{
		conn:   conn,
		send:   make(chan Outbound, socketBufferSize),
		signal: make(chan struct{}, 1),
	}
}

func (client *SocketClient) Close() {
	close(client.send)
}

func (client *SocketClient) Data() *ClientData {
	return &client.ClientData
}

func (client *SocketClient) Destroy() {
	client.once.Do(func() {
		client.Hub.Unregister(client)
		_ = client.conn.Close()
	})
}

func (client *SocketClient) Init() {
	go client.writePump()
	go client.readPump()
}

func (client *SocketClient) Send(out Outbound) {
	if frame, ok := out.(*Frame); ok {
		client.sendFrame(frame)
		return
	}

	select {
	case client.send <- out:
	default:
		// Not responsive
		if debugSocket {
			log.Println("SocketClient is not responsive")
		}
		out.Pool()
		client.Destroy()
	}
}

func (client *SocketClient) sendFrame(frame *Frame) {
	client.mu.Lock()
	stale := client.frame
	client.frame = frame
	if stale != nil {
		client.skipped++
	}
	skipped := client.skipped
	client.mu.Unlock()

	if stale != nil {
		if debugSocket {
			log.Println("SocketClient replacing unsent frame", stale.Tick, "with", frame.Tick)
		}
		stale.Pool()

		if skipped > socketFrameSkipLimit {
			client.Destroy()
			return
		}
	}

	select {
	case client.signal <- struct{}{}:
	default:
		// Already signaled
	}
}

// takeFrame returns the newest unsent Frame, or nil if it was already taken.
func (client *SocketClient) takeFrame() *Frame {
	client.mu.Lock()
	defer client.mu.Unlock()

	frame := client.frame
	client.frame = nil
	client.skipped = 0
	return frame
}

func (client *SocketClient) readPump() {
	defer client.Destroy()
	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Println("close error:", err)
			}
			return
		}

		if err = receive(client, data, false); err != nil {
			log.Println("unmarshal error:", err.Error())
			return
		}
	}
}

// write marshals out to the connection and pools it. Panics on error.
func (client *SocketClient) write(out Outbound) {
	_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))

	w, err := client.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		panic(err)
	}

	// Wrap with Message to marshal type
	err = JSON.NewEncoder(w).Encode(Message{Data: out})
	out.Pool()
	if err != nil {
		panic(err)
	}

	if err = w.Close(); err != nil {
		panic(err)
	}
}

func (client *SocketClient) writePump() {
	pingTicker := time.NewTicker(pingPeriod)

	defer func() {
		if err := recover(); err != nil {
			if debugSocket {
				log.Println("send error:", err)
			}
		}
		pingTicker.Stop()
		client.Destroy()
	}()

	for {
		select {
		case out, ok := <-client.send:
			if !ok {
				// The hub closed the channel.
				_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = client.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			client.write(out)
		case <-client.signal:
			if frame := client.takeFrame(); frame != nil {
				client.write(frame)
			}
		case <-pingTicker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
