// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"log"
	"sync"
)

// LocalClient is an in process Client that exchanges JSON with a callback instead of a socket.
type LocalClient struct {
	ClientData
	// OnMessage is called with each JSON encoded Outbound, by the hub goroutine or one of its update workers.
	OnMessage func(data []byte)
	// OnClose is called when the Hub unregisters the client. May be nil.
	OnClose func()
	once    sync.Once
}

func (client *LocalClient) Close() {
	if client.OnClose != nil {
		client.OnClose()
	}
}

func (client *LocalClient) Data() *ClientData {
	return &client.ClientData
}

func (client *LocalClient) Destroy() {
	client.once.Do(func() {
		client.Hub.Unregister(client)
	})
}

func (client *LocalClient) Init() {}

func (client *LocalClient) Send(out Outbound) {
	buf, err := JSON.Marshal(Message{Data: out})
	out.Pool()
	if err != nil {
		panic(err)
	}

	client.OnMessage(buf)
}

// Receive decodes a JSON encoded Inbound and forwards it to the Hub, waiting if the Hub is busy.
// The client must have been registered.
func (client *LocalClient) Receive(data []byte) {
	if err := receive(client, data, true); err != nil {
		log.Println("unmarshal error:", err.Error())
	}
}
