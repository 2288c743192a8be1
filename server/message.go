// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"log"

	jsoniter "github.com/json-iterator/go"
)

type (
	// Inbound is a message from a Client, processed on the hub goroutine.
	Inbound interface {
		Process(h *Hub, client Client)
	}

	// Outbound is a message to a Client.
	Outbound interface {
		// Pool returns the contents of Outbound to their sync.Pool
		Pool()
		messageType() messageType
	}

	// Message wraps an Inbound or Outbound with its type when marshaled as
	// {"type": "...", "data": {...}}.
	Message struct {
		Data interface{}
	}

	messageJSON struct {
		Data interface{} `json:"data"`
		Type messageType `json:"type"`
	}

	messageType string

	SignedInbound struct {
		Client Client
		Inbound
	}

	// inboundDecoder reads the data of an Inbound. iter is nil if the message has no data.
	inboundDecoder func(iter *jsoniter.Iterator) Inbound
)

// inboundTypes are the valid types of inbound messages.
var inboundTypes = map[messageType]inboundDecoder{
	"addBody": func(iter *jsoniter.Iterator) Inbound {
		var in AddBody
		readInbound(iter, &in)
		return in
	},
	"moveBody": func(iter *jsoniter.Iterator) Inbound {
		var in MoveBody
		readInbound(iter, &in)
		return in
	},
	"pause": func(iter *jsoniter.Iterator) Inbound {
		var in Pause
		readInbound(iter, &in)
		return in
	},
	"removeBody": func(iter *jsoniter.Iterator) Inbound {
		var in RemoveBody
		readInbound(iter, &in)
		return in
	},
	"step": func(iter *jsoniter.Iterator) Inbound {
		var in Step
		readInbound(iter, &in)
		return in
	},
	"view": func(iter *jsoniter.Iterator) Inbound {
		var in View
		readInbound(iter, &in)
		return in
	},
}

func readInbound(iter *jsoniter.Iterator, in Inbound) {
	if iter != nil {
		iter.ReadVal(in)
	}
}

func (message Message) messageJSON() messageJSON {
	out, ok := message.Data.(Outbound)
	if !ok {
		// Panic because outbounds only come from trusted sources
		panic("message data is not an Outbound")
	}
	return messageJSON{Data: out, Type: out.messageType()}
}

// receive decodes a JSON Message from data and queues its Inbound on the Hub of client.
// Unknown message types are logged and dropped. If block is false, the Inbound may also be
// dropped when the Hub is too busy.
func receive(client Client, data []byte, block bool) error {
	var message Message
	if err := JSON.Unmarshal(data, &message); err != nil {
		return err
	}

	if invalid, ok := message.Data.(InvalidInbound); ok {
		log.Println("invalid message type received:", invalid.messageType)
		return nil
	}

	client.Data().Hub.ReceiveSigned(SignedInbound{Client: client, Inbound: message.Data.(Inbound)}, block)
	return nil
}

// Overridden by jsoniter
func (message Message) MarshalJSON() ([]byte, error) {
	panic("unimplemented")
}

// Overridden by jsoniter
func (message *Message) UnmarshalJSON([]byte) error {
	panic("unimplemented")
}
