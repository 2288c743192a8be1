// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"github.com/SoftbearStudios/rigid2d/server/physics"
	jsoniter "github.com/json-iterator/go"
	"reflect"
	"sort"
	"sync"
	"unsafe"
)

// JSON is the json configuration of all messages.
// Make sure functions get run first
var JSON = func() jsoniter.API {
	neverEmpty := func(pointer unsafe.Pointer) bool { return false }

	// Encoders
	jsoniter.RegisterFieldEncoderFunc(reflect.TypeOf(Frame{}).String(), "Bodies", encodeFrameBodies, neverEmpty)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(physics.BodyID(0)).String(), encodeBodyID, emptyBodyID)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(Message{}).String(), encodeMessage, neverEmpty)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(physics.Angle(0)).String(), encodeAngle, emptyAngle)

	// Decoders
	jsoniter.RegisterTypeDecoderFunc(reflect.TypeOf(Message{}).String(), decodeMessage)

	return jsoniter.Config{
		IndentionStep:                 0,
		MarshalFloatWith6Digits:       true,
		EscapeHTML:                    false,
		SortMapKeys:                   true,
		UseNumber:                     false,
		DisallowUnknownFields:         false,
		TagKey:                        "json",
		OnlyTaggedField:               false,
		ValidateJsonRawMessage:        false,
		ObjectFieldMustBeSimpleString: true,
		CaseSensitive:                 true,
	}.Froze()
}()

func encodeMessage(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	message := (*Message)(ptr)
	stream.WriteVal(message.messageJSON())
}

var sortedBodiesPool = sync.Pool{
	New: func() interface{} {
		slice := make([]*IDBodyView, 0, poolBodiesCap)
		return &slice
	},
}

// Encodes Frame.Bodies as a map in json
func encodeFrameBodies(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	bodies := *(*[]IDBodyView)(ptr)

	// Reallocate to slice of pointers for faster swaps
	sortedBodiesPtr := sortedBodiesPool.Get().(*[]*IDBodyView)
	sortedBodies := *sortedBodiesPtr

	for i := range bodies {
		sortedBodies = append(sortedBodies, &bodies[i])
	}

	sort.Slice(sortedBodies, func(i, j int) bool {
		return sortedBodies[i].BodyID < sortedBodies[j].BodyID
	})

	stream.WriteObjectStart()
	first := true
	for _, b := range sortedBodies {
		if first {
			first = false
		} else {
			stream.WriteMore()
		}

		if stream.Error != nil {
			return
		}
		_ = stream.Flush()

		// Map key of BodyID quoted
		stream.SetBuffer(append(b.BodyID.AppendText(append(stream.Buffer(), '"')), '"', ':'))

		// Map value of BodyView
		stream.WriteVal(&b.BodyView)
	}
	stream.WriteObjectEnd()

	// Clear pointers
	for i := range sortedBodies {
		sortedBodies[i] = nil
	}

	// Pool sorted bodies with pointer to slice as to not allocate slice header
	*sortedBodiesPtr = sortedBodies[:0]
	sortedBodiesPool.Put(sortedBodiesPtr)
}

func encodeAngle(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	angle := *(*physics.Angle)(ptr)
	stream.WriteFloat32Lossy(angle.Float())
}

func emptyAngle(ptr unsafe.Pointer) bool {
	return *(*physics.Angle)(ptr) == 0
}

func encodeBodyID(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	id := *(*physics.BodyID)(ptr)
	// Quoted hex
	stream.SetBuffer(append(id.AppendText(append(stream.Buffer(), '"')), '"'))
}

func emptyBodyID(ptr unsafe.Pointer) bool {
	return *(*physics.BodyID)(ptr) == physics.BodyIDInvalid
}

// decodeMessage reads the type and data of an inbound Message in one pass. The data is captured
// as bytes because it may come before the type.
func decodeMessage(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	var (
		typ  messageType
		data []byte
	)

	iter.ReadObjectCB(func(i *jsoniter.Iterator, field string) bool {
		switch field {
		case "type":
			typ = messageType(i.ReadString())
		case "data":
			data = i.SkipAndReturnBytes()
		default:
			i.Skip()
		}
		return true
	})

	if iter.Error != nil {
		return
	}

	if typ == "" {
		iter.Error = errors.New("no inbound message type")
		return
	}

	message := (*Message)(ptr)

	decode, ok := inboundTypes[typ]
	if !ok {
		message.Data = InvalidInbound{messageType: typ}
		return
	}

	if data == nil {
		message.Data = decode(nil)
		return
	}

	pool := iter.Pool()
	dataIter := pool.BorrowIterator(data)
	defer pool.ReturnIterator(dataIter)

	in := decode(dataIter)
	if dataIter.Error != nil {
		iter.Error = dataIter.Error
		return
	}
	message.Data = in
}
