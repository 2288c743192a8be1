// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/rigid2d/server/physics"
)

type (
	// Client is a viewer of the Hub.
	Client interface {
		// Init is called once by the hub goroutine when the client is registered.
		// client.Data().Hub is set before it is called.
		Init()

		// Close is called by (only) the hub goroutine when the client is unregistered.
		Close()

		// Send is how the Hub sends an Outbound to the client. Ownership of out passes to the client,
		// which must Pool it once done.
		Send(out Outbound)

		// Destroy marks the client for destruction. It must call Hub.Unregister only once, and may be
		// called on any goroutine, including the hub goroutine.
		Destroy()

		Data() *ClientData
	}

	// ClientData is the data all clients must have.
	ClientData struct {
		// View is the area of the World the client receives Frames of.
		View View
		Hub  *Hub
		// index in ClientList.clients
		index int
	}

	// ClientList is an unordered set of Clients with constant time removal.
	ClientList struct {
		clients []Client
	}
)

// Sees returns if position is inside the View of the client.
func (data *ClientData) Sees(position physics.Vec2f) bool {
	return data.View.Contains(position)
}

// Contains returns if position is within the radius of the View.
func (view View) Contains(position physics.Vec2f) bool {
	return position.DistanceSquared(view.Position) <= view.Radius*view.Radius
}

// touches returns if any contact point of manifold is inside the View.
func (view View) touches(manifold *physics.Manifold) bool {
	for i := range manifold.Contacts {
		if view.Contains(manifold.Contacts[i].Position) {
			return true
		}
	}
	return false
}

// Add adds a Client to the list. Panics if it is already in it.
func (list *ClientList) Add(client Client) {
	if list.contains(client) {
		panic("already added")
	}
	client.Data().index = len(list.clients)
	list.clients = append(list.clients, client)
}

// Remove removes a Client from the list by swapping the last Client into its place.
// Panics if it isn't in the list.
func (list *ClientList) Remove(client Client) {
	if !list.contains(client) {
		panic("already removed")
	}

	i := client.Data().index
	end := len(list.clients) - 1
	last := list.clients[end]

	list.clients[i] = last
	last.Data().index = i
	list.clients[end] = nil
	list.clients = list.clients[:end]
}

// Len returns how many Clients are in the list.
func (list *ClientList) Len() int {
	return len(list.clients)
}

// Clients returns the Clients in the list. Only valid until the next Add or Remove.
func (list *ClientList) Clients() []Client {
	return list.clients
}

func (list *ClientList) contains(client Client) bool {
	i := client.Data().index
	return i >= 0 && i < len(list.clients) && list.clients[i] == client
}
