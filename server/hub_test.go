// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"strings"
	"testing"
	"time"

	"github.com/SoftbearStudios/rigid2d/server/physics"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T, options HubOptions) *Hub {
	if options.WorldRadius == 0 {
		options.WorldRadius = 50
	}
	h := NewHub(options)
	t.Cleanup(func() {
		h.updateTicker.Stop()
		h.statusTicker.Stop()
		h.debugTicker.Stop()
		h.cloudTicker.Stop()
	})
	return h
}

func addBox(h *Hub, x, y, width, height float32) {
	AddBody{Position: physics.Vec2f{X: x, Y: y}, Width: width, Height: height, Mass: 1}.Process(h, nil)
}

func bodyIDs(h *Hub) []physics.BodyID {
	var ids []physics.BodyID
	h.world.ForBodies(func(body *physics.Body) (_, _ bool) {
		ids = append(ids, body.ID)
		return
	})
	return ids
}

func TestHub_Physics(t *testing.T) {
	h := newTestHub(t, HubOptions{})

	addBox(h, 0, 0, 1, 1)
	addBox(h, 0.5, 0, 1, 1)
	addBox(h, 10, 10, 1, 1)
	require.Equal(t, 3, h.world.Count())

	h.Physics(0)

	require.Equal(t, uint32(1), h.tick)
	require.Len(t, h.pairs, 1)
	require.Len(t, h.manifolds, 1)

	manifold := h.manifolds[0]
	require.Len(t, manifold.Contacts, 2)
	require.InDelta(t, 0.5, manifold.Depth, 1e-6)
	require.InDelta(t, 1, manifold.Normal.Length(), 1e-6)

	require.Equal(t, 1, h.statistics.Ticks)
	require.Equal(t, 3, h.statistics.Bodies)
	require.Equal(t, 1, h.statistics.Pairs)
	require.Equal(t, 2, h.statistics.Contacts)
}

func TestHub_PhysicsMoves(t *testing.T) {
	h := newTestHub(t, HubOptions{})

	AddBody{
		Position: physics.Vec2f{X: -20},
		Velocity: physics.Vec2f{X: 10},
		Width:    1,
		Height:   1,
	}.Process(h, nil)
	addBox(h, 0.5, 0, 1, 1)

	h.Physics(1)
	require.Empty(t, h.manifolds)

	// Overlaps the other box by half after 2 seconds
	h.Physics(1)
	require.Len(t, h.manifolds, 1)
	require.Len(t, h.manifolds[0].Contacts, 2)
	require.InDelta(t, 0.5, h.manifolds[0].Depth, 1e-4)
}

func TestBounce(t *testing.T) {
	body := physics.NewRectBody(physics.Vec2f{X: 12, Y: -3}, 0, 1, 1, 1)
	body.Velocity = physics.Vec2f{X: 5, Y: -1}

	bounce(body, 10)
	require.Equal(t, physics.Vec2f{X: 10, Y: -3}, body.Position)
	require.Equal(t, physics.Vec2f{X: -5, Y: -1}, body.Velocity)

	// Already heading back in
	bounce(body, 10)
	require.Equal(t, physics.Vec2f{X: -5, Y: -1}, body.Velocity)
}

func TestAddBody_Process(t *testing.T) {
	h := newTestHub(t, HubOptions{MaxBodies: 2})

	// Invalid sizes
	addBox(h, 0, 0, 0, 1)
	addBox(h, 0, 0, 1, bodySizeMax+1)
	// Outside world
	addBox(h, 51, 0, 1, 1)
	require.Equal(t, 0, h.world.Count())

	AddBody{Label: " (box) ", Width: 1, Height: 1, Velocity: physics.Vec2f{X: 1000}, AngularVelocity: 100}.Process(h, nil)
	require.Equal(t, 1, h.world.Count())

	h.world.ForBodies(func(body *physics.Body) (_, _ bool) {
		require.Equal(t, "box", body.Label)
		require.InDelta(t, bodySpeedMax, body.Velocity.Length(), 1e-3)
		require.Equal(t, bodySpinMax, body.AngularVelocity)
		require.False(t, body.AABB().Empty())
		return
	})

	addBox(h, 5, 5, 1, 1)
	addBox(h, -5, -5, 1, 1)
	require.Equal(t, 2, h.world.Count(), "max bodies")
}

func TestMoveAndRemoveBody_Process(t *testing.T) {
	h := newTestHub(t, HubOptions{})
	addBox(h, 0, 0, 1, 1)
	id := bodyIDs(h)[0]

	MoveBody{BodyID: id, Position: physics.Vec2f{X: 30, Y: -30}, Direction: physics.Pi / 2}.Process(h, nil)

	found := false
	h.world.ForBodiesInRadius(physics.Vec2f{X: 30, Y: -30}, 1, func(_ float32, body *physics.Body) (_ bool) {
		found = body.ID == id
		require.Equal(t, physics.Pi/2, body.Direction)
		return
	})
	require.True(t, found)

	// Out of world is ignored
	MoveBody{BodyID: id, Position: physics.Vec2f{X: 300}}.Process(h, nil)
	require.Len(t, h.frame(View{Position: physics.Vec2f{X: 30, Y: -30}, Radius: 1}).Bodies, 1)

	RemoveBody{BodyID: id + 1}.Process(h, nil)
	require.Equal(t, 1, h.world.Count())
	RemoveBody{BodyID: id}.Process(h, nil)
	require.Equal(t, 0, h.world.Count())
}

func TestPauseAndStep_Process(t *testing.T) {
	h := newTestHub(t, HubOptions{})

	// Step only works while paused
	Step{}.Process(h, nil)
	require.Equal(t, uint32(0), h.tick)

	Pause{Paused: true}.Process(h, nil)
	require.True(t, h.paused)
	Step{}.Process(h, nil)
	require.Equal(t, uint32(1), h.tick)

	Pause{}.Process(h, nil)
	require.False(t, h.paused)
}

func TestHub_Frame(t *testing.T) {
	h := newTestHub(t, HubOptions{})
	addBox(h, 0, 0, 1, 1)
	addBox(h, 0.5, 0, 1, 1)
	addBox(h, 40, 40, 1, 1)
	h.Physics(0)

	near := h.frame(View{Radius: 5})
	require.Len(t, near.Bodies, 2)
	require.Len(t, near.Manifolds, 1)
	require.Len(t, near.Manifolds[0].Points, 2)
	require.Equal(t, uint32(1), near.Tick)
	near.Pool()

	far := h.frame(View{Position: physics.Vec2f{X: 40, Y: 40}, Radius: 5})
	require.Len(t, far.Bodies, 1)
	require.Empty(t, far.Manifolds)
	far.Pool()
}

func TestHub_Spawn(t *testing.T) {
	h := newTestHub(t, HubOptions{Bodies: 20, MaxBodies: 15, Seed: 3})
	require.Equal(t, 15, h.world.Count())

	h.world.ForBodies(func(body *physics.Body) (_, _ bool) {
		require.True(t, h.inWorld(body.Position))
		return
	})
}

func TestHub_StatusAndUpdate(t *testing.T) {
	h := newTestHub(t, HubOptions{})
	addBox(h, 0, 0, 1, 1)

	var messages []string
	client := &LocalClient{OnMessage: func(data []byte) {
		messages = append(messages, string(data))
	}}
	h.clients.Add(client)
	client.Hub = h
	client.View = View{Radius: viewRadiusDefault}

	h.Status()
	require.Len(t, messages, 1)
	require.Equal(t, `{"data":{"bodies":1,"clients":1,"pairs":0,"contacts":0,"tick":0},"type":"status"}`, messages[0])
	require.Equal(t, `{"bodies":1,"clients":1,"pairs":0,"contacts":0,"tick":0}`, string(h.statusJSON.Load().([]byte)))

	h.Physics(0)
	h.Update()
	require.Len(t, messages, 2)
	require.True(t, strings.HasPrefix(messages[1], `{"data":{"bodies":{`), messages[1])
	require.True(t, strings.HasSuffix(messages[1], `"tick":1,"worldRadius":50},"type":"frame"}`), messages[1])
}

func TestView_Process(t *testing.T) {
	client := &LocalClient{}

	View{Position: physics.Vec2f{X: 1}, Radius: 10}.Process(nil, client)
	require.Equal(t, View{Position: physics.Vec2f{X: 1}, Radius: 10}, client.View)

	View{Radius: -1}.Process(nil, client)
	require.Equal(t, float32(viewRadiusMax), client.View.Radius)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "box", want: "box", ok: true},
		{in: "  spaced  ", want: "spaced", ok: true},
		{in: "[a]{b}(c)*", want: "abc", ok: true},
		{in: "\u200b", ok: false},
		{in: "", ok: false},
		{in: strings.Repeat("x", labelLengthMax+10), want: strings.Repeat("x", labelLengthMax), ok: true},
	}

	for _, test := range tests {
		got, ok := sanitize(test.in, labelLengthMin, labelLengthMax)
		require.Equal(t, test.ok, ok, test.in)
		require.Equal(t, test.want, got, test.in)
	}
}

func TestClientList(t *testing.T) {
	var list ClientList
	a, b, c := &LocalClient{}, &LocalClient{}, &LocalClient{}

	list.Add(a)
	list.Add(b)
	list.Add(c)
	require.Equal(t, 3, list.Len())
	require.Panics(t, func() { list.Add(b) })

	// Last is swapped into the hole
	list.Remove(a)
	require.Equal(t, []Client{c, b}, list.Clients())
	require.Equal(t, 0, c.index)

	list.Remove(b)
	list.Remove(c)
	require.Equal(t, 0, list.Len())
	require.Panics(t, func() { list.Remove(a) })

	// Can be added again
	list.Add(a)
	require.Equal(t, []Client{a}, list.Clients())
}

func TestView_Contains(t *testing.T) {
	view := View{Position: physics.Vec2f{X: 10, Y: 10}, Radius: 5}
	require.True(t, view.Contains(physics.Vec2f{X: 13, Y: 14}))
	require.False(t, view.Contains(physics.Vec2f{X: 14, Y: 14}))

	client := &LocalClient{}
	client.View = view
	require.True(t, client.Sees(physics.Vec2f{X: 10, Y: 15}))
	require.False(t, client.Sees(physics.Vec2f{}))

	manifold := &physics.Manifold{Contacts: []physics.Contact{{Position: physics.Vec2f{}}, {Position: physics.Vec2f{X: 9, Y: 9}}}}
	require.True(t, view.touches(manifold))
	manifold.Contacts = manifold.Contacts[:1]
	require.False(t, view.touches(manifold))
}

func TestHub_UnregisterFromHubGoroutine(t *testing.T) {
	h := newTestHub(t, HubOptions{})

	// More destroyed clients than h.unregister can buffer, with nothing receiving (as when clients
	// are destroyed by Send on the hub goroutine).
	const count = 40
	done := make(chan struct{})
	go func() {
		for i := 0; i < count; i++ {
			client := &LocalClient{}
			client.Hub = h
			client.Destroy()
			client.Destroy()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Destroy blocked")
	}

	seen := make(map[Client]bool)
	for len(seen) < count {
		select {
		case client := <-h.unregister:
			require.False(t, seen[client], "unregistered twice")
			seen[client] = true
		case <-time.After(time.Second):
			t.Fatalf("only %d of %d clients unregistered", len(seen), count)
		}
	}

	select {
	case <-h.unregister:
		t.Fatal("unregistered twice")
	case <-time.After(50 * time.Millisecond):
	}
}
