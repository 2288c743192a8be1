// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/rigid2d/server/physics"
	"github.com/SoftbearStudios/rigid2d/server/physics/sector"
	"github.com/chewxy/math32"
	"log"
	"os"
	"sync/atomic"
	"time"
)

const (
	debugPeriod  = time.Second * 5
	statusPeriod = time.Second

	defaultUpdatePeriod = time.Second / 10
	defaultWorldRadius  = 500
	defaultMaxBodies    = 4096
)

// HubOptions configures a Hub. Zero values are replaced with defaults.
type HubOptions struct {
	Cloud Cloud
	// WorldRadius is the half width of the square world in meters.
	WorldRadius float32
	// Bodies is how many bodies are spawned at the start.
	Bodies int
	// MaxBodies limits AddBody.
	MaxBodies int
	// Seed of the spawned scene.
	Seed         int64
	UpdatePeriod time.Duration
	// LogPath is a CSV file that statistics are appended to. Empty to disable.
	LogPath string
}

// Hub maintains the set of active clients and steps the simulation.
type Hub struct {
	// World state
	world       physics.World
	worldRadius float32
	clients     ClientList
	paused      bool
	tick        uint32

	// Results of the last step, valid until the next one.
	pairs     []physics.Pair
	manifolds []physics.Manifold

	// Limits
	maxBodies    int
	updatePeriod time.Duration

	// Cloud (and things that are served atomically by HTTP)
	cloud      Cloud
	statusJSON atomic.Value
	statistics Statistics
	logPath    string

	// funcBenches are benchmarks of core Hub functions.
	funcBenches []funcBench

	// Inbound channels
	inbound    chan SignedInbound
	register   chan Client
	unregister chan Client

	// Timer based events
	cloudTicker  *time.Ticker
	updateTicker *time.Ticker
	updateTime   time.Time
	statusTicker *time.Ticker
	debugTicker  *time.Ticker
}

func NewHub(options HubOptions) *Hub {
	if options.Cloud == nil {
		options.Cloud = Offline{}
	}
	if options.WorldRadius <= 0 {
		options.WorldRadius = defaultWorldRadius
	}
	if options.MaxBodies <= 0 {
		options.MaxBodies = defaultMaxBodies
	}
	if options.UpdatePeriod <= 0 {
		options.UpdatePeriod = defaultUpdatePeriod
	}

	log.Println("cloud:", options.Cloud)

	h := &Hub{
		cloud:        options.Cloud,
		world:        sector.New(options.WorldRadius),
		worldRadius:  options.WorldRadius,
		maxBodies:    options.MaxBodies,
		updatePeriod: options.UpdatePeriod,
		logPath:      options.LogPath,
		inbound:      make(chan SignedInbound, 64),
		register:     make(chan Client, 8),
		unregister:   make(chan Client, 16),
		cloudTicker:  time.NewTicker(options.Cloud.UpdatePeriod()),
		updateTicker: time.NewTicker(options.UpdatePeriod),
		updateTime:   time.Now(),
		statusTicker: time.NewTicker(statusPeriod),
		debugTicker:  time.NewTicker(debugPeriod),
	}

	h.Spawn(options.Bodies, options.Seed)
	return h
}

func (h *Hub) Run() {
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		}
		println("That's it, I'm out -hub") // Don't waste time debugging hub exists
		os.Exit(1)
	}()

	h.Cloud()

	for {
		select {
		case client := <-h.register:
			h.clients.Add(client)
			data := client.Data()
			data.Hub = h
			if data.View.Radius == 0 {
				data.View.Radius = viewRadiusDefault
			}
			client.Init()
		case client := <-h.unregister:
			// Unregister may be sent more than once by misbehaving clients
			if client.Data().Hub != h {
				break
			}
			client.Close()
			client.Data().Hub = nil
			h.clients.Remove(client)
		case in := <-h.inbound:
			// Read all messages currently in the channel
			n := len(h.inbound)

			for {
				// If not same hub the message is old
				if h == in.Client.Data().Hub {
					in.Process(h, in.Client)
				}

				if n--; n < 0 {
					break
				}

				in = <-h.inbound
			}
		case <-h.updateTicker.C:
			now := time.Now()
			timeDelta := now.Sub(h.updateTime) + h.updatePeriod/10 // Kludge factor
			h.updateTime = now

			// Falling behind skip tick
			if timeDelta%h.updatePeriod > h.updatePeriod/5 {
				break
			}

			if !h.paused {
				ticks := timeDelta / h.updatePeriod
				h.Physics(float32((ticks * h.updatePeriod).Seconds()))
			}
			h.Update()
		case <-h.statusTicker.C:
			h.Status()
		case <-h.debugTicker.C:
			h.Debug()
		case <-h.cloudTicker.C:
			h.Cloud()
		}
	}
}

// Register adds a Client to the Hub. It may be called on any goroutine.
func (h *Hub) Register(client Client) {
	h.register <- client
}

// Unregister removes a Client from the Hub. It may be called on any goroutine, including the
// hub goroutine, and never blocks.
func (h *Hub) Unregister(client Client) {
	select {
	case h.unregister <- client:
	default:
		go func() {
			h.unregister <- client
		}()
	}
}

// ReceiveSigned queues an Inbound to be processed on the hub goroutine.
// If block is false, the Inbound is dropped when the Hub is too busy.
func (h *Hub) ReceiveSigned(in SignedInbound, block bool) {
	if block {
		h.inbound <- in
		return
	}

	select {
	case h.inbound <- in:
	default:
		log.Println("hub too busy, dropping", in.Inbound)
	}
}

// inWorld returns if position is inside the square world.
func (h *Hub) inWorld(position physics.Vec2f) bool {
	return math32.Abs(position.X) <= h.worldRadius && math32.Abs(position.Y) <= h.worldRadius
}
