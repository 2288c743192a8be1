// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"github.com/SoftbearStudios/rigid2d/server/physics"
	"log"
	"time"
)

// Statistics are accumulated over steps and flushed to the Cloud.
type Statistics struct {
	Ticks     int
	Bodies    int // as of the last step
	Pairs     int
	Manifolds int
	Contacts  int
	Duration  time.Duration
}

func (stats *Statistics) add(other Statistics) {
	stats.Ticks += other.Ticks
	stats.Bodies = other.Bodies
	stats.Pairs += other.Pairs
	stats.Manifolds += other.Manifolds
	stats.Contacts += other.Contacts
	stats.Duration += other.Duration
}

// Average returns the average duration of a step.
func (stats Statistics) Average() time.Duration {
	if stats.Ticks == 0 {
		return 0
	}
	return stats.Duration / time.Duration(stats.Ticks)
}

type Cloud interface {
	fmt.Stringer
	UpdateStatistics(stats Statistics) error
	UploadSnapshot(data []byte) error // takes a JSON encoded Frame
	UpdatePeriod() time.Duration
}

// Offline is a Cloud that does nothing. It means the server is in offline mode.
type Offline struct{}

func (offline Offline) String() string {
	return "offline"
}

func (offline Offline) UpdateStatistics(_ Statistics) error {
	return nil
}

func (offline Offline) UploadSnapshot(_ []byte) error {
	return nil
}

func (offline Offline) UpdatePeriod() time.Duration {
	return time.Hour
}

// Cloud flushes statistics and uploads a snapshot of the whole world.
func (h *Hub) Cloud() {
	log.Println("updating cloud")

	stats := h.statistics
	h.statistics = Statistics{}

	frame := h.frame(View{Position: physics.Vec2f{}, Radius: h.worldRadius * 2})
	snapshot, err := JSON.Marshal(frame)
	frame.Pool()
	if err != nil {
		log.Println("error marshaling snapshot:", err)
		snapshot = nil
	}

	go func() {
		if err := h.cloud.UpdateStatistics(stats); err != nil {
			log.Println("error updating statistics:", err)
		}

		if snapshot == nil {
			return
		}
		if err := h.cloud.UploadSnapshot(snapshot); err != nil {
			log.Println("error uploading snapshot:", err)
		}
	}()
}

// Status sends a Status to each Client and stores it for HTTP.
func (h *Hub) Status() {
	contacts := 0
	for i := range h.manifolds {
		contacts += len(h.manifolds[i].Contacts)
	}

	status := Status{
		Bodies:   h.world.Count(),
		Clients:  h.clients.Len(),
		Pairs:    len(h.pairs),
		Contacts: contacts,
		Tick:     h.tick,
	}

	statusJSON, err := JSON.Marshal(status)
	if err == nil {
		h.statusJSON.Store(statusJSON)
	} else {
		log.Println("error marshaling status:", err)
	}

	for _, client := range h.clients.Clients() {
		client.Send(status)
	}
}
