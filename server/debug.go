// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"runtime"
	"time"
)

// Debug prints debugging info to console and appends it to the log file.
func (h *Hub) Debug() {
	fmt.Printf("Debug [%v] %s\n", time.Now().Format(time.UnixDate), h.cloud)
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	fmt.Printf(" - memstats: %dM/%dM\n", stats.HeapInuse/1e6, stats.NextGC/1e6)

	contacts := 0
	for i := range h.manifolds {
		contacts += len(h.manifolds[i].Contacts)
	}

	fmt.Printf(" - clients: %d, tick: %d, paused: %t, world radius: %.02f\n", h.clients.Len(), h.tick, h.paused, h.worldRadius)
	fmt.Printf(" - pairs: %d, manifolds: %d, contacts: %d\n", len(h.pairs), len(h.manifolds), contacts)

	fmt.Print(" - ")
	h.world.Debug()

	// Function benchmarks
	var (
		totalDuration   time.Duration
		physicsDuration time.Duration
	)

	fmt.Print(" - ")
	for i := range h.funcBenches {
		bench := &h.funcBenches[i]

		duration := bench.reset()
		totalDuration += duration
		if bench.name == "physics" {
			physicsDuration = duration
		}

		fmt.Print(bench.name, ": ", duration, ", ")
	}
	fmt.Println("total:", totalDuration)

	if h.logPath == "" {
		return
	}

	err := AppendLog(h.logPath, logHeader, []interface{}{
		time.Now().UnixNano() / int64(time.Millisecond),
		h.tick,
		h.world.Count(),
		len(h.pairs),
		len(h.manifolds),
		contacts,
		physicsDuration,
	})
	if err != nil {
		fmt.Println("error appending log:", err)
	}
}

// funcBench is a benchmark of a core function.
type funcBench struct {
	name     string
	duration time.Duration
	runs     int
}

// reset resets the benchmark and returns the average duration
func (bench *funcBench) reset() time.Duration {
	if bench.runs == 0 {
		return 0
	}
	average := bench.duration / time.Duration(bench.runs)
	bench.duration = 0
	bench.runs = 0
	return average
}

// timeFunction times a function.
// defer timeFunction("name", time.Now())
func (h *Hub) timeFunction(name string, start time.Time) {
	end := time.Now()

	var bench *funcBench
	for i := range h.funcBenches {
		b := &h.funcBenches[i]
		if name == b.name {
			bench = b
			break
		}
	}

	if bench == nil {
		h.funcBenches = append(h.funcBenches, funcBench{name: name})
		bench = &h.funcBenches[len(h.funcBenches)-1]
	}

	bench.duration += end.Sub(start)
	bench.runs++
}
