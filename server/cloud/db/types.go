// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

import (
	"time"
)

// StepTTL is how long Steps are kept.
const StepTTL = 7 * 24 * time.Hour

// Step is the statistics of a server's steps over one cloud update period.
type Step struct {
	Server    string  `dynamo:"server"`
	Timestamp int64   `dynamo:"timestamp"` // unix millis, sort key
	Ticks     int     `dynamo:"ticks"`
	Bodies    int     `dynamo:"bodies"`
	Pairs     int     `dynamo:"pairs"`
	Manifolds int     `dynamo:"manifolds"`
	Contacts  int     `dynamo:"contacts"`
	StepMilli float32 `dynamo:"stepMilli"` // average
	TTL       int64   `dynamo:"ttl,omitempty"`
}

// NewStep creates a Step at time now that expires after StepTTL.
func NewStep(server string, now time.Time) Step {
	return Step{
		Server:    server,
		Timestamp: now.UnixNano() / int64(time.Millisecond),
		TTL:       now.Add(StepTTL).Unix(),
	}
}
