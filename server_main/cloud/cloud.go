// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"github.com/SoftbearStudios/rigid2d/server"
	"github.com/SoftbearStudios/rigid2d/server/cloud/db"
	"github.com/SoftbearStudios/rigid2d/server/cloud/fs"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	UpdatePeriod = 30 * time.Second

	// How long clients may cache snapshots
	snapshotCacheSeconds = 10
	// Rows of the uploaded step history
	historyLength = 120
)

// Cloud is the AWS implementation of server.Cloud.
type Cloud struct {
	region   string
	name     string // unique per server
	database db.Database
	fs       fs.Filesystem
}

func (cloud *Cloud) String() string {
	var builder strings.Builder
	builder.WriteByte('[')
	builder.WriteString(cloud.region)
	builder.WriteByte(' ')
	builder.WriteString(cloud.name)
	builder.WriteByte(']')
	return builder.String()
}

// New creates a Cloud. region and stage may be empty to read them from EC2 user data.
func New(region, stage string) (*Cloud, error) {
	userData, err := loadUserData(region, stage)
	if err != nil {
		return nil, fmt.Errorf("loading user data: %w", err)
	}

	ip, err := getPublicIP()
	if err != nil {
		return nil, fmt.Errorf("getting public ip: %w", err)
	}

	session, err := getAWSSession(userData.Region)
	if err != nil {
		return nil, fmt.Errorf("creating aws session: %w", err)
	}

	cloud := &Cloud{
		region: userData.Region,
		name:   userData.Region + "-" + ip.String(),
	}

	cloud.database, err = db.NewDynamoDBDatabase(session, userData.Stage)
	if err != nil {
		return nil, err
	}
	cloud.fs, err = fs.NewS3Filesystem(session, userData.Stage)
	if err != nil {
		return nil, err
	}

	return cloud, nil
}

func (cloud *Cloud) UpdatePeriod() time.Duration {
	return UpdatePeriod
}

// UpdateStatistics stores stats and uploads the recent history of this server as CSV.
func (cloud *Cloud) UpdateStatistics(stats server.Statistics) error {
	if stats.Ticks == 0 {
		return nil
	}

	step := db.NewStep(cloud.name, time.Now())
	step.Ticks = stats.Ticks
	step.Bodies = stats.Bodies
	step.Pairs = stats.Pairs
	step.Manifolds = stats.Manifolds
	step.Contacts = stats.Contacts
	step.StepMilli = float32(stats.Average().Seconds() * 1000)

	if err := cloud.database.PutStep(step); err != nil {
		return fmt.Errorf("putting step: %w", err)
	}

	steps, err := cloud.database.ReadStepsByServer(cloud.name)
	if err != nil {
		return fmt.Errorf("reading steps: %w", err)
	}

	history, err := encodeHistory(steps)
	if err != nil {
		return err
	}
	return cloud.fs.UploadStaticFile("steps/"+cloud.name+".csv", snapshotCacheSeconds, history)
}

// UploadSnapshot uploads a JSON encoded Frame of the whole world.
func (cloud *Cloud) UploadSnapshot(data []byte) error {
	return cloud.fs.UploadStaticFile("snapshots/"+cloud.name+".json", snapshotCacheSeconds, data)
}

// encodeHistory encodes the latest historyLength steps as CSV, oldest first.
func encodeHistory(steps []db.Step) ([]byte, error) {
	sort.Slice(steps, func(i, j int) bool {
		return steps[i].Timestamp < steps[j].Timestamp
	})
	if len(steps) > historyLength {
		steps = steps[len(steps)-historyLength:]
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"timestamp", "ticks", "bodies", "pairs", "manifolds", "contacts", "stepMilli"}); err != nil {
		return nil, err
	}

	for _, step := range steps {
		err := w.Write([]string{
			strconv.FormatInt(step.Timestamp, 10),
			strconv.Itoa(step.Ticks),
			strconv.Itoa(step.Bodies),
			strconv.Itoa(step.Pairs),
			strconv.Itoa(step.Manifolds),
			strconv.Itoa(step.Contacts),
			strconv.FormatFloat(float64(step.StepMilli), 'f', 3, 32),
		})
		if err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
