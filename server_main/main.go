// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"github.com/SoftbearStudios/rigid2d/server"
	"github.com/SoftbearStudios/rigid2d/server_main/cloud"
	"golang.org/x/net/netutil"
	"log"
	"net"
	"net/http"
	_ "net/http/pprof"
	"time"
)

func main() {
	var (
		bodies         int
		maxBodies      int
		port           int
		maxConnections int
		radius         float64
		seed           int64
		tickRate       int
		offline        bool
		region         string
		stage          string
		logPath        string
	)

	flag.IntVar(&bodies, "bodies", 200, "number of bodies to spawn")
	flag.IntVar(&maxBodies, "max-bodies", 4096, "maximum number of bodies")
	flag.IntVar(&port, "port", 8192, "http service port (negative to simulate without serving)")
	flag.IntVar(&maxConnections, "max-connections", 256, "maximum number of inbound TCP connections")
	flag.Float64Var(&radius, "radius", 500, "half width of the world in meters")
	flag.Int64Var(&seed, "seed", 0, "seed of the spawned scene (0 for random)")
	flag.IntVar(&tickRate, "tick-rate", 10, "steps per second")
	flag.BoolVar(&offline, "offline", false, "don't connect to the cloud")
	flag.StringVar(&region, "region", "", "AWS region (empty to read from user data)")
	flag.StringVar(&stage, "stage", "", "deployment stage (empty to read from user data)")
	flag.StringVar(&logPath, "log", "/tmp/rigid2d.log", "CSV file of step statistics (empty to disable)")
	flag.Parse()

	if bodies < 0 {
		log.Fatal("invalid argument bodies: ", bodies)
	}
	if tickRate < 1 {
		log.Fatal("invalid argument tick-rate: ", tickRate)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var c server.Cloud = server.Offline{}
	if !offline {
		awsCloud, err := cloud.New(region, stage)
		if err != nil {
			// Cloud is not required for server to function, just log an error
			log.Printf("Cloud error: %v\n", err)
		} else {
			c = awsCloud
		}
	}

	hub := server.NewHub(server.HubOptions{
		Cloud:        c,
		WorldRadius:  float32(radius),
		Bodies:       bodies,
		MaxBodies:    maxBodies,
		Seed:         seed,
		UpdatePeriod: time.Second / time.Duration(tickRate),
		LogPath:      logPath,
	})

	go hub.Run()

	if port < 0 {
		log.Println("rigid2d simulation started")
		// Block forever
		<-make(chan struct{})
	}

	log.Printf("rigid2d server started on http://localhost:%d\n", port)

	http.HandleFunc("/", hub.ServeIndex)
	http.HandleFunc("/ws", hub.ServeSocket)

	l, err := net.Listen("tcp", fmt.Sprint(":", port))

	if err != nil {
		log.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	l = netutil.LimitListener(l, maxConnections)

	log.Fatal("ListenAndServe: ", http.Serve(l, nil))
}
