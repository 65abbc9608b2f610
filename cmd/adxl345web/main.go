// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// adxl345web serves the latest ADXL345 reading over HTTP and streams samples
// to WebSocket clients.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/adxl345"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type reading struct {
	Time time.Time `json:"time"`
	X    float64   `json:"x_g"`
	Y    float64   `json:"y_g"`
	Z    float64   `json:"z_g"`
}

type state struct {
	mu   sync.RWMutex
	last reading
	have bool
}

func (s *state) set(a adxl345.Acceleration) {
	s.mu.Lock()
	s.last = reading{Time: time.Now(), X: a.X, Y: a.Y, Z: a.Z}
	s.have = true
	s.mu.Unlock()
}

func (s *state) get() (reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.have
}

func main() {
	i2cName := flag.String("i2c", "", "I²C bus name (default: first available)")
	addr := flag.Uint("addr", uint(adxl345.AddrLow), "I²C device address")
	listen := flag.String("listen", ":8080", "HTTP listen address")
	interval := flag.Duration("interval", 100*time.Millisecond, "sample interval")
	flag.Parse()

	if _, err := host.Init(); err != nil {
		log.Fatalln("init host:", err)
	}

	b, err := i2creg.Open(*i2cName)
	if err != nil {
		log.Fatalln("open I²C bus:", err)
	}

	dev, err := adxl345.NewI2C(b, uint16(*addr), &adxl345.DefaultOpts)
	if err != nil {
		log.Fatalln("init adxl345:", err)
	}
	if err := dev.EnableMeasurement(); err != nil {
		log.Fatalln("enable measurement:", err)
	}

	ch, err := dev.ReadContinuous(*interval)
	if err != nil {
		log.Fatalln("start sampling:", err)
	}

	var st state
	go func() {
		for a := range ch {
			st.set(a)
		}
	}()

	http.HandleFunc("/api/acceleration", func(w http.ResponseWriter, r *http.Request) {
		last, ok := st.get()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(last); err != nil {
			log.Println("json encode:", err)
		}
	})

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("websocket upgrade:", err)
			return
		}
		defer conn.Close()

		ticker := time.NewTicker(*interval)
		defer ticker.Stop()
		for range ticker.C {
			last, ok := st.get()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(last); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Println("websocket write:", err)
				}
				return
			}
		}
	})

	log.Println("listening on", *listen)
	log.Fatalln(http.ListenAndServe(*listen, nil))
}
