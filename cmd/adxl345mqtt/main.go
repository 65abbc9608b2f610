// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// adxl345mqtt publishes ADXL345 acceleration samples as JSON to an MQTT topic.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/adxl345"
)

type sample struct {
	Time time.Time `json:"time"`
	X    float64   `json:"x_g"`
	Y    float64   `json:"y_g"`
	Z    float64   `json:"z_g"`
}

func main() {
	i2cName := flag.String("i2c", "", "I²C bus name (default: first available)")
	addr := flag.Uint("addr", uint(adxl345.AddrLow), "I²C device address")
	broker := flag.String("broker", "tcp://localhost:1883", "MQTT broker URL")
	clientID := flag.String("client-id", "adxl345-producer", "MQTT client ID")
	topic := flag.String("topic", "sensors/adxl345/acceleration", "MQTT topic")
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
	defer dev.Halt()

	opts := mqtt.NewClientOptions().
		AddBroker(*broker).
		SetClientID(*clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln("MQTT connect:", token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("connected to %s, publishing to %s", *broker, *topic)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-sig:
			log.Println("shutting down")
			return
		case t := <-ticker.C:
			a, err := dev.ReadAcceleration()
			if err != nil {
				log.Println("read:", err)
				continue
			}
			payload, err := json.Marshal(sample{Time: t, X: a.X, Y: a.Y, Z: a.Z})
			if err != nil {
				log.Println("marshal:", err)
				continue
			}
			if token := client.Publish(*topic, 0, false, payload); token.Wait() && token.Error() != nil {
				log.Println("publish:", token.Error())
			}
		}
	}
}
