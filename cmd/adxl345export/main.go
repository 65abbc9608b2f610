// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// adxl345export exposes ADXL345 acceleration readings as Prometheus gauges.
package main

import (
	"flag"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/adxl345"
)

func main() {
	i2cName := flag.String("i2c", "", "I²C bus name (default: first available)")
	addr := flag.Uint("addr", uint(adxl345.AddrLow), "I²C device address")
	promaddr := flag.String("prometheus", ":9345", "Prometheus exporter address")
	interval := flag.Duration("interval", 250*time.Millisecond, "sample interval")
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

	var mut sync.Mutex
	var last adxl345.Acceleration
	go func() {
		for a := range ch {
			mut.Lock()
			last = a
			mut.Unlock()
		}
	}()

	axis := func(f func(adxl345.Acceleration) float64) func() float64 {
		return func() float64 {
			mut.Lock()
			defer mut.Unlock()
			return f(last)
		}
	}
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sensors", Subsystem: "adxl345",
		Name: "acceleration_x_g", Help: "Acceleration along X, in standard gravities",
	}, axis(func(a adxl345.Acceleration) float64 { return a.X }))
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sensors", Subsystem: "adxl345",
		Name: "acceleration_y_g", Help: "Acceleration along Y, in standard gravities",
	}, axis(func(a adxl345.Acceleration) float64 { return a.Y }))
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sensors", Subsystem: "adxl345",
		Name: "acceleration_z_g", Help: "Acceleration along Z, in standard gravities",
	}, axis(func(a adxl345.Acceleration) float64 { return a.Z }))
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sensors", Subsystem: "adxl345",
		Name: "acceleration_magnitude_g", Help: "Magnitude of the acceleration vector, in standard gravities",
	}, axis(func(a adxl345.Acceleration) float64 {
		return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
	}))

	http.Handle("/metrics", promhttp.Handler())
	log.Println("exporter listening on", *promaddr)
	log.Fatalln(http.ListenAndServe(*promaddr, nil))
}
