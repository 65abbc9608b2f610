// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// adxl345read prints acceleration samples from an ADXL345 to stdout.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/adxl345"
)

func main() {
	i2cName := flag.String("i2c", "", "I²C bus name (default: first available)")
	spiName := flag.String("spi", "", "SPI port name; uses SPI instead of I²C when set")
	addr := flag.Uint("addr", uint(adxl345.AddrLow), "I²C device address (0x53 or 0x1d)")
	rangeG := flag.Int("range", 2, "measurement range in g (2, 4, 8 or 16)")
	interval := flag.Duration("interval", 100*time.Millisecond, "sample interval")
	duration := flag.Duration("duration", 10*time.Second, "how long to sample; 0 means forever")
	flag.Parse()

	r, err := rangeFromG(*rangeG)
	if err != nil {
		log.Fatalln(err)
	}

	if _, err := host.Init(); err != nil {
		log.Fatalln("init host:", err)
	}

	dev, err := open(*i2cName, *spiName, uint16(*addr), r)
	if err != nil {
		log.Fatalln("open adxl345:", err)
	}
	if err := dev.EnableMeasurement(); err != nil {
		log.Fatalln("enable measurement:", err)
	}
	defer dev.Halt()

	log.Println("reading from", dev)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	var stop <-chan time.Time
	if *duration > 0 {
		stop = time.After(*duration)
	}
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a, err := dev.ReadAcceleration()
			if err != nil {
				log.Fatalln("read:", err)
			}
			fmt.Println(a)
		}
	}
}

func rangeFromG(g int) (adxl345.Range, error) {
	switch g {
	case 2:
		return adxl345.Range2G, nil
	case 4:
		return adxl345.Range4G, nil
	case 8:
		return adxl345.Range8G, nil
	case 16:
		return adxl345.Range16G, nil
	}
	return 0, fmt.Errorf("unsupported range ±%dg", g)
}

func open(i2cName, spiName string, addr uint16, r adxl345.Range) (*adxl345.Dev, error) {
	opts := &adxl345.Opts{Range: r, FullResolution: true}
	if spiName != "" {
		p, err := spireg.Open(spiName)
		if err != nil {
			return nil, err
		}
		return adxl345.NewSPI(p, opts)
	}
	b, err := i2creg.Open(i2cName)
	if err != nil {
		return nil, err
	}
	return adxl345.NewI2C(b, addr, opts)
}
