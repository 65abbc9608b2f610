// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package adxl345

import (
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"
)

// transport is the register bus the driver talks through: addressed byte
// reads and writes against the device's register file. Both implementations
// are synchronous; a transaction error is returned verbatim and never retried
// here, retry policy belongs to the bus layer.
type transport interface {
	readReg(reg byte, buf []byte) error
	writeReg(reg, val byte) error
}

type i2cTransport struct {
	d *i2c.Dev
}

func (t *i2cTransport) readReg(reg byte, buf []byte) error {
	return t.d.Tx([]byte{reg}, buf)
}

func (t *i2cTransport) writeReg(reg, val byte) error {
	return t.d.Tx([]byte{reg, val}, nil)
}

// SPI framing: bit 7 of the address byte selects a read, bit 6 enables
// multi-byte transfers with address auto-increment.
const (
	spiRead      byte = 0x80
	spiMultiByte byte = 0x40
)

type spiTransport struct {
	c spi.Conn
}

func (t *spiTransport) readReg(reg byte, buf []byte) error {
	cmd := reg | spiRead
	if len(buf) > 1 {
		cmd |= spiMultiByte
	}
	w := make([]byte, len(buf)+1)
	r := make([]byte, len(buf)+1)
	w[0] = cmd
	if err := t.c.Tx(w, r); err != nil {
		return err
	}
	copy(buf, r[1:])
	return nil
}

func (t *spiTransport) writeReg(reg, val byte) error {
	w := []byte{reg, val}
	r := make([]byte, len(w))
	return t.c.Tx(w, r)
}

// updateReg merges value into the bits selected by mask and writes the result
// back, leaving the other bits of the register untouched. Every configuration
// operation goes through here so the preserve-unrelated-bits rule is enforced
// in one place. A transport error can leave the register in an unknown state;
// the caller must re-issue the configuration before trusting it.
func (d *Dev) updateReg(reg, mask, value byte) error {
	var cur [1]byte
	if err := d.t.readReg(reg, cur[:]); err != nil {
		return err
	}
	next := (cur[0] &^ mask) | (value & mask)
	return d.t.writeReg(reg, next)
}
