// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package adxl345

import (
	"errors"
	"sync"
	"testing"
	"time"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

// setupOps is the bus traffic NewI2C generates with DefaultOpts: ID check,
// then read-modify-write of DATA_FORMAT to ±2g full resolution.
func setupOps() []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: AddrLow, W: []byte{RegDevID}, R: []byte{DeviceID}},
		{Addr: AddrLow, W: []byte{RegDataFormat}, R: []byte{0x00}},
		{Addr: AddrLow, W: []byte{RegDataFormat, 0x08}},
	}
}

func TestNew(t *testing.T) {
	bus := i2ctest.Playback{Ops: setupOps()}
	d, err := NewI2C(&bus, AddrLow, nil)
	if err != nil {
		t.Fatal(err)
	}
	f := d.Format()
	if f.Range != Range2G || !f.FullResolution {
		t.Errorf("format = %+v, want ±2g full resolution", f)
	}
	if s := d.String(); s != "adxl345{±2g}" {
		t.Errorf("String() = %q", s)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewIDMismatch(t *testing.T) {
	bus := i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: AddrLow, W: []byte{RegDevID}, R: []byte{0x34}},
	}}
	d, err := NewI2C(&bus, AddrLow, nil)
	if d != nil {
		t.Fatal("got a device despite wrong ID")
	}
	var idErr *IDMismatchError
	if !errors.As(err, &idErr) {
		t.Fatalf("err = %v, want IDMismatchError", err)
	}
	if idErr.Got != 0x34 || idErr.Want != DeviceID {
		t.Errorf("IDMismatchError = %+v", idErr)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

// SetRange must touch only the range bits: with self-test, full-resolution
// and interrupt-invert flags already set (0xA8), selecting ±16g writes 0xAB.
func TestSetRangePreservesBits(t *testing.T) {
	ops := append(setupOps(),
		i2ctest.IO{Addr: AddrLow, W: []byte{RegDataFormat}, R: []byte{0xA8}},
		i2ctest.IO{Addr: AddrLow, W: []byte{RegDataFormat, 0xAB}},
	)
	bus := i2ctest.Playback{Ops: ops}
	d, err := NewI2C(&bus, AddrLow, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SetRange(Range16G); err != nil {
		t.Fatal(err)
	}
	if r := d.Format().Range; r != Range16G {
		t.Errorf("cached range = %s, want ±16g", r)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestEnableMeasurementAndStandby(t *testing.T) {
	ops := append(setupOps(),
		// First enable sets the measure bit.
		i2ctest.IO{Addr: AddrLow, W: []byte{RegPowerCtl}, R: []byte{0x00}},
		i2ctest.IO{Addr: AddrLow, W: []byte{RegPowerCtl, 0x08}},
		// Second enable finds the bit already set and rewrites the same value.
		i2ctest.IO{Addr: AddrLow, W: []byte{RegPowerCtl}, R: []byte{0x08}},
		i2ctest.IO{Addr: AddrLow, W: []byte{RegPowerCtl, 0x08}},
		// Standby clears only the measure bit, link/auto-sleep survive.
		i2ctest.IO{Addr: AddrLow, W: []byte{RegPowerCtl}, R: []byte{0x38}},
		i2ctest.IO{Addr: AddrLow, W: []byte{RegPowerCtl, 0x30}},
	)
	bus := i2ctest.Playback{Ops: ops}
	d, err := NewI2C(&bus, AddrLow, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.EnableMeasurement(); err != nil {
		t.Fatal(err)
	}
	if err := d.EnableMeasurement(); err != nil {
		t.Fatal(err)
	}
	if err := d.Standby(); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

// End-to-end: at ±2g full resolution (256 LSB/g) the data bytes
// [0x00,0x00, 0x00,0x00, 0x40,0x00] decode to Z = 0x0040 = 64 counts = 0.25 g.
func TestReadAcceleration(t *testing.T) {
	ops := append(setupOps(),
		i2ctest.IO{Addr: AddrLow, W: []byte{RegPowerCtl}, R: []byte{0x00}},
		i2ctest.IO{Addr: AddrLow, W: []byte{RegPowerCtl, 0x08}},
		i2ctest.IO{Addr: AddrLow, W: []byte{RegDataX0}, R: []byte{0x00, 0x00, 0x00, 0x00, 0x40, 0x00}},
	)
	bus := i2ctest.Playback{Ops: ops}
	d, err := NewI2C(&bus, AddrLow, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.EnableMeasurement(); err != nil {
		t.Fatal(err)
	}
	a, err := d.ReadAcceleration()
	if err != nil {
		t.Fatal(err)
	}
	if a.X != 0 || a.Y != 0 || a.Z != 0.25 {
		t.Errorf("acceleration = %s, want Z = 0.25 g", a)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

// Reading in standby is not rejected: the driver returns whatever the device
// holds, stale or zero, without fabricating an error.
func TestReadAccelerationInStandby(t *testing.T) {
	ops := append(setupOps(),
		i2ctest.IO{Addr: AddrLow, W: []byte{RegDataX0}, R: []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
	)
	bus := i2ctest.Playback{Ops: ops}
	d, err := NewI2C(&bus, AddrLow, nil)
	if err != nil {
		t.Fatal(err)
	}
	a, err := d.ReadAcceleration()
	if err != nil {
		t.Fatal(err)
	}
	if (a != Acceleration{}) {
		t.Errorf("acceleration = %s, want zero", a)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

// Sign extension at ±16g full resolution (13 significant bits):
// 0x1FFF → -1, 0x0001 → +1, 0x1000 → -4096.
func TestReadRawSignExtension(t *testing.T) {
	ops := []i2ctest.IO{
		{Addr: AddrLow, W: []byte{RegDevID}, R: []byte{DeviceID}},
		{Addr: AddrLow, W: []byte{RegDataFormat}, R: []byte{0x00}},
		{Addr: AddrLow, W: []byte{RegDataFormat, 0x0B}},
		{Addr: AddrLow, W: []byte{RegDataX0}, R: []byte{0xFF, 0x1F, 0x01, 0x00, 0x00, 0x10}},
	}
	bus := i2ctest.Playback{Ops: ops}
	d, err := NewI2C(&bus, AddrLow, &Opts{Range: Range16G, FullResolution: true})
	if err != nil {
		t.Fatal(err)
	}
	x, y, z, err := d.ReadRaw()
	if err != nil {
		t.Fatal(err)
	}
	if x != -1 || y != 1 || z != -4096 {
		t.Errorf("raw = (%d, %d, %d), want (-1, 1, -4096)", x, y, z)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestConfigureInterrupt(t *testing.T) {
	ops := append(setupOps(),
		// Enable activity at threshold 0x20 (2 g at 62.5 mg/LSB).
		i2ctest.IO{Addr: AddrLow, W: []byte{RegThreshAct, 0x20}},
		i2ctest.IO{Addr: AddrLow, W: []byte{RegIntEnable}, R: []byte{0x00}},
		i2ctest.IO{Addr: AddrLow, W: []byte{RegIntEnable, 0x10}},
		// Disable it again; no threshold write, other sources preserved.
		i2ctest.IO{Addr: AddrLow, W: []byte{RegIntEnable}, R: []byte{0x92}},
		i2ctest.IO{Addr: AddrLow, W: []byte{RegIntEnable, 0x82}},
	)
	bus := i2ctest.Playback{Ops: ops}
	d, err := NewI2C(&bus, AddrLow, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.ConfigureInterrupt(Activity, 0x20, true); err != nil {
		t.Fatal(err)
	}
	if err := d.ConfigureInterrupt(Activity, 0, false); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestConfigureTap(t *testing.T) {
	ops := append(setupOps(),
		i2ctest.IO{Addr: AddrLow, W: []byte{RegThreshTap, 0x30}},
		i2ctest.IO{Addr: AddrLow, W: []byte{RegDur, 0x10}},
		i2ctest.IO{Addr: AddrLow, W: []byte{RegLatent, 0x50}},
		i2ctest.IO{Addr: AddrLow, W: []byte{RegWindow, 0xF0}},
		// The suppress bit (0x08) set beforehand survives the axis update.
		i2ctest.IO{Addr: AddrLow, W: []byte{RegTapAxes}, R: []byte{0x08}},
		i2ctest.IO{Addr: AddrLow, W: []byte{RegTapAxes, 0x0F}},
	)
	bus := i2ctest.Playback{Ops: ops}
	d, err := NewI2C(&bus, AddrLow, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.ConfigureTap(0x30, 0x10, 0x50, 0xF0, TapAxisX|TapAxisY|TapAxisZ); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestReadInterruptSource(t *testing.T) {
	ops := append(setupOps(),
		i2ctest.IO{Addr: AddrLow, W: []byte{RegIntSource}, R: []byte{0x83}},
	)
	bus := i2ctest.Playback{Ops: ops}
	d, err := NewI2C(&bus, AddrLow, nil)
	if err != nil {
		t.Fatal(err)
	}
	src, err := d.ReadInterruptSource()
	if err != nil {
		t.Fatal(err)
	}
	if src != DataReady|Watermark|Overrun {
		t.Errorf("source = %s (0x%02X)", src, byte(src))
	}
	if src&Activity != 0 {
		t.Error("activity reported but never fired")
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

// memBus is a register-file simulation used where playback sequencing is too
// rigid (continuous reads with timing-dependent transaction counts).
type memBus struct {
	mu   sync.Mutex
	regs [0x40]byte
}

func (m *memBus) readReg(reg byte, buf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy(buf, m.regs[reg:int(reg)+len(buf)])
	return nil
}

func (m *memBus) writeReg(reg, val byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[reg] = val
	return nil
}

func (m *memBus) get(reg byte) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs[reg]
}

func (m *memBus) set(reg, val byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[reg] = val
}

func TestReadContinuous(t *testing.T) {
	mb := &memBus{}
	mb.set(RegDevID, DeviceID)
	d, err := newDev(mb, "adxl345", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.EnableMeasurement(); err != nil {
		t.Fatal(err)
	}
	if got := mb.get(RegPowerCtl); got&powerCtlMeasure == 0 {
		t.Fatalf("POWER_CTL = 0x%02X, measure bit not set", got)
	}
	mb.set(RegDataZ0, 0x80) // 128 counts = 0.5 g at 256 LSB/g

	ch, err := d.ReadContinuous(time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.ReadContinuous(time.Millisecond); err == nil {
		t.Error("second ReadContinuous did not fail")
	}
	a, ok := <-ch
	if !ok {
		t.Fatal("channel closed before first sample")
	}
	if a.Z != 0.5 {
		t.Errorf("Z = %v g, want 0.5", a.Z)
	}

	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	for range ch {
	}
	if got := mb.get(RegPowerCtl); got&powerCtlMeasure != 0 {
		t.Errorf("POWER_CTL = 0x%02X after Halt, want standby", got)
	}
}

func TestSetOffsets(t *testing.T) {
	mb := &memBus{}
	mb.set(RegDevID, DeviceID)
	d, err := newDev(mb, "adxl345", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SetOffsets(-1, 2, -128); err != nil {
		t.Fatal(err)
	}
	if got := mb.get(RegOfsX); got != 0xFF {
		t.Errorf("OFSX = 0x%02X, want 0xFF", got)
	}
	if got := mb.get(RegOfsY); got != 0x02 {
		t.Errorf("OFSY = 0x%02X, want 0x02", got)
	}
	if got := mb.get(RegOfsZ); got != 0x80 {
		t.Errorf("OFSZ = 0x%02X, want 0x80", got)
	}
}
