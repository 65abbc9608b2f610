// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package adxl345

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// SPI bus parameters used by NewSPI. The device supports up to 5 MHz.
var (
	SPIFrequency = 2 * physic.MegaHertz
	SPIMode      = spi.Mode3
	SPIBits      = 8
)

// Opts holds the configuration options applied at construction.
type Opts struct {
	// Range is the measurement span written to DATA_FORMAT.
	Range Range
	// FullResolution keeps the scale at 3.9 mg/LSB across all ranges by
	// widening the output word instead of coarsening it.
	FullResolution bool
	// ExpectedDeviceID overrides the DEVID check value. Leave 0 for the
	// ADXL345/ADXL343 default of 0xE5.
	ExpectedDeviceID byte
}

// DefaultOpts is the recommended default configuration.
var DefaultOpts = Opts{
	Range:          Range2G,
	FullResolution: true,
}

// Acceleration is one sample of all three axes, in standard gravities
// (1 g ≈ 9.80665 m/s²).
type Acceleration struct {
	X, Y, Z float64
}

func (a Acceleration) String() string {
	return fmt.Sprintf("X:%+.3fg Y:%+.3fg Z:%+.3fg", a.X, a.Y, a.Z)
}

// Dev is a driver for the ADXL345 accelerometer.
//
// A Dev owns its bus connection exclusively. All methods are safe for use
// with a running ReadContinuous, but the driver performs no other
// synchronization; sharing one device between independent goroutines beyond
// that is the caller's problem.
type Dev struct {
	t    transport
	name string

	mu     sync.Mutex
	format DataFormat
	scale  float64 // g per count, derived from format
	width  uint    // significant output bits, derived from format
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewI2C returns a driver for an ADXL345 on an I²C bus. addr is AddrLow
// (0x53) or AddrHigh (0x1D) depending on the SDO pin. opts may be nil for
// DefaultOpts.
//
// The device ID is verified and the requested data format is written; the
// device is left in standby, call EnableMeasurement before reading.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	return newDev(&i2cTransport{d: &i2c.Dev{Bus: b, Addr: addr}}, "adxl345", opts)
}

// NewSPI returns a driver for an ADXL345 on a 4-wire SPI port. opts may be
// nil for DefaultOpts.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	c, err := p.Connect(SPIFrequency, SPIMode, SPIBits)
	if err != nil {
		return nil, fmt.Errorf("adxl345: connect: %w", err)
	}
	return newDev(&spiTransport{c: c}, "adxl345", opts)
}

func newDev(t transport, name string, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{t: t, name: name}

	var id [1]byte
	if err := d.t.readReg(RegDevID, id[:]); err != nil {
		return nil, fmt.Errorf("adxl345: read device ID: %w", err)
	}
	want := opts.ExpectedDeviceID
	if want == 0 {
		want = DeviceID
	}
	if id[0] != want {
		return nil, &IDMismatchError{Got: id[0], Want: want}
	}

	// Write the requested range and resolution rather than trusting the
	// reset defaults, so the conversion cache is correct even after a warm
	// restart against an already configured device.
	f := byte(opts.Range)
	if opts.FullResolution {
		f |= dataFormatFullRes
	}
	if err := d.updateReg(RegDataFormat, dataFormatRangeMask|dataFormatFullRes, f); err != nil {
		return nil, fmt.Errorf("adxl345: write data format: %w", err)
	}
	d.format = DataFormat{Range: opts.Range, FullResolution: opts.FullResolution}
	d.cacheScale()
	return d, nil
}

func (d *Dev) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fmt.Sprintf("%s{%s}", d.name, d.format.Range)
}

// cacheScale must be called with d.mu held after every format change.
func (d *Dev) cacheScale() {
	d.scale = scaleFactor(d.format.Range, d.format.FullResolution)
	d.width = bitWidth(d.format.Range, d.format.FullResolution)
}

// Format returns the cached data format setting.
func (d *Dev) Format() DataFormat {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.format
}

// SetRange selects the measurement span. The other DATA_FORMAT flags are
// preserved. Valid in standby and in measurement mode.
func (d *Dev) SetRange(r Range) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.updateReg(RegDataFormat, dataFormatRangeMask, byte(r)); err != nil {
		return fmt.Errorf("adxl345: set range: %w", err)
	}
	d.format.Range = r
	d.cacheScale()
	return nil
}

// SetFullResolution toggles full-resolution mode. The other DATA_FORMAT flags
// are preserved.
func (d *Dev) SetFullResolution(full bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v byte
	if full {
		v = dataFormatFullRes
	}
	if err := d.updateReg(RegDataFormat, dataFormatFullRes, v); err != nil {
		return fmt.Errorf("adxl345: set resolution: %w", err)
	}
	d.format.FullResolution = full
	d.cacheScale()
	return nil
}

// SetDataRate selects the output data rate. The low-power bit sharing the
// BW_RATE register is preserved.
func (d *Dev) SetDataRate(rate Rate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.updateReg(RegBWRate, bwRateRateMask, byte(rate)); err != nil {
		return fmt.Errorf("adxl345: set data rate: %w", err)
	}
	return nil
}

// SetLowPower toggles the reduced-power oscillator mode, trading noise for
// supply current. Useful at output data rates between 12.5 Hz and 400 Hz.
func (d *Dev) SetLowPower(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v byte
	if on {
		v = bwRateLowPower
	}
	if err := d.updateReg(RegBWRate, bwRateLowPower, v); err != nil {
		return fmt.Errorf("adxl345: set low power: %w", err)
	}
	return nil
}

// EnableMeasurement takes the device out of standby. Idempotent. Data is
// valid roughly one output interval after the mode change.
func (d *Dev) EnableMeasurement() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.updateReg(RegPowerCtl, powerCtlMeasure, powerCtlMeasure); err != nil {
		return fmt.Errorf("adxl345: enable measurement: %w", err)
	}
	return nil
}

// Standby places the device in standby, its lowest-power state. Idempotent.
// The data registers keep their last contents; reads performed in standby
// return that stale data.
func (d *Dev) Standby() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.updateReg(RegPowerCtl, powerCtlMeasure, 0); err != nil {
		return fmt.Errorf("adxl345: standby: %w", err)
	}
	return nil
}

// SetOffsets writes the per-axis offset adjustment registers. Offsets are in
// two's-complement counts of 15.6 mg/LSB regardless of the selected range,
// and are added to every sample inside the device.
func (d *Dev) SetOffsets(x, y, z int8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, w := range []struct {
		reg byte
		val int8
	}{{RegOfsX, x}, {RegOfsY, y}, {RegOfsZ, z}} {
		if err := d.t.writeReg(w.reg, byte(w.val)); err != nil {
			return fmt.Errorf("adxl345: set offsets: %w", err)
		}
	}
	return nil
}

// thresholdReg maps an interrupt source to its threshold register, when it
// has one.
func thresholdReg(which Interrupt) (byte, bool) {
	switch which {
	case SingleTap, DoubleTap:
		return RegThreshTap, true
	case Activity:
		return RegThreshAct, true
	case Inactivity:
		return RegThreshInact, true
	case FreeFall:
		return RegThreshFF, true
	}
	return 0, false
}

// ConfigureInterrupt programs the threshold for one interrupt source and
// enables or disables it in INT_ENABLE, preserving the other sources.
//
// Thresholds are raw device counts on their own fixed scale (62.5 mg/LSB for
// tap, activity, inactivity and free-fall), independent of the main range
// setting. Sources without a threshold register (DataReady, Watermark,
// Overrun) ignore the threshold argument. Routing the source to one of the
// two interrupt pins and servicing the pin is the caller's responsibility.
func (d *Dev) ConfigureInterrupt(which Interrupt, threshold byte, enable bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if reg, ok := thresholdReg(which); ok && enable {
		if err := d.t.writeReg(reg, threshold); err != nil {
			return fmt.Errorf("adxl345: write threshold: %w", err)
		}
	}
	var v byte
	if enable {
		v = byte(which)
	}
	if err := d.updateReg(RegIntEnable, byte(which), v); err != nil {
		return fmt.Errorf("adxl345: configure interrupt: %w", err)
	}
	return nil
}

// ConfigureTap programs the tap detection engine: threshold (62.5 mg/LSB),
// maximum tap duration (625 µs/LSB), double-tap latency and window
// (1.25 ms/LSB each) and the participating axes (TapAxisX|TapAxisY|TapAxisZ).
// Enable SingleTap or DoubleTap with ConfigureInterrupt afterwards.
func (d *Dev) ConfigureTap(threshold, duration, latency, window, axes byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, w := range []struct {
		reg, val byte
	}{
		{RegThreshTap, threshold},
		{RegDur, duration},
		{RegLatent, latency},
		{RegWindow, window},
	} {
		if err := d.t.writeReg(w.reg, w.val); err != nil {
			return fmt.Errorf("adxl345: configure tap: %w", err)
		}
	}
	if err := d.updateReg(RegTapAxes, tapAxesMask, axes); err != nil {
		return fmt.Errorf("adxl345: configure tap: %w", err)
	}
	return nil
}

// ReadInterruptSource returns the set of interrupt conditions that have
// fired. Reading the register clears the latched bits.
func (d *Dev) ReadInterruptSource() (Interrupt, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf [1]byte
	if err := d.t.readReg(RegIntSource, buf[:]); err != nil {
		return 0, fmt.Errorf("adxl345: read interrupt source: %w", err)
	}
	return Interrupt(buf[0]), nil
}

// readRaw must be called with d.mu held.
func (d *Dev) readRaw() (x, y, z int16, err error) {
	// One burst over all six data registers so the three axes belong to the
	// same sample; the device's output double buffering keeps the set
	// coherent for the duration of the read.
	var buf [6]byte
	if err = d.t.readReg(RegDataX0, buf[:]); err != nil {
		return 0, 0, 0, fmt.Errorf("adxl345: read data registers: %w", err)
	}
	x = signExtend(binary.LittleEndian.Uint16(buf[0:2]), d.width)
	y = signExtend(binary.LittleEndian.Uint16(buf[2:4]), d.width)
	z = signExtend(binary.LittleEndian.Uint16(buf[4:6]), d.width)
	return x, y, z, nil
}

// ReadRaw returns one sample of all three axes in device counts, sign
// extended to the bit width of the active range and resolution mode.
func (d *Dev) ReadRaw() (x, y, z int16, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readRaw()
}

// ReadAcceleration returns one sample of all three axes in standard
// gravities, scaled by the cached range/resolution setting.
//
// The device must be in measurement mode for the sample to be current; in
// standby the registers hold whatever the device last produced and that is
// returned unmodified.
func (d *Dev) ReadAcceleration() (Acceleration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	x, y, z, err := d.readRaw()
	if err != nil {
		return Acceleration{}, err
	}
	return Acceleration{
		X: float64(x) * d.scale,
		Y: float64(y) * d.scale,
		Z: float64(z) * d.scale,
	}, nil
}

// ReadContinuous samples the device at the given interval and delivers the
// readings on the returned channel until Halt is called. Samples are dropped
// when the receiver lags or a read fails. Only one ReadContinuous may run at
// a time.
func (d *Dev) ReadContinuous(interval time.Duration) (<-chan Acceleration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil, errors.New("adxl345: ReadContinuous already running")
	}
	d.stop = make(chan struct{})
	d.wg.Add(1)
	ch := make(chan Acceleration, 16)
	go func(stop chan struct{}) {
		defer d.wg.Done()
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				a, err := d.ReadAcceleration()
				if err != nil {
					continue
				}
				select {
				case ch <- a:
				default:
				}
			}
		}
	}(d.stop)
	return ch, nil
}

// Halt stops a running ReadContinuous and places the device in standby.
// Implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	stop := d.stop
	d.stop = nil
	d.mu.Unlock()
	if stop != nil {
		close(stop)
		d.wg.Wait()
	}
	return d.Standby()
}

var _ conn.Resource = &Dev{}
