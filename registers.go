// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package adxl345

import "strings"

// I²C addresses. The SDO/ALT ADDRESS pin selects between the two.
const (
	AddrLow  uint16 = 0x53 // SDO pin grounded
	AddrHigh uint16 = 0x1D // SDO pin high
)

// DeviceID is the fixed contents of the DEVID register.
const DeviceID byte = 0xE5

// Register addresses, per the register map in the datasheet. Registers 0x01
// to 0x1C are reserved and must not be accessed.
const (
	RegDevID        byte = 0x00 // Device ID (R)
	RegThreshTap    byte = 0x1D // Tap threshold, 62.5 mg/LSB (R/W)
	RegOfsX         byte = 0x1E // X-axis offset, 15.6 mg/LSB two's complement (R/W)
	RegOfsY         byte = 0x1F // Y-axis offset (R/W)
	RegOfsZ         byte = 0x20 // Z-axis offset (R/W)
	RegDur          byte = 0x21 // Tap duration, 625 µs/LSB (R/W)
	RegLatent       byte = 0x22 // Tap latency, 1.25 ms/LSB (R/W)
	RegWindow       byte = 0x23 // Tap window, 1.25 ms/LSB (R/W)
	RegThreshAct    byte = 0x24 // Activity threshold, 62.5 mg/LSB (R/W)
	RegThreshInact  byte = 0x25 // Inactivity threshold, 62.5 mg/LSB (R/W)
	RegTimeInact    byte = 0x26 // Inactivity time, 1 s/LSB (R/W)
	RegActInactCtl  byte = 0x27 // Axis enable control for activity/inactivity (R/W)
	RegThreshFF     byte = 0x28 // Free-fall threshold, 62.5 mg/LSB (R/W)
	RegTimeFF       byte = 0x29 // Free-fall time, 5 ms/LSB (R/W)
	RegTapAxes      byte = 0x2A // Axis control for single/double tap (R/W)
	RegActTapStatus byte = 0x2B // Source of single/double tap (R)
	RegBWRate       byte = 0x2C // Data rate and power mode control (R/W)
	RegPowerCtl     byte = 0x2D // Power-saving features control (R/W)
	RegIntEnable    byte = 0x2E // Interrupt enable control (R/W)
	RegIntMap       byte = 0x2F // Interrupt mapping control (R/W)
	RegIntSource    byte = 0x30 // Source of interrupts (R)
	RegDataFormat   byte = 0x31 // Data format control (R/W)
	RegDataX0       byte = 0x32 // X-axis data, low byte (R)
	RegDataX1       byte = 0x33 // X-axis data, high byte (R)
	RegDataY0       byte = 0x34 // Y-axis data, low byte (R)
	RegDataY1       byte = 0x35 // Y-axis data, high byte (R)
	RegDataZ0       byte = 0x36 // Z-axis data, low byte (R)
	RegDataZ1       byte = 0x37 // Z-axis data, high byte (R)
	RegFIFOCtl      byte = 0x38 // FIFO control (R/W)
	RegFIFOStatus   byte = 0x39 // FIFO status (R)
)

// DATA_FORMAT bits.
const (
	dataFormatRangeMask byte = 0x03
	dataFormatJustify   byte = 0x04
	dataFormatFullRes   byte = 0x08
	dataFormatIntInvert byte = 0x20
	dataFormatSPI3Wire  byte = 0x40
	dataFormatSelfTest  byte = 0x80
)

// POWER_CTL bits.
const (
	powerCtlWakeupMask byte = 0x03
	powerCtlSleep      byte = 0x04
	powerCtlMeasure    byte = 0x08
	powerCtlAutoSleep  byte = 0x10
	powerCtlLink       byte = 0x20
)

// BW_RATE bits.
const (
	bwRateRateMask byte = 0x0F
	bwRateLowPower byte = 0x10
)

// TAP_AXES bits.
const (
	tapAxesMask byte = 0x07
)

// Range selects the measurement span of the device.
type Range byte

const (
	Range2G  Range = 0x00 // ±2 g
	Range4G  Range = 0x01 // ±4 g
	Range8G  Range = 0x02 // ±8 g
	Range16G Range = 0x03 // ±16 g
)

func (r Range) String() string {
	switch r {
	case Range2G:
		return "±2g"
	case Range4G:
		return "±4g"
	case Range8G:
		return "±8g"
	case Range16G:
		return "±16g"
	}
	return "unknown"
}

// Rate is an output data rate code for the BW_RATE register. The bandwidth is
// half the output data rate.
type Rate byte

const (
	Rate0Hz10  Rate = 0x00 // 0.10 Hz
	Rate0Hz20  Rate = 0x01 // 0.20 Hz
	Rate0Hz39  Rate = 0x02 // 0.39 Hz
	Rate0Hz78  Rate = 0x03 // 0.78 Hz
	Rate1Hz56  Rate = 0x04 // 1.56 Hz
	Rate3Hz13  Rate = 0x05 // 3.13 Hz
	Rate6Hz25  Rate = 0x06 // 6.25 Hz
	Rate12Hz5  Rate = 0x07 // 12.5 Hz
	Rate25Hz   Rate = 0x08 // 25 Hz
	Rate50Hz   Rate = 0x09 // 50 Hz
	Rate100Hz  Rate = 0x0A // 100 Hz, the power-on default
	Rate200Hz  Rate = 0x0B // 200 Hz
	Rate400Hz  Rate = 0x0C // 400 Hz
	Rate800Hz  Rate = 0x0D // 800 Hz
	Rate1600Hz Rate = 0x0E // 1600 Hz
	Rate3200Hz Rate = 0x0F // 3200 Hz
)

// Interrupt is a set of interrupt sources, as laid out in the INT_ENABLE,
// INT_MAP and INT_SOURCE registers.
type Interrupt byte

const (
	Overrun    Interrupt = 1 << 0
	Watermark  Interrupt = 1 << 1
	FreeFall   Interrupt = 1 << 2
	Inactivity Interrupt = 1 << 3
	Activity   Interrupt = 1 << 4
	DoubleTap  Interrupt = 1 << 5
	SingleTap  Interrupt = 1 << 6
	DataReady  Interrupt = 1 << 7
)

var interruptNames = []struct {
	bit  Interrupt
	name string
}{
	{DataReady, "data-ready"},
	{SingleTap, "single-tap"},
	{DoubleTap, "double-tap"},
	{Activity, "activity"},
	{Inactivity, "inactivity"},
	{FreeFall, "free-fall"},
	{Watermark, "watermark"},
	{Overrun, "overrun"},
}

func (i Interrupt) String() string {
	var names []string
	for _, n := range interruptNames {
		if i&n.bit != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Tap axis participation bits for ConfigureTap.
const (
	TapAxisZ byte = 1 << 0
	TapAxisY byte = 1 << 1
	TapAxisX byte = 1 << 2
)

// DataFormat mirrors the DATA_FORMAT register. Exactly one Range is active at
// a time; FullResolution changes the scale factor formula but not the register
// width. The driver keeps samples right justified, so Justify should normally
// be left false.
type DataFormat struct {
	Range          Range
	FullResolution bool
	Justify        bool
	SelfTest       bool
	IntInvert      bool
	SPI3Wire       bool
}

func (f DataFormat) encode() byte {
	b := byte(f.Range) & dataFormatRangeMask
	if f.FullResolution {
		b |= dataFormatFullRes
	}
	if f.Justify {
		b |= dataFormatJustify
	}
	if f.SelfTest {
		b |= dataFormatSelfTest
	}
	if f.IntInvert {
		b |= dataFormatIntInvert
	}
	if f.SPI3Wire {
		b |= dataFormatSPI3Wire
	}
	return b
}

func decodeDataFormat(b byte) DataFormat {
	return DataFormat{
		Range:          Range(b & dataFormatRangeMask),
		FullResolution: b&dataFormatFullRes != 0,
		Justify:        b&dataFormatJustify != 0,
		SelfTest:       b&dataFormatSelfTest != 0,
		IntInvert:      b&dataFormatIntInvert != 0,
		SPI3Wire:       b&dataFormatSPI3Wire != 0,
	}
}
