// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package adxl345

// signExtend interprets the low bits of raw as an n-bit two's-complement
// value. Bits above n are ignored.
func signExtend(raw uint16, bits uint) int16 {
	shift := 16 - bits
	return int16(raw<<shift) >> shift
}

// bitWidth returns the number of significant output bits for a range and
// resolution mode. In full resolution the width grows with the range so the
// scale stays constant; in 10-bit mode the width is fixed.
func bitWidth(r Range, fullRes bool) uint {
	if !fullRes {
		return 10
	}
	switch r {
	case Range2G:
		return 10
	case Range4G:
		return 11
	case Range8G:
		return 12
	case Range16G:
		return 13
	}
	panic("adxl345: invalid range")
}

// scaleFactor returns standard gravities per count. Full resolution keeps
// 256 LSB/g (3.9 mg/LSB) across all ranges; in 10-bit mode the sensitivity
// halves with each range step.
func scaleFactor(r Range, fullRes bool) float64 {
	if fullRes {
		return 1.0 / 256
	}
	switch r {
	case Range2G:
		return 1.0 / 256
	case Range4G:
		return 1.0 / 128
	case Range8G:
		return 1.0 / 64
	case Range16G:
		return 1.0 / 32
	}
	panic("adxl345: invalid range")
}
