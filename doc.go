// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package adxl345 controls an Analog Devices ADXL345/ADXL343 3-axis digital
// accelerometer over I²C or SPI.
//
// The driver exposes the register-level operations of the device: measurement
// range and output data rate selection, power mode control, interrupt
// configuration and raw or gravity-scaled acceleration reads. Samples are read
// from the six data registers in a single burst so all three axes belong to
// the same conversion.
//
// The device powers up in standby; call EnableMeasurement before reading.
//
// # Datasheet
//
// https://www.analog.com/media/en/technical-documentation/data-sheets/ADXL345.pdf
package adxl345
