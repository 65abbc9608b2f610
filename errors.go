// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package adxl345

import "fmt"

// IDMismatchError is returned by NewI2C and NewSPI when the DEVID register
// does not hold the expected device ID. This usually means a wrong bus
// address or a different chip on the bus; the driver must not be used.
type IDMismatchError struct {
	Got  byte
	Want byte
}

func (e *IDMismatchError) Error() string {
	return fmt.Sprintf("adxl345: device ID 0x%02X, want 0x%02X", e.Got, e.Want)
}
