// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts reading the current time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}
