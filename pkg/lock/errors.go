// SPDX-License-Identifier: BSD-3-Clause

package lock

import "errors"

// ErrAlreadyLocked is returned by Acquire when another process already
// holds the lock.
var ErrAlreadyLocked = errors.New("another instance is already running")
