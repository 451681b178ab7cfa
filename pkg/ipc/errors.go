// SPDX-License-Identifier: BSD-3-Clause

package ipc

import "errors"

var (
	// ErrConnectionNotAvailable indicates the embedded server has not
	// been created yet.
	ErrConnectionNotAvailable = errors.New("ipc connection not available")
	// ErrServerNotReady indicates the embedded server did not become
	// ready for connections within its wait window.
	ErrServerNotReady = errors.New("ipc server not ready for connections")
	// ErrInProcessConnFailed indicates the in-process connection could
	// not be created against an otherwise-ready server.
	ErrInProcessConnFailed = errors.New("failed to create in-process connection")
)
