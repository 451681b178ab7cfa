// SPDX-License-Identifier: BSD-3-Clause

// Package process wraps a service.Service into an oversight.ChildProcess,
// recovering panics into errors so one failing component doesn't take
// down the whole supervision tree.
package process

import (
	"context"
	"fmt"

	"cirello.io/oversight/v2"
	"github.com/nats-io/nats.go"

	"github.com/gofancontrol/fancore/service"
)

// New creates an oversight.ChildProcess that runs s with the given
// connection provider, converting any panic into an error tagged with
// the service's name.
func New(s service.Service, ipcConn nats.InProcessConnProvider) oversight.ChildProcess {
	return func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s panicked: %v", s.Name(), r)
			}
		}()

		return s.Run(ctx, ipcConn)
	}
}
