// SPDX-License-Identifier: BSD-3-Clause

// Package bridge defines the Hardware Bridge contract: the single
// seam between the Update Engine and the machine's actual sensors and
// PWM controls. Production code talks to a hwmon-backed Bridge; tests
// talk to the deterministic fake in fake.go. Both honor the same
// reset-on-shutdown guarantee: any control the bridge ever switched
// out of its startup mode is switched back before the bridge releases
// its platform handle.
package bridge
