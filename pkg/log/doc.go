// SPDX-License-Identifier: BSD-3-Clause

// Package log provides the structured logger shared by every component of
// the fan-control daemon. It wraps log/slog around zerolog's console
// writer so ticks and configuration changes read as human-friendly lines
// on a terminal, while still giving every subsystem a typed, leveled
// logger via slog's key/value API.
//
// Call Init once at process startup (cmd/fancored does this from the CLI
// flags), then retrieve component loggers with Get:
//
//	log.Init(log.Options{Level: slog.LevelDebug, FilePath: "/var/log/fancored.log"})
//	logger := log.Get("bridge")
//	logger.Info("hardware bridge initialized", "controls", 3, "fans", 2)
package log
