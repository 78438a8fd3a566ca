// Copyright (c) 2017 Librato, Inc. All rights reserved.

// Package host caches the process identity stamped on probe events.
package host

import (
	"os"
	"sync"

	"github.com/appoptics/probers-go/probe/internal/config"
	"github.com/appoptics/probers-go/probe/internal/log"
)

var (
	pid = os.Getpid()

	hostnameOnce sync.Once
	hostname     string

	// for testing
	getHostname = os.Hostname
)

// PID returns the cached process ID
func PID() int {
	return pid
}

// ConfiguredHostname returns the hostname configured by user
func ConfiguredHostname() string {
	return config.GetHostAlias()
}

// Hostname returns the configured alias if there is one, otherwise the
// system hostname. The system hostname is looked up once.
func Hostname() string {
	if alias := ConfiguredHostname(); alias != "" {
		return alias
	}
	hostnameOnce.Do(func() {
		h, err := getHostname()
		if err != nil {
			log.Warningf("Unable to get hostname: %v", err)
			h = "unknown"
		}
		hostname = h
	})
	return hostname
}
