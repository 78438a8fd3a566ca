// Copyright (c) 2017 Librato, Inc. All rights reserved.

package host

import (
	"os"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPID(t *testing.T) {
	assert.Equal(t, os.Getpid(), PID())
}

func TestHostname(t *testing.T) {
	defer func() {
		getHostname = os.Hostname
		hostnameOnce = sync.Once{}
	}()

	calls := 0
	hostnameOnce = sync.Once{}
	getHostname = func() (string, error) {
		calls++
		return "probe-host", nil
	}
	assert.Equal(t, "probe-host", Hostname())
	assert.Equal(t, "probe-host", Hostname())
	assert.Equal(t, 1, calls)

	hostnameOnce = sync.Once{}
	getHostname = func() (string, error) { return "", errors.New("no name") }
	assert.Equal(t, "unknown", Hostname())
}
