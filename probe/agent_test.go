// Copyright (C) 2016 Librato, Inc. All rights reserved.

package probe

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestSetGetLogLevel(t *testing.T) {
	oldLevel := GetLogLevel()
	defer SetLogLevel(oldLevel)

	err := SetLogLevel("INVALID")
	assert.Equal(t, err, errInvalidLogLevel)

	assert.Nil(t, SetLogLevel("debug"))
	assert.Equal(t, "DEBUG", GetLogLevel())

	assert.Nil(t, SetLogLevel("WARN"))
	assert.Equal(t, "WARN", GetLogLevel())

	assert.Nil(t, SetLogLevel("3"))
	assert.Equal(t, "ERROR", GetLogLevel())
}

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	assert.NoError(t, RegisterMetrics(reg))
	// registering twice is harmless
	assert.NoError(t, RegisterMetrics(reg))
}
