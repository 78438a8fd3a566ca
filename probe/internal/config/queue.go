// Copyright (C) 2017 Librato, Inc. All rights reserved.

package config

import (
	"strconv"
	"time"
)

// QueueConfig defines the event queue of the collector backend.
type QueueConfig struct {
	// Size is the maximum number of events waiting to be sent. Events fired
	// while the queue is full are dropped.
	Size int `yaml:",omitempty" env:"PROBERS_QUEUE_SIZE" default:"10000"`

	// BatchSize is the maximum number of events per PostEvents call
	BatchSize int `yaml:",omitempty" env:"PROBERS_BATCH_SIZE" default:"100"`

	// FlushInterval is the maximum time in seconds an event waits in the queue
	FlushInterval int `yaml:",omitempty" env:"PROBERS_FLUSH_INTERVAL" default:"2"`
}

// Flush returns FlushInterval as a duration.
func (q QueueConfig) Flush() time.Duration {
	return time.Duration(q.FlushInterval) * time.Second
}

// Normalize replaces every non-positive setting by its default and caps
// BatchSize at Size.
func (q *QueueConfig) Normalize() {
	positive := func(name string, v *int) {
		if *v <= 0 {
			n, _ := strconv.Atoi(discard(q, name, strconv.Itoa(*v)))
			*v = n
		}
	}
	positive("Size", &q.Size)
	positive("BatchSize", &q.BatchSize)
	positive("FlushInterval", &q.FlushInterval)
	if q.BatchSize > q.Size {
		q.BatchSize = q.Size
	}
}
