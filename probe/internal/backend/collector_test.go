// Copyright (C) 2017 Librato, Inc. All rights reserved.

package backend

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/appoptics/probers-go/probe/internal/config"
	"github.com/appoptics/probers-go/probe/internal/host"
	"github.com/appoptics/probers-go/probe/internal/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	collector "github.com/solarwinds/apm-proto/go/collectorpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

const testServiceKey = "ae38315f6116585d64d82ec2455aa3ec61e02fee25d286f74ace9e4fea189217:Go Probes"

// fakeCollector implements PostEvents only; any other RPC panics.
type fakeCollector struct {
	collector.TraceCollectorClient

	mu       sync.Mutex
	requests []*collector.MessageRequest
	result   collector.ResultCode
	err      error
	block    chan struct{}
}

func (f *fakeCollector) PostEvents(ctx context.Context, in *collector.MessageRequest, opts ...grpc.CallOption) (*collector.MessageResult, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, in)
	if f.err != nil {
		return nil, f.err
	}
	return &collector.MessageResult{Result: f.result}, nil
}

func (f *fakeCollector) Requests() []*collector.MessageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*collector.MessageRequest(nil), f.requests...)
}

func newTestCollector(t *testing.T, fake *fakeCollector, q config.QueueConfig) *CollectorTracer {
	tr, err := NewCollector(CollectorOptions{
		ServiceKey: testServiceKey,
		Queue:      q,
		Client:     fake,
	}, []string{"*"})
	require.NoError(t, err)
	return tr
}

func TestCollectorTracer(t *testing.T) {
	fake := &fakeCollector{result: collector.ResultCode_OK}
	tr := newTestCollector(t, fake, config.QueueConfig{Size: 100, BatchSize: 2, FlushInterval: 60})
	toks := addProbes(t, tr, "jobs", map[string][]WireType{"run": {WireUint32}})

	for i := 0; i < 5; i++ {
		toks["run"].Fire([]WireValue{{Type: WireUint32, Bits: uint64(i)}})
	}
	require.NoError(t, tr.Shutdown(context.Background()))

	reqs := fake.Requests()
	var msgs [][]byte
	for _, req := range reqs {
		assert.Equal(t, testServiceKey, req.ApiKey)
		assert.Equal(t, collector.EncodingType_BSON, req.Encoding)
		assert.Equal(t, host.Hostname(), req.Identity.Hostname)
		assert.EqualValues(t, host.PID(), req.Identity.Pid)
		assert.True(t, len(req.Messages) <= 2)
		msgs = append(msgs, req.Messages...)
	}
	require.Len(t, msgs, 5)
	for i, msg := range msgs {
		m := decodeEvent(t, config.EncodingBSON, msg)
		assert.Equal(t, "jobs", m["Provider"])
		assert.Equal(t, "run", m["Probe"])
		assert.EqualValues(t, i, m["Args"].([]interface{})[0])
	}

	assert.Equal(t, ErrShutdown, tr.Shutdown(context.Background()))
}

func TestCollectorTracerFlushInterval(t *testing.T) {
	fake := &fakeCollector{result: collector.ResultCode_OK}
	tr := newTestCollector(t, fake, config.QueueConfig{Size: 100, BatchSize: 100, FlushInterval: 1})
	defer tr.Shutdown(context.Background())
	toks := addProbes(t, tr, "tick", map[string][]WireType{"p": nil})

	toks["p"].Fire(nil)
	assert.Eventually(t, func() bool { return len(fake.Requests()) == 1 },
		5*time.Second, 50*time.Millisecond)
}

func TestCollectorTracerQueueFull(t *testing.T) {
	fake := &fakeCollector{result: collector.ResultCode_OK, block: make(chan struct{})}
	tr := newTestCollector(t, fake, config.QueueConfig{Size: 1, BatchSize: 1, FlushInterval: 60})
	toks := addProbes(t, tr, "full", map[string][]WireType{"p": nil})

	dropped := metrics.DroppedCounter(config.BackendCollector)
	before := testutil.ToFloat64(dropped)
	for i := 0; i < 10; i++ {
		toks["p"].Fire(nil)
	}
	// at most one event in the sender and one in the queue
	assert.True(t, testutil.ToFloat64(dropped)-before >= 8)

	close(fake.block)
	require.NoError(t, tr.Shutdown(context.Background()))
}

func TestCollectorTracerPostFailure(t *testing.T) {
	fake := &fakeCollector{result: collector.ResultCode_TRY_LATER}
	tr := newTestCollector(t, fake, config.QueueConfig{Size: 10, BatchSize: 10, FlushInterval: 60})
	toks := addProbes(t, tr, "fail", map[string][]WireType{"p": nil})

	dropped := metrics.DroppedCounter(config.BackendCollector)
	before := testutil.ToFloat64(dropped)
	toks["p"].Fire(nil)
	toks["p"].Fire(nil)
	require.NoError(t, tr.Shutdown(context.Background()))
	assert.Equal(t, before+2, testutil.ToFloat64(dropped))

	fake = &fakeCollector{err: errors.New("unavailable")}
	tr = newTestCollector(t, fake, config.QueueConfig{Size: 10, BatchSize: 10, FlushInterval: 60})
	toks = addProbes(t, tr, "fail", map[string][]WireType{"p": nil})
	before = testutil.ToFloat64(dropped)
	toks["p"].Fire(nil)
	require.NoError(t, tr.Shutdown(context.Background()))
	assert.Equal(t, before+1, testutil.ToFloat64(dropped))
}

func TestCollectorTracerShutdownTimeout(t *testing.T) {
	fake := &fakeCollector{result: collector.ResultCode_OK, block: make(chan struct{})}
	defer close(fake.block)
	tr := newTestCollector(t, fake, config.QueueConfig{Size: 10, BatchSize: 1, FlushInterval: 60})
	toks := addProbes(t, tr, "slow", map[string][]WireType{"p": nil})
	toks["p"].Fire(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Equal(t, ErrShutdownTimeout, tr.Shutdown(ctx))
}

func TestCollectorTracerShutdownAccountsForEveryEvent(t *testing.T) {
	fake := &fakeCollector{result: collector.ResultCode_OK}
	tr := newTestCollector(t, fake, config.QueueConfig{Size: 1000, BatchSize: 7, FlushInterval: 60})
	toks := addProbes(t, tr, "race", map[string][]WireType{"p": nil})

	dropped := metrics.DroppedCounter(config.BackendCollector)
	before := testutil.ToFloat64(dropped)

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < perWorker; j++ {
				toks["p"].Fire(nil)
			}
		}()
	}
	close(start)
	require.NoError(t, tr.Shutdown(context.Background()))
	wg.Wait()

	sent := 0
	for _, req := range fake.Requests() {
		sent += len(req.Messages)
	}
	lost := testutil.ToFloat64(dropped) - before
	assert.Equal(t, float64(workers*perWorker), float64(sent)+lost)
	assert.Zero(t, len(tr.events))
}

func TestNewCollectorInvalidKey(t *testing.T) {
	_, err := NewCollector(CollectorOptions{ServiceKey: "short:key"}, nil)
	assert.Equal(t, errInvalidServiceKey, errors.Cause(err))
}
