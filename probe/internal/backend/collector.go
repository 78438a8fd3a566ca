// Copyright (C) 2017 Librato, Inc. All rights reserved.

package backend

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/appoptics/probers-go/probe/internal/config"
	"github.com/appoptics/probers-go/probe/internal/host"
	"github.com/appoptics/probers-go/probe/internal/log"
	"github.com/appoptics/probers-go/probe/internal/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	collector "github.com/solarwinds/apm-proto/go/collectorpb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

const postEventsTimeout = 10 * time.Second

var errInvalidServiceKey = errors.New("invalid service key")

// CollectorOptions configures a CollectorTracer.
type CollectorOptions struct {
	Address     string
	ServiceKey  string
	TrustedPath string
	SkipVerify  bool
	Queue       config.QueueConfig

	// Client replaces the gRPC connection; Address and the TLS settings are
	// then ignored.
	Client collector.TraceCollectorClient
}

// CollectorTracer queues encoded events and posts them to the collector in
// batches over gRPC. A full queue drops the event.
type CollectorTracer struct {
	*registry

	client     collector.TraceCollectorClient
	conn       *grpc.ClientConn
	serviceKey string
	enc        encoder
	dropped    prometheus.Counter

	events        chan []byte
	batchSize     int
	flushInterval time.Duration

	// closed by Shutdown under closeMu; never sent on
	closeMu    sync.RWMutex
	done       chan struct{}
	doneClosed sync.Once
	flushed    chan struct{}
}

// NewCollector returns a started CollectorTracer.
func NewCollector(opts CollectorOptions, patterns []string) (*CollectorTracer, error) {
	if !config.IsValidServiceKey(opts.ServiceKey) {
		return nil, errInvalidServiceKey
	}

	t := &CollectorTracer{
		client:     opts.Client,
		serviceKey: opts.ServiceKey,
		enc:        bsonEncoder{},
		dropped:    metrics.DroppedCounter(config.BackendCollector),
		done:       make(chan struct{}),
		flushed:    make(chan struct{}),
	}
	if t.client == nil {
		conn, err := dialCollector(opts)
		if err != nil {
			return nil, errors.Wrapf(err, "connecting to %s", opts.Address)
		}
		t.conn = conn
		t.client = collector.NewTraceCollectorClient(conn)
	}

	q := opts.Queue
	q.Normalize()
	t.events = make(chan []byte, q.Size)
	t.batchSize = q.BatchSize
	t.flushInterval = q.Flush()

	t.registry = newRegistry(patterns, sinkFunc(t.emit))
	go t.eventSender()
	return t, nil
}

func dialCollector(opts CollectorOptions) (*grpc.ClientConn, error) {
	certPool, err := x509.SystemCertPool()
	if err != nil {
		certPool = x509.NewCertPool()
	}
	if opts.TrustedPath != "" {
		cert, err := os.ReadFile(opts.TrustedPath)
		if err != nil {
			return nil, errors.Wrap(err, "reading trusted certificate")
		}
		if ok := certPool.AppendCertsFromPEM(cert); !ok {
			return nil, errors.New("unable to append the certificate to pool")
		}
	}

	// trim port from server name used for TLS verification
	serverName, _, err := net.SplitHostPort(opts.Address)
	if err != nil {
		serverName = opts.Address
	}

	tlsConfig := &tls.Config{
		ServerName:         serverName,
		RootCAs:            certPool,
		InsecureSkipVerify: opts.SkipVerify,
	}
	return grpc.Dial(opts.Address, grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)))
}

func (t *CollectorTracer) closed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *CollectorTracer) emit(p *probe, args []WireValue) {
	// nothing is queued once done is closed, so the final drain sees every event
	t.closeMu.RLock()
	defer t.closeMu.RUnlock()
	if t.closed() {
		t.dropped.Inc()
		return
	}
	buf, err := t.enc.encode(newEvent(p, args))
	if err != nil {
		log.Debugf("Collector tracer dropped %s: %v", p.fullName, err)
		t.dropped.Inc()
		return
	}

	select {
	case t.events <- buf:
	default:
		log.Debugf("Event queue is full, dropped %s", p.fullName)
		t.dropped.Inc()
	}
}

// eventSender batches queued events until the batch is full or the flush
// interval passes. It drains the queue when the tracer is shut down.
func (t *CollectorTracer) eventSender() {
	defer func() {
		close(t.flushed)
		log.Info("eventSender goroutine exiting.")
	}()

	ticker := time.NewTicker(t.flushInterval)
	defer ticker.Stop()

	batch := make([][]byte, 0, t.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		t.postEvents(batch)
		batch = make([][]byte, 0, t.batchSize)
	}

	for {
		select {
		case m := <-t.events:
			batch = append(batch, m)
			if len(batch) >= t.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-t.done:
			for {
				select {
				case m := <-t.events:
					batch = append(batch, m)
					if len(batch) >= t.batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (t *CollectorTracer) postEvents(messages [][]byte) {
	ctx, cancel := context.WithTimeout(context.Background(), postEventsTimeout)
	defer cancel()

	pid, _ := safecast.Conv[int32](host.PID())
	request := &collector.MessageRequest{
		ApiKey:   t.serviceKey,
		Messages: messages,
		Encoding: collector.EncodingType_BSON,
		Identity: &collector.HostID{
			Hostname: host.Hostname(),
			Pid:      pid,
		},
	}
	start := time.Now()
	resp, err := t.client.PostEvents(ctx, request)
	if err == nil && resp.GetResult() != collector.ResultCode_OK {
		err = errors.Errorf("collector returned %s: %s", resp.GetResult(), resp.GetArg())
	}
	if err != nil {
		log.Infof("PostEvents failed, dropped %d events: %v", len(messages), err)
		t.dropped.Add(float64(len(messages)))
		return
	}
	log.Debugf("[PostEvents] sent %d events, rtt=%v", len(messages), time.Since(start))
}

// Shutdown stops accepting events and waits until the queue is flushed or
// ctx is done.
func (t *CollectorTracer) Shutdown(ctx context.Context) error {
	err := ErrShutdown
	t.doneClosed.Do(func() {
		err = nil
		log.Info("Shutting down the collector tracer.")
		t.closeMu.Lock()
		close(t.done)
		t.closeMu.Unlock()

		select {
		case <-t.flushed:
		case <-ctx.Done():
			err = ErrShutdownTimeout
		}
		if t.conn != nil {
			t.conn.Close()
		}
	})
	return err
}
