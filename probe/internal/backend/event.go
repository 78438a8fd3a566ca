// Copyright (C) 2017 Librato, Inc. All rights reserved.

package backend

import (
	"strings"
	"time"

	"github.com/appoptics/probers-go/probe/internal/bson"
	"github.com/appoptics/probers-go/probe/internal/config"
	"github.com/appoptics/probers-go/probe/internal/host"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Event is the record one fire turns into for the tracers that ship events
// off the process.
type Event struct {
	Provider  string
	Probe     string
	Timestamp time.Time
	Hostname  string
	PID       int
	Args      []WireValue
}

func newEvent(p *probe, args []WireValue) *Event {
	return &Event{
		Provider:  p.provider,
		Probe:     p.name,
		Timestamp: time.Now(),
		Hostname:  host.Hostname(),
		PID:       host.PID(),
		Args:      args,
	}
}

// encoder serializes an event. The returned bytes never alias the args.
type encoder interface {
	encode(e *Event) ([]byte, error)
	name() string
}

// ErrUnsupportedEncoding is returned for an unknown event encoding name.
var ErrUnsupportedEncoding = errors.New("unsupported event encoding")

func newEncoder(name string) (encoder, error) {
	switch strings.ToLower(name) {
	case config.EncodingBSON, "":
		return bsonEncoder{}, nil
	case config.EncodingMsgpack:
		return msgpackEncoder{}, nil
	}
	return nil, errors.Wrap(ErrUnsupportedEncoding, name)
}

type bsonEncoder struct{}

func (bsonEncoder) name() string { return config.EncodingBSON }

func (bsonEncoder) encode(e *Event) ([]byte, error) {
	w := bson.NewWriter()
	w.String("Provider", e.Provider)
	w.String("Probe", e.Probe)
	w.Int64("Timestamp_u", e.Timestamp.UnixNano()/1000)
	w.String("Hostname", e.Hostname)
	w.Int("PID", e.PID)

	args := w.BeginArray("Args")
	for i, a := range e.Args {
		k := bson.ArrayKey(i)
		switch {
		case a.Type == WireFloat64:
			w.Float64(k, a.Float())
		case a.Type == WireBytes:
			w.StringBytes(k, a.Data)
		default:
			// BSON has no unsigned integers; uint64 keeps its bits.
			w.Int64(k, a.Int())
		}
	}
	w.End(args)
	w.Close()

	if err := w.Err(); err != nil {
		return nil, errors.Wrapf(err, "encoding %s:%s", e.Provider, e.Probe)
	}
	return w.Bytes(), nil
}

type msgpackEvent struct {
	Provider  string        `msgpack:"Provider"`
	Probe     string        `msgpack:"Probe"`
	Timestamp int64         `msgpack:"Timestamp_u"`
	Hostname  string        `msgpack:"Hostname"`
	PID       int           `msgpack:"PID"`
	Args      []interface{} `msgpack:"Args"`
}

type msgpackEncoder struct{}

func (msgpackEncoder) name() string { return config.EncodingMsgpack }

func (msgpackEncoder) encode(e *Event) ([]byte, error) {
	args := make([]interface{}, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.Value()
	}
	buf, err := msgpack.Marshal(&msgpackEvent{
		Provider:  e.Provider,
		Probe:     e.Probe,
		Timestamp: e.Timestamp.UnixNano() / 1000,
		Hostname:  e.Hostname,
		PID:       e.PID,
		Args:      args,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s:%s", e.Provider, e.Probe)
	}
	return buf, nil
}
