// Package broker bridges pipelines to external transports.
//
// The pipeline core is an in-process API with no wire protocol; this package
// is the external collaborator that feeds entry queues from a transport and
// drains exit queues back to it. A Source pumps envelopes from a Redis list
// into a queue.Sender; a Sink pumps a queue.Receiver back into a Redis list.
//
// Envelopes carry an ID, an origin, and a JSON payload, so items stay
// thread-transferable values end to end.
package broker

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fxsml/flowline"
)

// ErrNoKey is returned when a Source or Sink is created without a list key.
var ErrNoKey = errors.New("broker: missing key")

// Envelope is the unit of transport: an opaque JSON payload with identity.
type Envelope struct {
	// ID uniquely identifies the envelope; NewEnvelope assigns a UUID.
	ID string `json:"id"`
	// Source names the producer, e.g. a service or terminal identifier.
	Source string `json:"source,omitempty"`
	// Time is the creation time in UTC.
	Time time.Time `json:"time"`
	// Data is the JSON-encoded payload.
	Data json.RawMessage `json:"data"`
}

// NewEnvelope wraps v in an envelope with a fresh UUID.
func NewEnvelope(source string, v any) (*Envelope, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		ID:     uuid.NewString(),
		Source: source,
		Time:   time.Now().UTC(),
		Data:   data,
	}, nil
}

// Decode unmarshals the payload into v.
func (e *Envelope) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Config configures a Source or Sink.
type Config struct {
	// Key is the Redis list key. Required.
	Key string

	// PollInterval is how long a Source sleeps when the list is empty.
	// Default: 100ms.
	PollInterval time.Duration

	// Logger used for pump lifecycle and decode failures.
	// Default: flowline.DefaultLogger().
	Logger flowline.Logger
}

func (c Config) parse() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 100 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = flowline.DefaultLogger()
	}
	return c
}
