package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
	"github.com/angelmondragon/dentalclinic-backend/pkg/outbox/payloads"
)

var errEmptyPayload = errors.New("payload is empty")

// Schema is the contract of one event type at one payload version. The
// publisher and the consumers decode through the same Schema.
type Schema struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	Version       int
	decode        func(json.RawMessage) (any, error)
}

// Decode parses data into the schema's payload type and checks it.
func (s Schema) Decode(data json.RawMessage) (any, error) {
	if s.decode == nil {
		return nil, fmt.Errorf("no decoder for %s@v%d", s.EventType, s.Version)
	}
	return s.decode(data)
}

// AppointmentConfirmedV1 carries the data for the confirmation email.
var AppointmentConfirmedV1 = Schema{
	EventType:     enums.EventAppointmentConfirmed,
	AggregateType: enums.AggregateAppointment,
	Version:       payloads.AppointmentConfirmedVersion,
	decode: typed(func(e *payloads.AppointmentConfirmedEvent) error {
		if e.AppointmentID == uuid.Nil {
			return errors.New("appointment id missing")
		}
		return nil
	}),
}

// Schemas lists every schema this build can publish or consume.
func Schemas() []Schema {
	return []Schema{AppointmentConfirmedV1}
}

func typed[T any](check func(*T) error) func(json.RawMessage) (any, error) {
	return func(raw json.RawMessage) (any, error) {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			return nil, errEmptyPayload
		}
		var payload T
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return nil, err
		}
		if check != nil {
			if err := check(&payload); err != nil {
				return nil, err
			}
		}
		return &payload, nil
	}
}

type schemaKey struct {
	eventType enums.OutboxEventType
	version   int
}

// Decoders looks schemas up by event type and version on the consumer side.
// It is read-only after construction.
type Decoders struct {
	schemas map[schemaKey]Schema
}

func NewDecoders(schemas ...Schema) *Decoders {
	d := &Decoders{schemas: make(map[schemaKey]Schema, len(schemas))}
	for _, s := range schemas {
		d.schemas[schemaKey{s.EventType, s.Version}] = s
	}
	return d
}

// NewNotificationDecoders holds the schemas the notification worker reads.
func NewNotificationDecoders() *Decoders {
	return NewDecoders(AppointmentConfirmedV1)
}

func (d *Decoders) Lookup(eventType enums.OutboxEventType, version int) (Schema, bool) {
	s, ok := d.schemas[schemaKey{eventType, version}]
	return s, ok
}

func (d *Decoders) Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (any, error) {
	s, ok := d.Lookup(eventType, version)
	if !ok {
		return nil, fmt.Errorf("decoder not registered for %s@v%d", eventType, version)
	}
	return s.Decode(payload)
}
