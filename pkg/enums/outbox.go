package enums

import (
	"fmt"
	"slices"
)

// Outbox enums mirror event_type_enum, aggregate_type_enum and
// outbox_dlq_error_reason_enum. Adding a value needs a migration too.
type (
	OutboxEventType      string
	OutboxAggregateType  string
	OutboxDLQErrorReason string
)

const (
	EventAppointmentConfirmed OutboxEventType = "appointment_confirmed"

	AggregateAppointment OutboxAggregateType = "appointment"

	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

var (
	outboxEventTypes     = []OutboxEventType{EventAppointmentConfirmed}
	outboxAggregateTypes = []OutboxAggregateType{AggregateAppointment}
	outboxDLQReasons     = []OutboxDLQErrorReason{OutboxDLQReasonMaxAttempts, OutboxDLQReasonNonRetryable}
)

func (e OutboxEventType) IsValid() bool      { return slices.Contains(outboxEventTypes, e) }
func (a OutboxAggregateType) IsValid() bool  { return slices.Contains(outboxAggregateTypes, a) }
func (r OutboxDLQErrorReason) IsValid() bool { return slices.Contains(outboxDLQReasons, r) }

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	return parseMember(outboxEventTypes, value, "event type")
}

func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	return parseMember(outboxAggregateTypes, value, "aggregate type")
}

func parseMember[T ~string](set []T, value, kind string) (T, error) {
	if candidate := T(value); slices.Contains(set, candidate) {
		return candidate, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, value)
}
