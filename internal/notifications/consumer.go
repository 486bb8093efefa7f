package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
	"github.com/angelmondragon/dentalclinic-backend/pkg/metrics"
	"github.com/angelmondragon/dentalclinic-backend/pkg/outbox"
	"github.com/angelmondragon/dentalclinic-backend/pkg/outbox/payloads"
)

const confirmationConsumer = "appointment-notifications"

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

type appointmentLoader interface {
	FindAppointmentWithPatient(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
}

type idempotencyGuard interface {
	Claim(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Complete(ctx context.Context, consumer string, eventID uuid.UUID) error
	Release(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type payloadDecoder interface {
	Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (any, error)
}

// ConsumerParams bundles the notification worker dependencies.
type ConsumerParams struct {
	Subscription receiver
	Repository   appointmentLoader
	Idempotency  idempotencyGuard
	Decoders     payloadDecoder
	Sender       EmailSender
	Metrics      *metrics.NotificationMetrics
	Logger       *logger.Logger
}

// Consumer turns appointment confirmation events into patient emails.
type Consumer struct {
	subscription receiver
	repo         appointmentLoader
	idempotency  idempotencyGuard
	decoders     payloadDecoder
	sender       EmailSender
	metrics      *metrics.NotificationMetrics
	logg         *logger.Logger
}

// NewConsumer builds an appointment notification consumer.
func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Idempotency == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if params.Decoders == nil {
		return nil, fmt.Errorf("payload decoders required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: params.Subscription,
		repo:         params.Repository,
		idempotency:  params.Idempotency,
		decoders:     params.Decoders,
		sender:       params.Sender,
		metrics:      params.Metrics,
		logg:         params.Logger,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

var (
	ackResult  = processResult{ack: true}
	nackResult = processResult{nack: true}
)

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if eventType != string(enums.EventAppointmentConfirmed) {
		c.logg.Info(logCtx, "skipping unsupported event")
		return ackResult
	}

	envelope, eventID, err := outbox.ParseEnvelope(msg.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return ackResult
	}
	logCtx = c.logg.WithField(logCtx, "event_id", eventID.String())

	decoded, err := c.decoders.Decode(enums.EventAppointmentConfirmed, envelope.Version, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode payload", err)
		return ackResult
	}
	event, ok := decoded.(*payloads.AppointmentConfirmedEvent)
	if !ok {
		c.logg.Error(logCtx, "unexpected payload type", fmt.Errorf("got %T", decoded))
		return ackResult
	}
	logCtx = c.logg.WithAppointmentID(logCtx, event.AppointmentID.String())

	claimed, err := c.idempotency.Claim(ctx, confirmationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return nackResult
	}
	if !claimed {
		c.metrics.IncDuplicate()
		c.logg.Info(logCtx, "event already processed")
		return ackResult
	}

	if err := c.notify(ctx, logCtx, event); err != nil {
		c.metrics.IncFailed(confirmationKind)
		c.logg.Error(logCtx, "confirmation email failed", err)
		if releaseErr := c.idempotency.Release(ctx, confirmationConsumer, eventID); releaseErr != nil {
			c.logg.Error(logCtx, "failed to release idempotency key", releaseErr)
		}
		return nackResult
	}
	if err := c.idempotency.Complete(ctx, confirmationConsumer, eventID); err != nil {
		c.logg.Error(logCtx, "failed to mark event processed", err)
	}
	return ackResult
}

func (c *Consumer) notify(ctx, logCtx context.Context, event *payloads.AppointmentConfirmedEvent) error {
	appt, err := c.repo.FindAppointmentWithPatient(ctx, event.AppointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.logg.Warn(logCtx, "appointment no longer exists")
			return nil
		}
		return fmt.Errorf("load appointment: %w", err)
	}
	if appt.Status != enums.AppointmentStatusConfirmed {
		c.logg.Info(logCtx, "appointment no longer confirmed")
		return nil
	}
	if appt.Patient == nil {
		return fmt.Errorf("patient %s missing for appointment %s", appt.PatientID, appt.ID)
	}

	if err := c.sender.SendAppointmentConfirmation(ctx, *appt, *appt.Patient); err != nil {
		return err
	}
	c.metrics.IncSent(confirmationKind)
	c.logg.Info(logCtx, "confirmation email sent")
	return nil
}
