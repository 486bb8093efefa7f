package outbox

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseEnvelope(t *testing.T) {
	id := uuid.New()
	envelope, got, err := ParseEnvelope([]byte(`{"version":2,"eventId":"` + id.String() + `","data":{"a":1}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != id || envelope.Version != 2 {
		t.Fatalf("unexpected envelope %+v id %s", envelope, got)
	}
	if string(envelope.Data) != `{"a":1}` {
		t.Fatalf("unexpected data %s", envelope.Data)
	}
}

func TestParseEnvelopeRejects(t *testing.T) {
	for name, raw := range map[string]string{
		"malformed":  `{`,
		"no version": `{"eventId":"` + uuid.NewString() + `"}`,
		"bad id":     `{"version":1,"eventId":"nope"}`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, _, err := ParseEnvelope([]byte(raw)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
