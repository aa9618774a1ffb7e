package nats

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/docmeta/internal/core/domain"
	"github.com/kirillkom/docmeta/internal/infrastructure/resilience"
)

// Connection-level failures that a later attempt can get past.
var transientPublishErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrDisconnected,
	nats.ErrConnectionReconnecting,
	nats.ErrReconnectBufExceeded,
}

// Failures caused by the message itself. Resending the same payload to the
// same subject fails the same way.
var permanentPublishErrors = []error{
	nats.ErrMaxPayload,
	nats.ErrBadSubject,
}

// PublishError reports which result could not be announced and where.
type PublishError struct {
	Subject    string
	DocumentID string
	Err        error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish document %s to %q: %v", e.DocumentID, e.Subject, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// classifyPublishError decides whether a failed publish is worth another
// attempt. Cancellation is neither retried nor counted against the breaker.
func classifyPublishError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{}
	case matchesAny(err, permanentPublishErrors):
		return resilience.ErrorClassification{RecordFailure: true}
	case resilience.IsCircuitOpen(err), matchesAny(err, transientPublishErrors):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	default:
		return resilience.ErrorClassification{RecordFailure: true}
	}
}

// publishFailure attaches subject and document id to err. Transient failures
// are tagged domain.ErrTemporary, rejected messages domain.ErrInvalidInput.
func publishFailure(subject, documentID string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PublishError
	if !errors.As(err, &pe) {
		err = &PublishError{Subject: subject, DocumentID: documentID, Err: err}
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	switch {
	case classifyPublishError(err).Retryable:
		return domain.WrapError(domain.ErrTemporary, "nats.publish", err)
	case matchesAny(err, permanentPublishErrors):
		return domain.WrapError(domain.ErrInvalidInput, "nats.publish", err)
	default:
		return err
	}
}
