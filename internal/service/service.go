package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/taskpulse/internal/domain"
	"github.com/spec-kit/taskpulse/internal/events"
	"github.com/spec-kit/taskpulse/pkg/util"
)

// publishEvent stamps and enqueues an event. Publication happens after the
// mutation has committed and can never fail the operation.
func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	dispatcher.Publish(ctx, event)
}

func eventActor(actor domain.Actor) events.Actor {
	return events.Actor{ID: actor.ID, Role: actor.Role}
}

// asNotFound maps a missing-row error to the NotFound taxonomy entry naming
// the resource kind; other errors pass through.
func asNotFound(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewNotFound(resource, nil)
	}
	return err
}
