package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mirrornet-backend-go/pkg/messagequeue"
)

// activityQueue is the queue downstream workers consume activity events from.
const activityQueue = "mirrornet.activity"

// ActivityEvent is the payload published for user-visible activity such as
// invites, reveal requests and goal suggestions.
type ActivityEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ActorID    string    `json:"actorId"`
	TargetID   string    `json:"targetId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// publishActivity emits an activity event on the queue. Publishing is best
// effort: a nil queue or a publish failure never affects the caller.
func publishActivity(queue messagequeue.MessageQueue, eventType, actorID, targetID string) {
	if queue == nil {
		return
	}

	event := ActivityEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		ActorID:    actorID,
		TargetID:   targetID,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		fmt.Printf("Warning: failed to encode %s event: %v\n", eventType, err)
		return
	}
	if err := queue.Publish(activityQueue, payload); err != nil {
		fmt.Printf("Warning: failed to publish %s event: %v\n", eventType, err)
	}
}
