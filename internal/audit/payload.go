package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
)

// Payload is the wire form of an activity event published to external
// subscribers.
type Payload struct {
	Actor     PayloadActor   `json:"actor"`
	Type      string         `json:"type"`
	Resource  string         `json:"resource"`
	Object    *PayloadObject `json:"object"`
	Timestamp time.Time      `json:"timestamp"`
	Took      int64          `json:"took"`
	Total     *int           `json:"total,omitempty"`
}

type PayloadActor struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type PayloadObject struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// NewPayload converts event to its wire form. Total is set only for
// collection reads.
func NewPayload(event domain.ActivityEvent) Payload {
	p := Payload{
		Actor:     PayloadActor{ID: event.Actor.ID, Type: event.Actor.Type.String()},
		Type:      event.Type.String(),
		Resource:  event.Resource,
		Timestamp: event.Timestamp.UTC(),
		Took:      event.Took,
	}
	if event.Object != nil {
		p.Object = &PayloadObject{ID: event.Object.ID, Type: event.Object.Type, Data: event.Object.Data}
	} else {
		total := event.Total
		p.Total = &total
	}
	return p
}

// Encode returns the JSON wire form of event.
func Encode(event domain.ActivityEvent) ([]byte, error) {
	data, err := json.Marshal(NewPayload(event))
	if err != nil {
		return nil, fmt.Errorf("encode activity event: %w", err)
	}
	return data, nil
}
