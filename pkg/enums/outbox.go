package enums

import "fmt"

// OutboxEventType names the domain events emitted through the outbox.
type OutboxEventType string

const (
	OutboxEventRequestSubmitted OutboxEventType = "request.submitted"
	OutboxEventRequestDecided   OutboxEventType = "request.decided"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventRequestSubmitted,
	OutboxEventRequestDecided,
}

// String implements fmt.Stringer.
func (t OutboxEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OutboxEventType.
func (t OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// OutboxAggregateType names the entity an outbox event refers to.
type OutboxAggregateType string

const (
	OutboxAggregateRequest OutboxAggregateType = "request"
	OutboxAggregateProduct OutboxAggregateType = "product"
	OutboxAggregateStore   OutboxAggregateType = "store"
)

var validOutboxAggregateTypes = []OutboxAggregateType{
	OutboxAggregateRequest,
	OutboxAggregateProduct,
	OutboxAggregateStore,
}

// String implements fmt.Stringer.
func (t OutboxAggregateType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OutboxAggregateType.
func (t OutboxAggregateType) IsValid() bool {
	for _, candidate := range validOutboxAggregateTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
