package event

import (
	"fmt"

	"github.com/deliverzler/functions/internal/domain"
	pkgkafka "github.com/deliverzler/functions/pkg/kafka"
)

// ChangeData is the payload of a document-change event: the document
// snapshots before and after the write. A create has no before, a delete no
// after.
type ChangeData[T any] struct {
	Before *T `json:"before"`
	After  *T `json:"after"`
}

// DecodeChange reads the snapshots of a document-change event.
func DecodeChange[T any](event *pkgkafka.Event) (domain.Change[T], error) {
	var data ChangeData[T]
	if err := event.UnmarshalData(&data); err != nil {
		return domain.Change[T]{}, fmt.Errorf("decode %s change %s: %w", event.EventType, event.AggregateID, err)
	}
	return domain.Change[T]{Before: data.Before, After: data.After}, nil
}
