package graphrt

import (
	"context"

	"github.com/hanpama/snapgraph/internal/broker"
	"github.com/hanpama/snapgraph/internal/entity"
	"github.com/hanpama/snapgraph/internal/errs"
)

// fieldTopics maps subscription root fields to broker topics.
var fieldTopics = map[string]string{
	"newPhoto":      broker.TopicNewPhoto,
	"newUser":       broker.TopicNewUser,
	"newFriendship": broker.TopicNewFriendship,
}

// Subscribe registers interest in the event stream behind one subscription
// root field. The optional category argument on newPhoto narrows delivery at
// the broker, so non-matching photos never reach the subscriber queue.
func Subscribe(ctx context.Context, b *broker.Broker, field string, argv map[string]any) (*broker.Subscription, error) {
	topic, ok := fieldTopics[field]
	if !ok {
		return nil, errs.New(errs.CodeValidation, "unknown subscription field %q", field)
	}

	var filter broker.Filter
	if category, ok := argv["category"].(string); ok && category != "" {
		want := entity.PhotoCategory(category)
		filter = func(payload any) bool {
			p, ok := payload.(*entity.Photo)
			return ok && p.Category == want
		}
	}

	return b.Subscribe(ctx, topic, filter), nil
}
