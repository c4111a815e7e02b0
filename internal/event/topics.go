package event

import pkgkafka "github.com/deliverzler/functions/pkg/kafka"

// Document-change topics, one per trigger.
var (
	TopicOrderUpdated         = pkgkafka.Topic("orders", "updated")
	TopicDriverRequestCreated = pkgkafka.Topic("driver_requests", "created")
	TopicDriverRequestUpdated = pkgkafka.Topic("driver_requests", "updated")
	TopicStoreReviewWritten   = pkgkafka.Topic("store_reviews", "written")
)

// ConsumerGroupID is the default consumer group of the trigger consumers.
const ConsumerGroupID = "deliverzler-functions"

// Trigger names used in logs and metrics.
const (
	TriggerOrderUpdated         = "onOrderUpdated"
	TriggerDriverRequestCreated = "onDriverRequestCreated"
	TriggerDriverRequestUpdated = "onDriverRequestUpdated"
	TriggerStoreReviewWritten   = "onStoreReviewWritten"
)
