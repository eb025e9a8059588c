package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_kafka_messages_published_total",
			Help: "Total number of messages written to Kafka",
		},
		[]string{"topic"},
	)

	messagesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_kafka_messages_failed_total",
			Help: "Total number of messages Kafka rejected",
		},
		[]string{"topic"},
	)
)
