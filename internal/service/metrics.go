package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_created_total",
			Help: "Total number of stored chat messages",
		},
		[]string{"type"},
	)

	messagesDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_deleted_total",
			Help: "Total number of deleted chat messages",
		},
	)

	projectionDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_projection_dropped_total",
			Help: "Messages whose room did not match their participants and were not projected",
		},
	)

	profileFetchFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_profile_fetch_failures_total",
			Help: "Failed calls to the user profile service",
		},
	)

	searchIndexErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_search_index_errors_total",
			Help: "Failed search index operations",
		},
		[]string{"op"},
	)
)
