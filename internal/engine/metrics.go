package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reactionsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oshi_reactions_total",
		Help: "Companion reactions added to posts",
	})

	commentsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oshi_comments_total",
		Help: "Companion comments added to posts",
	})

	chatReplies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oshi_chat_replies_total",
		Help: "Companion chat replies and greetings delivered",
	})

	notificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oshi_notifications_total",
		Help: "Notifications emitted",
	}, []string{"type"})

	syncFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oshi_sync_failures_total",
		Help: "Store or blob writes that failed after local state changed",
	}, []string{"operation"})

	rosterSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oshi_companions",
		Help: "Companions in the roster",
	})
)
