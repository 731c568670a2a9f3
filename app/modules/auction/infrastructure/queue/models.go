package auctionqueue

import (
	"time"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
)

const (
	// QueueAuction is the dedicated River queue for round jobs.
	QueueAuction = "auction"

	// TopicActivateRound carries ActivateRoundCommand messages from the
	// activation worker to the router.
	TopicActivateRound = "auction.round.activate"
)

// RoundActivationJob activates a scheduled round at its planned start.
type RoundActivationJob struct {
	RoundID string `json:"round_id"`
}

// Kind returns the job type identifier for River
func (RoundActivationJob) Kind() string { return "round_activation" }

// RoundClosingJob notifies that a round reached its end time. It never
// completes the round.
type RoundClosingJob struct {
	RoundID string    `json:"round_id"`
	EndTime time.Time `json:"end_time"`
}

// Kind returns the job type identifier for River
func (RoundClosingJob) Kind() string { return "round_closing" }

// RosterSyncJob delivers settled assignments to the season model.
type RosterSyncJob struct {
	RoundID     string                           `json:"round_id"`
	Assignments []auctiondomain.RosterAssignment `json:"assignments"`
}

// Kind returns the job type identifier for River
func (RosterSyncJob) Kind() string { return "roster_sync" }

// ActivateRoundCommand is published by the activation worker.
type ActivateRoundCommand struct {
	RoundID      string    `json:"round_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// RoundCloseableNotice is the payload of the round_closeable notification.
type RoundCloseableNotice struct {
	RoundID string    `json:"round_id"`
	EndTime time.Time `json:"end_time"`
}
