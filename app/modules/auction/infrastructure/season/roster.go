package season

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaRosterSink writes one message per assignment, keyed by team so a
// team's roster changes stay ordered within a partition.
type KafkaRosterSink struct {
	writer MessageWriter
	logger *slog.Logger
}

// NewKafkaWriter builds the writer for the roster topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaRosterSink creates a KafkaRosterSink.
func NewKafkaRosterSink(writer MessageWriter, logger *slog.Logger) *KafkaRosterSink {
	return &KafkaRosterSink{writer: writer, logger: logger}
}

// PublishAssignments writes the batch in one call.
func (s *KafkaRosterSink) PublishAssignments(ctx context.Context, roundID string, assignments []auctiondomain.RosterAssignment) error {
	now := time.Now().UTC()
	msgs := make([]kafka.Message, 0, len(assignments))
	for _, a := range assignments {
		value, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to marshal roster assignment: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(a.TeamID),
			Value: value,
			Time:  now,
			Headers: []kafka.Header{
				{Key: "round_id", Value: []byte(roundID)},
				{Key: "player_id", Value: []byte(a.PlayerID)},
			},
		})
	}

	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write roster assignments: %w", err)
	}

	s.logger.InfoContext(ctx, "Roster assignments published",
		attr.String("round_id", roundID),
		attr.Int("count", len(msgs)),
	)
	return nil
}

// Close closes the writer.
func (s *KafkaRosterSink) Close() error {
	return s.writer.Close()
}

// LogRosterSink only logs assignments. It is used when no brokers are
// configured.
type LogRosterSink struct {
	logger *slog.Logger
}

// NewLogRosterSink creates a LogRosterSink.
func NewLogRosterSink(logger *slog.Logger) *LogRosterSink {
	return &LogRosterSink{logger: logger}
}

func (s *LogRosterSink) PublishAssignments(ctx context.Context, roundID string, assignments []auctiondomain.RosterAssignment) error {
	for _, a := range assignments {
		s.logger.InfoContext(ctx, "Roster assignment",
			attr.String("round_id", roundID),
			attr.String("team_id", a.TeamID),
			attr.String("player_id", a.PlayerID),
			attr.Int64("amount", a.Amount),
		)
	}
	return nil
}

func (s *LogRosterSink) Close() error { return nil }
