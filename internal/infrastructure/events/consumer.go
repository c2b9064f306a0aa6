package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/finguard/fraud-screening-backend/internal/domain/transaction"
	"github.com/finguard/fraud-screening-backend/internal/service/workflow"
)

// MessageReader abstracts the Kafka consumer client. The concrete broker
// client stays behind this interface.
type MessageReader interface {
	// Fetch blocks until a message is available or the context ends.
	Fetch(ctx context.Context) (*Message, error)
	// Commit acknowledges a processed message.
	Commit(ctx context.Context, msg *Message) error
	Close() error
}

// Message is one record from the transactions topic.
type Message struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
}

// TransactionEnvelope is the wire format of the transactions topic.
type TransactionEnvelope struct {
	Transaction transaction.Features           `json:"transaction"`
	Behavioral  transaction.BehavioralFeatures `json:"behavioral"`
}

// ConsumerConfig configures the ingestion consumer.
type ConsumerConfig struct {
	Topic   string
	GroupID string
}

// Consumer pulls transaction messages and runs one screening workflow per
// message, logging the aggregate outcome.
type Consumer struct {
	reader   MessageReader
	screener workflow.Service
	config   ConsumerConfig
	logger   *zap.Logger
}

// NewConsumer creates an ingestion consumer.
func NewConsumer(reader MessageReader, screener workflow.Service, cfg ConsumerConfig, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader:   reader,
		screener: screener,
		config:   cfg,
		logger:   logger,
	}
}

// Run consumes messages until the context is cancelled. Malformed
// messages are logged and skipped; they are committed so the group does
// not loop on them.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("kafka consumer started",
		zap.String("topic", c.config.Topic),
		zap.String("group_id", c.config.GroupID))

	for {
		msg, err := c.reader.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("kafka consumer stopping")
				return nil
			}
			return err
		}

		c.process(ctx, msg)

		if err := c.reader.Commit(ctx, msg); err != nil {
			c.logger.Error("commit failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg *Message) {
	var envelope TransactionEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		c.logger.Error("malformed transaction message",
			zap.ByteString("key", msg.Key),
			zap.Int64("offset", msg.Offset),
			zap.Error(err))
		return
	}

	resp, err := c.screener.Screen(ctx, envelope.Transaction, envelope.Behavioral)
	if err != nil {
		c.logger.Error("screening failed",
			zap.ByteString("key", msg.Key),
			zap.Error(err))
		return
	}

	c.logger.Info("processed transaction",
		zap.ByteString("account", msg.Key),
		zap.String("status", string(resp.CurrentStatus())),
		zap.String("reason", resp.Reason),
		zap.String("step", string(resp.Step)))
}

// Close shuts down the underlying reader.
func (c *Consumer) Close() error {
	c.logger.Info("closing kafka consumer")
	return c.reader.Close()
}
