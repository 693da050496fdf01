package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/streadway/amqp"

	provinspector "github.com/dbis-ilm/streamvizzard-provinspector"
	"github.com/dbis-ilm/streamvizzard-provinspector/common"
	"github.com/dbis-ilm/streamvizzard-provinspector/data"
)

// Consumer drains debug step events from a RabbitMQ queue into the
// translator. Messages are processed one at a time in delivery order; the
// translator relies on upstream ordering to identify parent revisions.
type Consumer struct {
	url        string
	queueName  string
	inspector  *provinspector.ProvInspector
	connection *amqp.Connection
	channel    *amqp.Channel
}

// NewConsumer returns an unconnected consumer.
func NewConsumer(url, queueName string, inspector *provinspector.ProvInspector) *Consumer {
	return &Consumer{url: url, queueName: queueName, inspector: inspector}
}

// Connect dials RabbitMQ, declares the queue, and limits prefetching to one
// message so events stay serialized.
func (c *Consumer) Connect() error {
	var err error

	c.connection, err = amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	c.channel, err = c.connection.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	return nil
}

// Close shuts the channel and connection down. Safe to call with nil
// handles.
func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.connection != nil {
		c.connection.Close()
	}
}

// Consume processes deliveries until the context is cancelled. A malformed
// or rejected event is logged and dropped; translator state is preserved.
func (c *Consumer) Consume(ctx context.Context) error {
	deliveries, err := c.channel.Consume(
		c.queueName,
		"provinspector", // consumer tag
		false,           // auto-ack
		false,           // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	common.Logger.WithField("queue", c.queueName).Info("consuming debug events")

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.process(ctx, delivery)
		}
	}
}

func (c *Consumer) process(ctx context.Context, delivery amqp.Delivery) {
	step, err := data.DecodeDebugStep(delivery.Body)
	if err != nil {
		common.Logger.WithError(err).Error("dropping malformed debug event")
		delivery.Nack(false, false)
		return
	}

	if err := c.inspector.Update(ctx, step); err != nil {
		common.Logger.WithField("step", step.ID).WithError(err).Error("dropping rejected debug event")
		delivery.Nack(false, false)
		return
	}

	delivery.Ack(false)
}

// listenCmd consumes debug step events from RabbitMQ until interrupted.
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "consume debug events from a RabbitMQ queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		inspector, err := newInspector(ctx, cfg)
		if err != nil {
			return err
		}
		defer inspector.Shutdown(context.Background())

		consumer := NewConsumer(cfg.AMQPURL, cfg.QueueName, inspector)
		if err := consumer.Connect(); err != nil {
			return err
		}
		defer consumer.Close()

		return consumer.Consume(ctx)
	},
}

func init() {
	RootCmd.AddCommand(listenCmd)
}
