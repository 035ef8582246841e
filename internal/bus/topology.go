// Package bus wraps the AMQP message fabric: topic exchanges, durable task
// queues, the domain-event exchange, and the per-queue dead-letter/holding
// queue pairs used for delayed retry.
package bus

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Topology names the exchanges and queues the platform declares at startup.
type Topology struct {
	TaskQueue     string
	CRMQueue      string
	WAQueue       string
	EventExchange string
}

const (
	deadLetterExchangeSuffix = ".dlx"
	holdingQueueSuffix       = ".holding"
	deadLetterQueueSuffix    = ".dead"
)

// DeadLetterExchange returns the name of a queue's dead-letter exchange.
func DeadLetterExchange(queue string) string {
	return queue + deadLetterExchangeSuffix
}

// DeadLetterQueue returns the name of a queue's terminal dead-letter queue.
func DeadLetterQueue(queue string) string {
	return queue + deadLetterQueueSuffix
}

// HoldingQueue returns the common name prefix of queue's TTL-bound holding
// queues; DelayedRetry.Schedule names each one "<prefix>.<ttl>ms".
func HoldingQueue(queue string) string {
	return queue + holdingQueueSuffix
}

// Declare idempotently declares every exchange and queue in the topology,
// including each task queue's dead-letter exchange/queue pair.
func (t Topology) Declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(t.EventExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	for _, queue := range []string{t.TaskQueue, t.CRMQueue, t.WAQueue} {
		if err := declareTaskQueue(ch, queue); err != nil {
			return err
		}
	}
	return nil
}

// declareTaskQueue declares a durable work queue wired to its own
// dead-letter exchange, plus the terminal dead-letter queue bound to it.
func declareTaskQueue(ch *amqp.Channel, queue string) error {
	dlx := DeadLetterExchange(queue)
	dlq := DeadLetterQueue(queue)

	if err := ch.ExchangeDeclare(dlx, "direct", true, false, false, false, nil); err != nil {
		return err
	}

	args := amqp.Table{"x-dead-letter-exchange": dlx}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(dlq, queue, dlx, false, nil); err != nil {
		return err
	}
	return nil
}
