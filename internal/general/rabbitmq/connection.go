package rabbitmq

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"taxitrack/internal/general/contracts"
	"taxitrack/internal/general/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client is a RabbitMQ connector with confirm-mode publishing and a background
// watcher that reconnects after broker failures.
type Client struct {
	url    string
	logger *slog.Logger
	logCtx context.Context

	mu      sync.RWMutex
	conn    *amqp.Connection
	pubChan *amqp.Channel

	pubMu       sync.Mutex
	pubConfirms chan amqp.Confirmation

	closed    chan struct{}
	reconnect chan struct{}
}

// Connect establishes the connection, declares the event exchange, and starts
// the reconnect watcher.
func Connect(ctx context.Context, url string, log *slog.Logger) (*Client, error) {
	client := &Client{
		url:       url,
		logger:    log,
		logCtx:    context.WithoutCancel(ctx), // reconnect logging outlives the caller
		closed:    make(chan struct{}),
		reconnect: make(chan struct{}, 1),
	}

	// single initial attempt; later retries happen in the watcher
	if err := client.connectOnce(); err != nil {
		return nil, err
	}

	go client.watch()

	return client, nil
}

// Close stops the watcher and closes AMQP resources.
func (client *Client) Close() {
	select {
	case <-client.closed:
	default:
		close(client.closed)
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	if client.pubChan != nil {
		_ = client.pubChan.Close()
		client.pubChan = nil
	}
	if client.conn != nil {
		_ = client.conn.Close()
		client.conn = nil
	}
}

func (client *Client) connectOnce() error {
	conn, err := amqp.Dial(client.url)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}

	if err := ch.ExchangeDeclare(contracts.ExchangeRideTopic, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	client.mu.Lock()
	client.conn = conn
	client.pubChan = ch
	client.pubConfirms = confirms
	client.mu.Unlock()

	// wake the watcher when the broker drops us
	closeCh := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if err, ok := <-closeCh; ok && err != nil {
			select {
			case client.reconnect <- struct{}{}:
			default:
			}
		}
	}()

	logger.Info(client.logCtx, client.logger, "rabbitmq_connected", "RabbitMQ connection established")
	return nil
}

// watch re-dials with backoff whenever the broker closes the connection.
func (client *Client) watch() {
	for {
		select {
		case <-client.closed:
			return
		case <-client.reconnect:
		}

		backoff := time.Second
		for {
			select {
			case <-client.closed:
				return
			default:
			}

			if err := client.connectOnce(); err == nil {
				break
			} else {
				logger.Error(client.logCtx, client.logger, "rabbitmq_reconnect_failed",
					"RabbitMQ reconnect attempt failed", err)
			}

			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
		}
	}
}

// PublishMessage publishes a persistent JSON message and waits for the broker
// confirm.
func (client *Client) PublishMessage(exchange, routingKey string, body []byte) error {
	client.mu.RLock()
	ch := client.pubChan
	conn := client.conn
	client.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return errors.New("rabbitmq: connection is not open")
	}
	if ch == nil || ch.IsClosed() {
		return errors.New("rabbitmq: publish channel is not open")
	}

	client.pubMu.Lock()
	defer client.pubMu.Unlock()
	confirms := client.pubConfirms

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ch.PublishWithContext(ctx, exchange, routingKey, false, false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	); err != nil {
		return err
	}

	select {
	case c := <-confirms:
		if !c.Ack {
			return errors.New("rabbitmq: publish not acknowledged")
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}
