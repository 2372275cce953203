package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// Listener принимает задания на генерацию слотов из очереди
// Невалидные сообщения подтверждаются и отбрасываются, внутренние ошибки возвращают сообщение в очередь
type Listener struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	queue    string
	prefetch int
	useCase  UseCase
	logger   Logger
	wg       sync.WaitGroup
}

func NewListener(url, queue string, prefetch int, useCase UseCase, logger Logger) (*Listener, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	return &Listener{
		conn:     conn,
		channel:  channel,
		queue:    queue,
		prefetch: prefetch,
		useCase:  useCase,
		logger:   logger,
	}, nil
}

// Start объявляет очередь и запускает обработку в фоне
func (l *Listener) Start(ctx context.Context) error {
	if err := l.channel.Qos(l.prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	queue, err := l.channel.QueueDeclare(
		l.queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", l.queue, err)
	}

	msgs, err := l.channel.Consume(
		queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("consume queue %s: %w", l.queue, err)
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					l.logger.Warn("GenerationListener: delivery channel closed")
					return
				}
				if l.process(ctx, msg.Body) {
					msg.Nack(false, true)
					continue
				}
				msg.Ack(false)
			}
		}
	}()

	l.logger.Info("GenerationListener: consuming queue=%s, prefetch=%d", queue.Name, l.prefetch)
	return nil
}

// Stop закрывает канал и соединение, затем ждет обработчик
func (l *Listener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}
	if err := l.channel.Close(); err != nil {
		return err
	}
	err := l.conn.Close()
	l.wg.Wait()
	return err
}

// process возвращает true, если сообщение нужно вернуть в очередь
func (l *Listener) process(ctx context.Context, body []byte) bool {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		l.logger.Warn("GenerationListener: dropping malformed message: %v", err)
		return false
	}

	req, err := msg.ToUseCaseRequest()
	if err != nil {
		l.logger.Warn("GenerationListener: dropping message for consultant=%s: %v", msg.ConsultantID, err)
		return false
	}

	resp, err := l.useCase.Execute(ctx, req)
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			l.logger.Error("GenerationListener: consultant=%s failed, requeue: %v", msg.ConsultantID, err)
			return true
		}
		l.logger.Warn("GenerationListener: consultant=%s rejected: %v", msg.ConsultantID, err)
		return false
	}

	l.logger.Info("GenerationListener: consultant=%s, created=%d, skipped=%d",
		msg.ConsultantID, resp.SlotsCreated, resp.ExistingSlotsSkipped)
	return false
}
