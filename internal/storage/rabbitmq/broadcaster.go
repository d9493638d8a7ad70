package rabbitmq

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/UkralStul/apexmed-interactions/internal/storage"
)

// DefaultExchange - fanout-обменник для уведомлений об изменениях.
const DefaultExchange = "apexmed.changes"

// Broadcaster рассылает уведомления через fanout-обменник RabbitMQ.
// Каждая подписка получает собственную эксклюзивную очередь, которая удаляется при отписке.
type Broadcaster struct {
	conn     *amqp091.Connection
	exchange string
	log      logrus.FieldLogger

	mu      sync.Mutex // amqp-канал нельзя использовать для публикации из нескольких горутин
	channel *amqp091.Channel
}

// New подключается к брокеру и объявляет обменник.
func New(url, exchange string, log logrus.FieldLogger) (*Broadcaster, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to RabbitMQ")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to open a channel")
	}

	err = ch.ExchangeDeclare(
		exchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, errors.Wrap(err, "failed to declare changes exchange")
	}

	return &Broadcaster{conn: conn, exchange: exchange, log: log, channel: ch}, nil
}

func (b *Broadcaster) Publish(ctx context.Context, ev storage.Event) error {
	body, err := encodeEvent(ev)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	err = b.channel.PublishWithContext(ctx,
		b.exchange,
		"",    // routing key игнорируется fanout-обменником
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return errors.Wrapf(err, "failed to publish change of %s", ev.Key)
	}
	return nil
}

func (b *Broadcaster) Subscribe(ctx context.Context, key, origin string, fn func(storage.Event)) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return errors.Wrap(err, "failed to open a channel")
	}

	q, err := ch.QueueDeclare(
		"",    // имя генерирует брокер
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return errors.Wrap(err, "failed to declare subscription queue")
	}

	if err := ch.QueueBind(q.Name, "", b.exchange, false, nil); err != nil {
		ch.Close()
		return errors.Wrap(err, "failed to bind subscription queue")
	}

	msgs, err := ch.Consume(
		q.Name,
		"",    // consumer
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return errors.Wrap(err, "failed to register a consumer")
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					b.log.WithField("key", key).Info("change consumer channel closed")
					return
				}
				ev, err := decodeEvent(d.Body)
				if err != nil {
					b.log.WithError(err).Warn("skipping malformed change event")
					continue
				}
				if storage.Deliverable(ev, key, origin) {
					fn(ev)
				}
			}
		}
	}()
	return nil
}

// Close закрывает канал и соединение.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.channel != nil {
		_ = b.channel.Close()
	}
	return b.conn.Close()
}

func encodeEvent(ev storage.Event) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal change event")
	}
	return body, nil
}

func decodeEvent(body []byte) (storage.Event, error) {
	var ev storage.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return storage.Event{}, errors.Wrap(err, "failed to unmarshal change event")
	}
	if ev.Key == "" {
		return storage.Event{}, errors.New("change event without key")
	}
	return ev, nil
}
