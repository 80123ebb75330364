package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/gometeo/forecast/internal/model"
)

const DefaultTopic = "forecast_outcomes"

// OutcomeEvent - сообщение, которое летает через Kafka
type OutcomeEvent struct {
	ID         string                `json:"id"`
	Generation uint64                `json:"generation"`
	City       string                `json:"city"`
	Success    bool                  `json:"success"`
	Reason     string                `json:"reason,omitempty"`
	Forecast   *model.ForecastResult `json:"forecast,omitempty"`
	DurationMs int64                 `json:"duration_ms"`
	Timestamp  time.Time             `json:"timestamp"`
}

func NewOutcomeEvent(o model.Outcome) OutcomeEvent {
	ev := OutcomeEvent{
		ID:         uuid.NewString(),
		Generation: o.Generation,
		City:       o.City,
		Success:    o.Success(),
		Forecast:   o.Result,
		DurationMs: o.Duration.Milliseconds(),
		Timestamp:  o.ResolvedAt,
	}
	if !ev.Success {
		ev.Reason = string(o.Reason)
	}
	return ev
}

type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewPublisher подключается к Kafka и ждет подтверждения записи от всех реплик.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к Kafka: %w", err)
	}
	return NewPublisherWithProducer(producer, topic, logger), nil
}

func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{producer: producer, topic: topic, logger: logger}
}

func (p *Publisher) Publish(o model.Outcome) error {
	bytes, err := json.Marshal(NewOutcomeEvent(o))
	if err != nil {
		return fmt.Errorf("ошибка сериализации: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(o.City),
		Value: sarama.ByteEncoder(bytes),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("не удалось отправить сообщение: %w", err)
	}

	p.logger.Debug("Результат запроса отправлен",
		"city", o.City,
		"partition", partition,
		"offset", offset)
	return nil
}

// Observe подходит как viewmodel.Observer. Устаревшие ответы не публикуются.
func (p *Publisher) Observe(o model.Outcome) {
	if o.Stale {
		return
	}
	if err := p.Publish(o); err != nil {
		p.logger.Error("Ошибка публикации результата", "city", o.City, "error", err)
	}
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}

// ConsumerHandler читает OutcomeEvent из топика и передает их в handle.
type ConsumerHandler struct {
	logger *slog.Logger
	handle func(OutcomeEvent)
}

func NewConsumerHandler(logger *slog.Logger, handle func(OutcomeEvent)) *ConsumerHandler {
	return &ConsumerHandler{logger: logger, handle: handle}
}

func (h *ConsumerHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *ConsumerHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *ConsumerHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var ev OutcomeEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			// битое сообщение не исправится при повторе, поэтому помечаем его
			h.logger.Error("Битый JSON", "offset", msg.Offset, "error", err)
			sess.MarkMessage(msg, "")
			continue
		}
		if ev.Success && ev.Forecast == nil {
			h.logger.Error("Успешный результат без прогноза", "offset", msg.Offset, "city", ev.City)
			sess.MarkMessage(msg, "")
			continue
		}

		if h.handle != nil {
			h.handle(ev)
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
