package events

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gometeo/forecast/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func producerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	return config
}

func TestNewOutcomeEvent(t *testing.T) {
	resolved := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

	ok := NewOutcomeEvent(model.Outcome{
		Generation: 3,
		City:       "Manila",
		Result:     &model.ForecastResult{Temperature: 29.4, Country: "PH"},
		Duration:   120 * time.Millisecond,
		ResolvedAt: resolved,
	})
	assert.NotEmpty(t, ok.ID)
	assert.True(t, ok.Success)
	assert.Empty(t, ok.Reason)
	assert.Equal(t, int64(120), ok.DurationMs)
	assert.Equal(t, resolved, ok.Timestamp)

	failed := NewOutcomeEvent(model.Outcome{City: "Nowhere", Reason: model.ReasonNetwork})
	assert.False(t, failed.Success)
	assert.Equal(t, "network error", failed.Reason)
	assert.Nil(t, failed.Forecast)
	assert.NotEqual(t, ok.ID, failed.ID)
}

func TestPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, producerConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev OutcomeEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.City != "Manila" || !ev.Success || ev.Forecast.Country != "PH" {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	p := NewPublisherWithProducer(producer, "", testLogger())
	assert.Equal(t, DefaultTopic, p.topic)

	err := p.Publish(model.Outcome{
		City:   "Manila",
		Result: &model.ForecastResult{Country: "PH"},
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublisher_PublishError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, producerConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisherWithProducer(producer, "outcomes", testLogger())
	err := p.Publish(model.Outcome{City: "Manila", Reason: model.ReasonNotFound})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sarama.ErrOutOfBrokers))
	require.NoError(t, p.Close())
}

func TestPublisher_ObserveSkipsStale(t *testing.T) {
	producer := mocks.NewSyncProducer(t, producerConfig())
	producer.ExpectSendMessageAndSucceed()

	p := NewPublisherWithProducer(producer, "outcomes", testLogger())
	p.Observe(model.Outcome{City: "Tokyo", Result: &model.ForecastResult{}, Stale: true})
	p.Observe(model.Outcome{City: "Manila", Result: &model.ForecastResult{}})

	// mocks.SyncProducer проверяет при Close, что все ожидания исполнены
	require.NoError(t, p.Close())
}

type fakeSession struct {
	sarama.ConsumerGroupSession
	marked []int64
}

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage {
	return c.messages
}

func TestConsumerHandler_ConsumeClaim(t *testing.T) {
	good, err := json.Marshal(OutcomeEvent{
		ID:       "e1",
		City:     "Manila",
		Success:  true,
		Forecast: &model.ForecastResult{Temperature: 29.6, Country: "PH"},
	})
	require.NoError(t, err)

	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 3)}
	claim.messages <- &sarama.ConsumerMessage{Offset: 10, Value: []byte("{broken")}
	// успех без прогноза не должен дойти до обработчика
	claim.messages <- &sarama.ConsumerMessage{Offset: 11, Value: []byte(`{"city":"Manila","success":true}`)}
	claim.messages <- &sarama.ConsumerMessage{Offset: 12, Value: good}
	close(claim.messages)

	var got []OutcomeEvent
	h := NewConsumerHandler(testLogger(), func(ev OutcomeEvent) { got = append(got, ev) })
	sess := &fakeSession{}

	require.NoError(t, h.Setup(sess))
	require.NoError(t, h.ConsumeClaim(sess, claim))
	require.NoError(t, h.Cleanup(sess))

	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, "Manila", got[0].City)
	require.NotNil(t, got[0].Forecast)
	assert.Equal(t, "PH", got[0].Forecast.Country)
	assert.Equal(t, []int64{10, 11, 12}, sess.marked)
}

func TestConsumerHandler_FailureWithoutForecastIsDelivered(t *testing.T) {
	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 1)}
	claim.messages <- &sarama.ConsumerMessage{Offset: 5, Value: []byte(`{"city":"Nowhere","success":false,"reason":"not found"}`)}
	close(claim.messages)

	var got []OutcomeEvent
	h := NewConsumerHandler(testLogger(), func(ev OutcomeEvent) { got = append(got, ev) })
	sess := &fakeSession{}

	require.NoError(t, h.ConsumeClaim(sess, claim))
	require.Len(t, got, 1)
	assert.Equal(t, "not found", got[0].Reason)
	assert.Nil(t, got[0].Forecast)
	assert.Equal(t, []int64{5}, sess.marked)
}
