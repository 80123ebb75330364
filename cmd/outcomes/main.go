package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/IBM/sarama"

	"github.com/gometeo/forecast/internal/config"
	"github.com/gometeo/forecast/internal/events"
	"github.com/gometeo/forecast/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Env, cfg.LogLevel)
	logger.Info("Запуск Forecast Outcomes...")

	if len(cfg.KafkaBrokers) == 0 {
		logger.Error("KAFKA_BROKERS не задан")
		os.Exit(1)
	}

	// 1. Настройка Kafka Consumer
	saramaCfg := sarama.NewConfig()
	saramaCfg.Consumer.Return.Errors = true
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	consumer, err := sarama.NewConsumerGroup(cfg.KafkaBrokers, cfg.KafkaGroup, saramaCfg)
	if err != nil {
		logger.Error("Ошибка создания Kafka consumer", "error", err)
		os.Exit(1)
	}

	handler := events.NewConsumerHandler(logger, func(ev events.OutcomeEvent) {
		if !ev.Success {
			logger.Warn("Запрос не удался",
				"city", ev.City,
				"reason", ev.Reason,
				"duration_ms", ev.DurationMs,
				"generation", ev.Generation)
			return
		}
		if ev.Forecast == nil {
			logger.Error("Некорректное событие: нет прогноза", "city", ev.City, "id", ev.ID)
			return
		}
		logger.Info("Прогноз получен",
			"city", ev.City,
			"country", ev.Forecast.Country,
			"temp", ev.Forecast.Temperature,
			"description", ev.Forecast.Description,
			"duration_ms", ev.DurationMs)
	})

	// 2. Запуск цикла чтения
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)

	go func() {
		defer wg.Done()
		for {
			if err := consumer.Consume(ctx, []string{cfg.KafkaTopic}, handler); err != nil {
				logger.Error("Ошибка при чтении Kafka", "error", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	go func() {
		for err := range consumer.Errors() {
			logger.Error("Ошибка consumer group", "error", err)
		}
	}()

	// 3. Graceful Shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Остановка сервиса...")
	cancel()
	wg.Wait()
	if err := consumer.Close(); err != nil {
		logger.Error("Ошибка при закрытии consumer", "error", err)
	}
}
