package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gometeo/forecast/internal/api"
	"github.com/gometeo/forecast/internal/api/handlers"
	"github.com/gometeo/forecast/internal/config"
	"github.com/gometeo/forecast/internal/events"
	"github.com/gometeo/forecast/internal/logging"
	"github.com/gometeo/forecast/internal/metrics"
	"github.com/gometeo/forecast/internal/provider"
	"github.com/gometeo/forecast/internal/viewmodel"
)

func main() {
	// Загрузка конфигурации
	cfg := config.Load()

	logger := logging.New(os.Stdout, cfg.Env, cfg.LogLevel)
	logger.Info("Запуск Forecast сервиса...")
	logger.Info("Конфигурация загружена",
		"port", cfg.HTTPPort,
		"provider", cfg.OWMBaseURL,
		"default_city", cfg.DefaultCity,
		"kafka", cfg.KafkaBrokers)

	if cfg.OWMAPIKey == "" {
		logger.Warn("OWM_API_KEY не задан, провайдер будет отвечать ошибкой")
	}

	// 1. Провайдер прогноза и метрики
	owm := provider.NewOpenWeather(
		cfg.OWMBaseURL,
		cfg.OWMAPIKey,
		&http.Client{Timeout: cfg.FetchTimeout},
		logger,
	)
	fetchMetrics := metrics.New()
	opts := []viewmodel.Option{viewmodel.WithObserver(fetchMetrics.Observe)}

	// 2. Kafka - необязательна
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			logger.Error("Не удалось подключиться к Kafka", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("Ошибка при закрытии продюсера", "error", err)
			}
		}()
		opts = append(opts, viewmodel.WithObserver(publisher.Observe))
		logger.Info("Результаты запросов публикуются в Kafka", "topic", cfg.KafkaTopic)
	}

	vm := viewmodel.New(owm, logger, opts...)

	// 3. Начальный город, как на исходном экране
	if cfg.FetchOnStart && cfg.DefaultCity != "" {
		go vm.SetCity(context.Background(), cfg.DefaultCity)
	}

	// 4. Настройка HTTP сервера
	router := api.NewRouter(handlers.NewForecastHandler(vm, logger), fetchMetrics.Handler(), logger)
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.FetchTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Сервер запущен", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Ошибка сервера", "error", err)
			stopChan <- syscall.SIGTERM
		}
	}()

	<-stopChan
	logger.Info("Получен сигнал завершения...")

	shutdown(server, logger)
}

func shutdown(server *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Ошибка при остановке сервера", "error", err)
	} else {
		logger.Info("Сервер остановлен")
	}
}
