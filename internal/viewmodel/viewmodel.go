package viewmodel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gometeo/forecast/internal/model"
	"github.com/gometeo/forecast/internal/provider"
)

// Observer получает каждый завершившийся запрос, включая устаревшие (Stale).
type Observer func(model.Outcome)

// ForecastViewModel хранит выбранный город, последний прогноз и последнюю ошибку.
// Каждый SetCity получает номер поколения; применяется только ответ
// на самый свежий запрос.
type ForecastViewModel struct {
	fetcher   provider.Fetcher
	logger    *slog.Logger
	observers []Observer
	now       func() time.Time

	mu     sync.RWMutex
	state  model.State
	latest uint64
}

type Option func(*ForecastViewModel)

func WithObserver(o Observer) Option {
	return func(vm *ForecastViewModel) {
		vm.observers = append(vm.observers, o)
	}
}

func WithClock(now func() time.Time) Option {
	return func(vm *ForecastViewModel) {
		vm.now = now
	}
}

func New(fetcher provider.Fetcher, logger *slog.Logger, opts ...Option) *ForecastViewModel {
	vm := &ForecastViewModel{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// SetCity запрашивает прогноз для города и обновляет состояние.
// Блокирует до ответа провайдера; вызывающий может запустить его в горутине.
func (vm *ForecastViewModel) SetCity(ctx context.Context, name string) {
	city := strings.TrimSpace(name)

	vm.mu.Lock()
	vm.latest++
	gen := vm.latest
	vm.state.City = city
	vm.state.Error = ""
	vm.state.Pending = true
	vm.mu.Unlock()

	vm.logger.Info("Запрос прогноза", "city", city, "generation", gen)

	start := vm.now()
	result, err := vm.fetcher.Fetch(ctx, city)
	if err == nil && result == nil {
		err = fmt.Errorf("%w: пустой ответ", provider.ErrNotFound)
	}

	outcome := model.Outcome{
		Generation: gen,
		City:       city,
		Result:     result,
		Err:        err,
		ResolvedAt: vm.now(),
	}
	outcome.Duration = outcome.ResolvedAt.Sub(start)
	if err != nil {
		outcome.Result = nil
		outcome.Reason = provider.Reason(err)
	}

	vm.mu.Lock()
	if gen != vm.latest {
		vm.mu.Unlock()
		outcome.Stale = true
		vm.logger.Warn("Устаревший ответ отброшен",
			"city", city,
			"generation", gen,
			"latest", vm.latestGeneration())
		vm.notify(outcome)
		return
	}
	vm.apply(outcome)
	vm.mu.Unlock()

	if err != nil {
		vm.logger.Warn("Не удалось получить прогноз",
			"city", city,
			"reason", outcome.Reason,
			"error", err,
			"duration_ms", outcome.Duration.Milliseconds())
	} else {
		vm.logger.Info("Прогноз обновлен",
			"city", city,
			"country", result.Country,
			"temp", result.Temperature,
			"duration_ms", outcome.Duration.Milliseconds())
	}

	vm.notify(outcome)
}

// apply вызывается под vm.mu
func (vm *ForecastViewModel) apply(o model.Outcome) {
	vm.state.Pending = false
	vm.state.Generation = o.Generation
	vm.state.ResolvedCity = o.City
	vm.state.UpdatedAt = o.ResolvedAt
	if o.Success() {
		result := *o.Result
		vm.state.Forecast = &result
		vm.state.Error = ""
		return
	}
	vm.state.Forecast = nil
	vm.state.Error = model.NotFoundMessage
}

// CurrentState возвращает копию текущего состояния.
func (vm *ForecastViewModel) CurrentState() model.State {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	st := vm.state
	if st.Forecast != nil {
		f := *st.Forecast
		st.Forecast = &f
	}
	return st
}

func (vm *ForecastViewModel) latestGeneration() uint64 {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.latest
}

func (vm *ForecastViewModel) notify(o model.Outcome) {
	for _, obs := range vm.observers {
		obs(o)
	}
}
