package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gometeo/forecast/internal/config"
	"github.com/gometeo/forecast/internal/display"
	"github.com/gometeo/forecast/internal/logging"
	"github.com/gometeo/forecast/internal/provider"
	"github.com/gometeo/forecast/internal/viewmodel"
)

func main() {
	cfg := config.Load()

	city := flag.String("city", cfg.DefaultCity, "город для поиска")
	flag.Parse()

	// в терминал пишем только экран, логи - в stderr
	logger := logging.New(os.Stderr, cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	owm := provider.NewOpenWeather(
		cfg.OWMBaseURL,
		cfg.OWMAPIKey,
		&http.Client{Timeout: cfg.FetchTimeout},
		logger,
	)
	vm := viewmodel.New(owm, logger)
	vm.SetCity(ctx, *city)

	view := display.Project(vm.CurrentState())
	if view.Error != "" {
		fmt.Fprintln(os.Stderr, view.Error)
		os.Exit(1)
	}
	for _, line := range view.Lines() {
		fmt.Println(line)
	}
}
