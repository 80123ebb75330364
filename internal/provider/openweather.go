package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gometeo/forecast/internal/model"
)

const DefaultBaseURL = "https://api.openweathermap.org"

var (
	ErrFetchFailed = errors.New("не удалось получить прогноз")
	ErrNotFound    = fmt.Errorf("%w: город не найден", ErrFetchFailed)
	ErrNetwork     = fmt.Errorf("%w: сетевая ошибка", ErrFetchFailed)
)

// Fetcher - внешний провайдер прогноза погоды
type Fetcher interface {
	Fetch(ctx context.Context, city string) (*model.ForecastResult, error)
}

// Reason сводит ошибку Fetch к причине для логов и метрик.
func Reason(err error) model.FailureReason {
	if errors.Is(err, ErrNetwork) {
		return model.ReasonNetwork
	}
	return model.ReasonNotFound
}

type OpenWeather struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

func NewOpenWeather(baseURL, apiKey string, client *http.Client, logger *slog.Logger) *OpenWeather {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenWeather{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		logger:  logger,
	}
}

// forecastResponse - минимальная форма ответа /data/2.5/forecast.
// Указатели нужны, чтобы отличить отсутствующее поле от нулевого значения.
type forecastResponse struct {
	List []struct {
		Main *struct {
			Temp     *float64 `json:"temp"`
			Humidity *int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Wind *struct {
			Speed *float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
	City *struct {
		Country string `json:"country"`
	} `json:"city"`
}

// Fetch выполняет ровно один GET на прогноз для города.
func (c *OpenWeather) Fetch(ctx context.Context, city string) (*model.ForecastResult, error) {
	u, err := url.Parse(c.baseURL + "/data/2.5/forecast")
	if err != nil {
		return nil, fmt.Errorf("%w: неверный адрес провайдера: %v", ErrNetwork, err)
	}
	q := u.Query()
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: статус %d", ErrNotFound, resp.StatusCode)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if isTransportError(ctx, err) {
			return nil, fmt.Errorf("%w: ошибка чтения ответа: %v", ErrNetwork, err)
		}
		return nil, fmt.Errorf("%w: ошибка десериализации: %v", ErrNotFound, err)
	}

	result, err := payload.result()
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Прогноз получен от провайдера",
		"city", city,
		"country", result.Country,
		"temp", result.Temperature)
	return result, nil
}

// isTransportError отличает обрыв чтения тела от битого JSON.
func isTransportError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (p forecastResponse) result() (*model.ForecastResult, error) {
	if len(p.List) == 0 {
		return nil, fmt.Errorf("%w: пустой список прогнозов", ErrNotFound)
	}
	first := p.List[0]
	switch {
	case first.Main == nil || first.Main.Temp == nil || first.Main.Humidity == nil:
		return nil, fmt.Errorf("%w: нет блока main", ErrNotFound)
	case len(first.Weather) == 0:
		return nil, fmt.Errorf("%w: нет описания погоды", ErrNotFound)
	case first.Wind == nil || first.Wind.Speed == nil:
		return nil, fmt.Errorf("%w: нет данных о ветре", ErrNotFound)
	case p.City == nil:
		return nil, fmt.Errorf("%w: нет блока city", ErrNotFound)
	}

	return &model.ForecastResult{
		Temperature: *first.Main.Temp,
		Description: first.Weather[0].Description,
		Humidity:    *first.Main.Humidity,
		WindSpeed:   *first.Wind.Speed,
		Country:     p.City.Country,
	}, nil
}
