package model

import "time"

// NotFoundMessage - единственное сообщение об ошибке, которое видит пользователь
const NotFoundMessage = "City not found. Please enter a valid city."

// ForecastResult - та часть ответа провайдера, которую показывает экран
type ForecastResult struct {
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Country     string  `json:"country"`
}

// FailureReason различает причины неудачи только для логов и метрик.
type FailureReason string

const (
	ReasonNotFound FailureReason = "not found"
	ReasonNetwork  FailureReason = "network error"
)

// Outcome - результат одного запроса прогноза (Success или Failure).
type Outcome struct {
	Generation uint64
	City       string
	Result     *ForecastResult
	Reason     FailureReason
	Err        error
	Duration   time.Duration
	ResolvedAt time.Time
	// Stale - ответ пришел после более нового запроса и не был применен
	Stale bool
}

func (o Outcome) Success() bool {
	return o.Result != nil
}

// State - то, что отдается слою отображения.
// City - выбранный пользователем город, ResolvedCity - город,
// к которому относится Forecast или Error.
type State struct {
	City         string          `json:"city"`
	ResolvedCity string          `json:"resolved_city,omitempty"`
	Forecast     *ForecastResult `json:"forecast,omitempty"`
	Error        string          `json:"error,omitempty"`
	Pending      bool            `json:"pending"`
	Generation   uint64          `json:"generation"`
	UpdatedAt    time.Time       `json:"updated_at,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
