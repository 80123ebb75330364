package handlers

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gometeo/forecast/internal/display"
	"github.com/gometeo/forecast/internal/model"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// ViewModel - то, что нужно обработчикам от ForecastViewModel
type ViewModel interface {
	SetCity(ctx context.Context, name string)
	CurrentState() model.State
}

type ForecastHandler struct {
	vm     ViewModel
	logger *slog.Logger
}

func NewForecastHandler(vm ViewModel, logger *slog.Logger) *ForecastHandler {
	return &ForecastHandler{
		vm:     vm,
		logger: logger,
	}
}

type ForecastResponse struct {
	State model.State  `json:"state"`
	View  display.View `json:"view"`
}

type SetCityRequest struct {
	City string `json:"city"`
}

type pageData struct {
	Query string
	View  display.View
	State model.State
}

// Page рисует экран: поиск, баннер ошибки или прогноз.
// Сам по себе запрос к провайдеру не делает.
func (h *ForecastHandler) Page(w http.ResponseWriter, r *http.Request) {
	state := h.vm.CurrentState()
	data := pageData{
		Query: r.URL.Query().Get("q"),
		View:  display.Project(state),
		State: state,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("Ошибка рендеринга страницы", "error", err)
	}
}

// Search принимает отправку формы поиска.
func (h *ForecastHandler) Search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Неверная форма", http.StatusBadRequest)
		return
	}
	city := r.FormValue("city")

	// состояние общее для всех, поэтому обрыв соединения клиента запрос не отменяет
	h.vm.SetCity(context.WithoutCancel(r.Context()), city)

	http.Redirect(w, r, "/?q="+url.QueryEscape(city), http.StatusSeeOther)
}

// GetForecast возвращает текущее состояние и его проекцию
func (h *ForecastHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	state := h.vm.CurrentState()
	sendJSON(w, http.StatusOK, ForecastResponse{State: state, View: display.Project(state)})
}

// SetCity меняет город и отвечает получившимся состоянием.
func (h *ForecastHandler) SetCity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req SetCityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Неверный формат JSON", err.Error())
		return
	}

	h.vm.SetCity(context.WithoutCancel(r.Context()), req.City)

	state := h.vm.CurrentState()
	status := http.StatusOK
	if state.Error != "" {
		status = http.StatusNotFound
	}
	sendJSON(w, status, ForecastResponse{State: state, View: display.Project(state)})

	h.logger.Info("Город изменен",
		"city", req.City,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds())
}

func (h *ForecastHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Вспомогательные функции
func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, status int, errorMsg, details string) {
	response := model.ErrorResponse{
		Error:   errorMsg,
		Message: details,
	}
	sendJSON(w, status, response)
}
