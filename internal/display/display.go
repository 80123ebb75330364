// Package display превращает состояние ForecastViewModel в то, что рисует экран.
// Все функции чистые.
package display

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gometeo/forecast/internal/model"
)

type Icon struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

var (
	IconSun       = Icon{Name: "sun", Color: "#FFD700"}
	IconCloud     = Icon{Name: "cloud", Color: "#B0C4DE"}
	IconRain      = Icon{Name: "cloud-rain", Color: "#1E90FF"}
	IconBolt      = Icon{Name: "bolt", Color: "#FF4500"}
	IconSnowflake = Icon{Name: "snowflake", Color: "#ADD8E6"}
	IconSmog      = Icon{Name: "smog", Color: "#808080"}
	IconUnknown   = Icon{Name: "question-circle", Color: "#FFFFFF"}
)

// Порядок важен: "light rain and cloud" должно дать облако.
var iconRules = []struct {
	keywords []string
	icon     Icon
}{
	{[]string{"clear"}, IconSun},
	{[]string{"cloud"}, IconCloud},
	{[]string{"rain"}, IconRain},
	{[]string{"thunderstorm"}, IconBolt},
	{[]string{"snow"}, IconSnowflake},
	{[]string{"mist", "fog"}, IconSmog},
}

// IconFor подбирает иконку по первому совпавшему ключевому слову.
func IconFor(description string) Icon {
	desc := strings.ToLower(description)
	for _, rule := range iconRules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.icon
			}
		}
	}
	return IconUnknown
}

// Capitalize приводит строку к нижнему регистру и делает заглавной
// первую букву каждого слова, разделенного пробелом.
func Capitalize(name string) string {
	words := strings.Split(strings.ToLower(name), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// View - проекция состояния на экран. Нулевое значение - пустой экран.
type View struct {
	Error       string `json:"error,omitempty"`
	Icon        *Icon  `json:"icon,omitempty"`
	Temperature int    `json:"temperature"`
	Condition   string `json:"condition,omitempty"`
	City        string `json:"city,omitempty"`
	Humidity    string `json:"humidity,omitempty"`
	Wind        string `json:"wind,omitempty"`
}

func (v View) HasForecast() bool {
	return v.Icon != nil
}

func (v View) Empty() bool {
	return v.Error == "" && !v.HasForecast()
}

func (v View) TemperatureText() string {
	return fmt.Sprintf("%d°C", v.Temperature)
}

// Lines - текстовое представление для терминала
func (v View) Lines() []string {
	switch {
	case v.Error != "":
		return []string{v.Error}
	case !v.HasForecast():
		return nil
	}
	return []string{
		fmt.Sprintf("[%s] %s", v.Icon.Name, v.TemperatureText()),
		v.Condition,
		v.City,
		v.Humidity + "   " + v.Wind,
	}
}

// Project строит View из состояния. Ошибка имеет приоритет над прогнозом.
func Project(state model.State) View {
	if state.Error != "" {
		return View{Error: state.Error}
	}
	if state.Forecast == nil {
		return View{}
	}

	f := state.Forecast
	city := state.ResolvedCity
	if city == "" {
		city = state.City
	}
	icon := IconFor(f.Description)

	return View{
		Icon:        &icon,
		Temperature: roundHalfUp(f.Temperature),
		Condition:   f.Description,
		City:        fmt.Sprintf("%s, %s", Capitalize(city), f.Country),
		Humidity:    fmt.Sprintf("%d%% Humidity", f.Humidity),
		Wind:        strconv.FormatFloat(f.WindSpeed, 'f', -1, 64) + " km/h Wind",
	}
}

// roundHalfUp округляет к ближайшему целому, половину - вверх (-2.5 -> -2, -0.5 -> 0).
func roundHalfUp(v float64) int {
	r := math.Floor(v)
	if v-r >= 0.5 {
		r++
	}
	return int(r)
}
