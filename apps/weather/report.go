package weather

import (
	"fmt"
	"net/url"
	"strings"

	"go.tdeck.dev/pda/fetch"
	rutils "go.tdeck.dev/pda/utils"
)

// Condition is a coarse weather state derived from the icon code.
type Condition string

// Conditions.
const (
	Clear   Condition = "clear"
	Clouds  Condition = "clouds"
	Rain    Condition = "rain"
	Thunder Condition = "thunder"
	Snow    Condition = "snow"
	Mist    Condition = "mist"
	Unknown Condition = "unknown"
)

// ConditionFromIcon maps an icon code such as "10d" to a Condition.
func ConditionFromIcon(icon string) Condition {
	if len(icon) < 2 {
		return Unknown
	}
	switch icon[:2] {
	case "01":
		return Clear
	case "02", "03", "04":
		return Clouds
	case "09", "10":
		return Rain
	case "11":
		return Thunder
	case "13":
		return Snow
	case "50":
		return Mist
	default:
		return Unknown
	}
}

// Report is the current weather for a city.
type Report struct {
	City        string
	Temp        float64
	Description string
	Icon        string
	Condition   Condition
}

// Temperature formats Temp with the unit symbol for units.
func (r Report) Temperature(units string) string {
	symbol := "°C"
	switch units {
	case "imperial":
		symbol = "°F"
	case "standard":
		symbol = "K"
	}
	return fmt.Sprintf("%.1f%s", r.Temp, symbol)
}

type response struct {
	Name string `json:"name"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

// Decode parses a current weather response.
func Decode(body []byte) (Report, error) {
	resp, err := fetch.JSON[response]()(body)
	if err != nil {
		return Report{}, err
	}
	report := Report{
		City:      rutils.SanitizeString(resp.Name),
		Temp:      resp.Main.Temp,
		Condition: Unknown,
	}
	if len(resp.Weather) > 0 {
		report.Description = rutils.SanitizeString(resp.Weather[0].Description)
		report.Icon = resp.Weather[0].Icon
		report.Condition = ConditionFromIcon(report.Icon)
	}
	return report, nil
}

// RequestURL builds the current weather URL for conf.
func RequestURL(conf Config) string {
	q := url.Values{}
	q.Set("id", conf.CityID)
	q.Set("appid", conf.APIKey)
	q.Set("units", conf.units())
	return strings.TrimRight(conf.baseURL(), "/") + "/data/2.5/weather?" + q.Encode()
}
