// Package weather proxies the Open-Meteo forecast API for the TV displays
// and portal header. Weather is decorative, not load-bearing: upstream
// failures degrade to an "unavailable" marker, never an error, and the
// upstream call fails fast rather than blocking the caller.
package weather

// Report is the normalized current-conditions shape served to clients.
type Report struct {
	// Temperature is the current temperature in Fahrenheit, rounded.
	Temperature int `json:"temp"`

	// Code is the WMO weather interpretation code.
	Code int `json:"code"`

	// Description is a human-readable label for the code.
	Description string `json:"description"`

	// IsDay reports whether it is currently daytime at the location.
	IsDay bool `json:"is_day"`
}

// wmoDescriptions maps the WMO codes Open-Meteo emits to display labels.
var wmoDescriptions = map[int]string{
	0:  "Clear Sky",
	1:  "Mainly Clear",
	2:  "Partly Cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing Rime Fog",
	51: "Light Drizzle",
	53: "Drizzle",
	55: "Heavy Drizzle",
	61: "Rain",
	63: "Rain",
	65: "Heavy Rain",
	71: "Snow",
	73: "Snow",
	75: "Heavy Snow",
	95: "Thunderstorm",
}

// describe returns the label for a WMO code, or "Unknown".
func describe(code int) string {
	if desc, ok := wmoDescriptions[code]; ok {
		return desc
	}
	return "Unknown"
}
