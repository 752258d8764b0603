package weather

// ConditionUnknown is shown for any WMO code missing from the table.
const ConditionUnknown = "Unknown"

// conditionLabels maps WMO weather interpretation codes (the `weather_code`
// field of the forecast API) to the short labels the dashboard shows.
var conditionLabels = map[int]string{
	0:  "Clear",
	1:  "Mostly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Foggy",
	51: "Drizzle",
	53: "Drizzle",
	55: "Drizzle",
	56: "Freezing drizzle",
	57: "Freezing drizzle",
	61: "Rainy",
	63: "Rainy",
	65: "Rainy",
	66: "Freezing rain",
	67: "Freezing rain",
	71: "Snowy",
	73: "Snowy",
	75: "Snowy",
	77: "Snow grains",
	80: "Showers",
	81: "Showers",
	82: "Showers",
	85: "Snow showers",
	86: "Snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm",
	99: "Thunderstorm",
}

// ConditionLabel resolves a weather code to its dashboard label.
func ConditionLabel(code int) string {
	if label, ok := conditionLabels[code]; ok {
		return label
	}
	return ConditionUnknown
}
