package meteo

// weatherDescriptions maps WMO weather codes to display strings.
var weatherDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Describe returns the display string for a WMO weather code.
func Describe(code int) string {
	if desc, ok := weatherDescriptions[code]; ok {
		return desc
	}
	return "Unknown"
}

// windNames lists the 16-wind compass rose, starting at North and moving
// clockwise in 22.5° steps.
var windNames = [16]string{
	"North", "North-Northeast", "Northeast", "East-Northeast",
	"East", "East-Southeast", "Southeast", "South-Southeast",
	"South", "South-Southwest", "Southwest", "West-Southwest",
	"West", "West-Northwest", "Northwest", "North-Northwest",
}

// WindDirectionName maps a direction in degrees to its compass name. Each
// band is 22.5° wide, centered on its heading; North covers 348.75°–11.25°.
func WindDirectionName(degrees int) string {
	degrees = degrees % 360
	if degrees < 0 {
		degrees += 360
	}
	idx := int((float64(degrees) + 11.25) / 22.5)
	return windNames[idx%16]
}
