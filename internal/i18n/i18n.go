// Package i18n holds the bilingual (English/Italian) message catalog and the
// builders that render forecasts, rain alerts, and bot replies as Telegram
// Markdown.
package i18n

import (
	"rainwatch/internal/types"
)

// weatherIcons maps WMO weather codes to display emoji.
var weatherIcons = map[int]string{
	0: "☀️", 1: "🌤️", 2: "⛅", 3: "☁️",
	45: "🌫️", 48: "🌫️",
	51: "🌦️", 53: "🌦️", 55: "🌦️",
	61: "🌧️", 63: "🌧️", 65: "🌧️",
	71: "❄️", 73: "❄️", 75: "❄️",
	80: "🌦️", 81: "🌦️", 82: "🌦️",
	95: "⛈️", 96: "⛈️", 99: "⛈️",
}

// weatherDescriptions maps WMO weather codes to short descriptions.
var weatherDescriptions = map[types.Language]map[int]string{
	types.LangEnglish: {
		0: "Clear sky", 1: "Mainly clear", 2: "Partly cloudy", 3: "Overcast",
		45: "Fog", 48: "Rime fog",
		51: "Light drizzle", 53: "Moderate drizzle", 55: "Dense drizzle",
		61: "Light rain", 63: "Moderate rain", 65: "Heavy rain",
		71: "Light snow", 73: "Moderate snow", 75: "Heavy snow",
		80: "Light showers", 81: "Moderate showers", 82: "Violent showers",
		95: "Thunderstorm", 96: "Thunderstorm with hail", 99: "Heavy thunderstorm with hail",
	},
	types.LangItalian: {
		0: "Cielo sereno", 1: "Prevalentemente sereno", 2: "Parzialmente nuvoloso", 3: "Nuvoloso",
		45: "Nebbia", 48: "Nebbia gelata",
		51: "Pioviggine leggera", 53: "Pioviggine moderata", 55: "Pioviggine fitta",
		61: "Pioggia leggera", 63: "Pioggia moderata", 65: "Pioggia forte",
		71: "Neve leggera", 73: "Neve moderata", 75: "Neve forte",
		80: "Rovesci leggeri", 81: "Rovesci moderati", 82: "Rovesci violenti",
		95: "Temporale", 96: "Temporale con grandine leggera", 99: "Temporale con grandine forte",
	},
}

// intensityNames localizes the classifier's intensity tiers.
var intensityNames = map[types.Language]map[types.Intensity]string{
	types.LangEnglish: {
		types.IntensityLight:    "light",
		types.IntensityModerate: "moderate",
		types.IntensityHeavy:    "heavy",
	},
	types.LangItalian: {
		types.IntensityLight:    "leggera",
		types.IntensityModerate: "moderata",
		types.IntensityHeavy:    "forte",
	},
}

// dayNames are short weekday names indexed by time.Weekday (Sunday first).
var dayNames = map[types.Language][7]string{
	types.LangEnglish: {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	types.LangItalian: {"Dom", "Lun", "Mar", "Mer", "Gio", "Ven", "Sab"},
}

// WeatherIcon returns the emoji for a WMO weather code, with a rainbow for
// codes outside the known table.
func WeatherIcon(code int) string {
	if icon, ok := weatherIcons[code]; ok {
		return icon
	}
	return "🌈"
}

// WeatherDescription returns the localized short description for a WMO
// weather code, or an empty string for unknown codes.
func WeatherDescription(lang types.Language, code int) string {
	return weatherDescriptions[lang.Normalize()][code]
}

// IntensityName returns the localized name of a rain intensity tier.
func IntensityName(lang types.Language, in types.Intensity) string {
	return intensityNames[lang.Normalize()][in]
}
