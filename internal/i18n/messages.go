package i18n

import (
	"fmt"
	"strings"
	"time"

	"rainwatch/internal/types"
	"rainwatch/internal/weather"
)

// clockFor renders a wall-clock time in the locale's convention: 24h for
// Italian, 12h with AM/PM for English.
func clockFor(lang types.Language, t time.Time) string {
	if lang.Normalize() == types.LangItalian {
		return t.Format("15:04")
	}
	return t.Format("3:04 PM")
}

// RainAlert renders the imminent-rain push notification.
func RainAlert(lang types.Language, a *types.ImminentAlert) string {
	lang = lang.Normalize()
	intensity := IntensityName(lang, a.Intensity)

	if lang == types.LangItalian {
		return fmt.Sprintf(
			"🌧️ *AVVISO PIOGGIA IMMINENTE!*\n\n"+
				"A %s inizierà a piovere tra circa %d minuti!\n\n"+
				"• Orario: %s\n"+
				"• Intensità: %s\n"+
				"• Precipitazioni: %.1f mm\n\n"+
				"Preparati! ☔",
			a.City, a.MinutesUntil, clockFor(lang, a.EventTime), intensity, a.PrecipitationMM)
	}
	return fmt.Sprintf(
		"🌧️ *RAIN ALERT!*\n\n"+
			"In %s rain will start in about %d minutes!\n\n"+
			"• Time: %s\n"+
			"• Intensity: %s\n"+
			"• Precipitation: %.1f mm\n\n"+
			"Be prepared! ☔",
		a.City, a.MinutesUntil, clockFor(lang, a.EventTime), intensity, a.PrecipitationMM)
}

// dayParts splits rain events into morning (06-12), afternoon (12-18),
// evening (18-24), and night (00-06) buckets by local hour.
type dayParts struct {
	morning, afternoon, evening, night []types.RainEvent
}

func splitDayParts(events []types.RainEvent) dayParts {
	var p dayParts
	for _, e := range events {
		switch h := e.Time.Hour(); {
		case h >= 6 && h < 12:
			p.morning = append(p.morning, e)
		case h >= 12 && h < 18:
			p.afternoon = append(p.afternoon, e)
		case h >= 18:
			p.evening = append(p.evening, e)
		default:
			p.night = append(p.night, e)
		}
	}
	return p
}

func totalPrecipitation(events []types.RainEvent) float64 {
	var total float64
	for _, e := range events {
		total += e.PrecipitationMM
	}
	return total
}

// WeatherReport renders the full weather message: rain outlook for the next
// 24 hours, current conditions, and the multi-day forecast. Rain events must
// already be filtered to the next 24 hours in the forecast's timezone.
func WeatherReport(lang types.Language, city, region string, f *weather.Forecast, rainEvents []types.RainEvent) string {
	lang = lang.Normalize()
	var b strings.Builder

	icon := WeatherIcon(f.Current.WeatherCode)
	if lang == types.LangItalian {
		fmt.Fprintf(&b, "**%s Meteo per %s**\n", icon, city)
	} else {
		fmt.Fprintf(&b, "**%s Weather for %s**\n", icon, city)
	}
	if region != "" {
		fmt.Fprintf(&b, "*%s*\n", region)
	}
	if !f.Current.Time.IsZero() {
		if lang == types.LangItalian {
			fmt.Fprintf(&b, "*Aggiornato alle %s*\n", f.Current.Time.Format("15:04"))
		} else {
			fmt.Fprintf(&b, "*Updated at %s*\n", f.Current.Time.Format("15:04"))
		}
	}
	b.WriteString("\n")

	writeRainSection(&b, lang, rainEvents)

	// Current conditions.
	if lang == types.LangItalian {
		b.WriteString("**Condizioni Attuali**\n")
	} else {
		b.WriteString("**Current Conditions**\n")
	}
	if desc := WeatherDescription(lang, f.Current.WeatherCode); desc != "" {
		b.WriteString(desc + "\n")
	}
	if lang == types.LangItalian {
		fmt.Fprintf(&b, "• Temperatura: **%.1f°C**\n", f.Current.TemperatureC)
		fmt.Fprintf(&b, "• Percepita: **%.1f°C**\n", f.Current.ApparentC)
		fmt.Fprintf(&b, "• Vento: **%.1f km/h**\n", f.Current.WindKmh)
	} else {
		fmt.Fprintf(&b, "• Temperature: **%.1f°C**\n", f.Current.TemperatureC)
		fmt.Fprintf(&b, "• Feels like: **%.1f°C**\n", f.Current.ApparentC)
		fmt.Fprintf(&b, "• Wind: **%.1f km/h**\n", f.Current.WindKmh)
	}
	b.WriteString("\n")

	writeDailySection(&b, lang, f.Daily)

	if lang == types.LangItalian {
		b.WriteString("\n_Fonte dati: Open-Meteo_")
	} else {
		b.WriteString("\n_Data source: Open-Meteo_")
	}
	return b.String()
}

// writeRainSection renders the 24h rain warning block of the weather report.
func writeRainSection(b *strings.Builder, lang types.Language, events []types.RainEvent) {
	if len(events) == 0 {
		if lang == types.LangItalian {
			b.WriteString("✅ Nessuna pioggia significativa prevista nelle prossime 24 ore\n\n")
		} else {
			b.WriteString("✅ No significant rain expected in the next 24 hours\n\n")
		}
		return
	}

	if lang == types.LangItalian {
		b.WriteString("⚠️ **AVVISO PIOGGIA** ⚠️\n*Nei prossimi 24 ore:*\n")
	} else {
		b.WriteString("⚠️ **RAIN ALERT** ⚠️\n*In the next 24 hours:*\n")
	}

	parts := splitDayParts(events)
	writeDayPartLine(b, lang, "🌅", "Mattina", "Morning", parts.morning)
	writeDayPartLine(b, lang, "☀️", "Pomeriggio", "Afternoon", parts.afternoon)
	writeDayPartLine(b, lang, "🌇", "Sera", "Evening", parts.evening)
	writeDayPartLine(b, lang, "🌙", "Notte", "Night", parts.night)

	if lang == types.LangItalian {
		fmt.Fprintf(b, "*Accumulo previsto: ~%.1f mm*\n\n", totalPrecipitation(events))
	} else {
		fmt.Fprintf(b, "*Total expected: ~%.1f mm*\n\n", totalPrecipitation(events))
	}
}

// writeDayPartLine renders one day-part bullet of the rain warning, using
// the first event of the part as its representative.
func writeDayPartLine(b *strings.Builder, lang types.Language, icon, nameIT, nameEN string, events []types.RainEvent) {
	if len(events) == 0 {
		return
	}
	first := events[0]
	if lang == types.LangItalian {
		fmt.Fprintf(b, "• %s **%s**: Pioggia %s verso le %s\n",
			icon, nameIT, IntensityName(lang, first.Intensity), clockFor(lang, first.Time))
	} else {
		fmt.Fprintf(b, "• %s **%s**: %s rain around %s\n",
			icon, nameEN, IntensityName(lang, first.Intensity), clockFor(lang, first.Time))
	}
}

// writeDailySection renders the multi-day outlook of the weather report.
func writeDailySection(b *strings.Builder, lang types.Language, daily []weather.DailyForecast) {
	if lang == types.LangItalian {
		b.WriteString("**Previsioni 5 Giorni**\n")
	} else {
		b.WriteString("**5-Day Forecast**\n")
	}
	if len(daily) == 0 {
		if lang == types.LangItalian {
			b.WriteString("⚠️ Previsioni giornaliere temporaneamente non disponibili\n")
		} else {
			b.WriteString("⚠️ Daily forecast temporarily unavailable\n")
		}
		return
	}

	days := daily
	if len(days) > 5 {
		days = days[:5]
	}
	names := dayNames[lang]
	for i, day := range days {
		prefix := ""
		if i == 0 {
			if lang == types.LangItalian {
				prefix = "**Oggi:** "
			} else {
				prefix = "**Today:** "
			}
		}
		minLabel, maxLabel := "Min", "Max"
		fmt.Fprintf(b, "%s%s %s %s %s %.0f° → %s **%.0f°**\n",
			prefix, names[day.Date.Weekday()], day.Date.Format("02/01"),
			WeatherIcon(day.WeatherCode), minLabel, day.MinC, maxLabel, day.MaxC)
	}
}

// RainOutlook renders the detailed 48-hour rain forecast (/rain command).
// Events must be localized and sorted; now anchors the today/tomorrow split.
func RainOutlook(lang types.Language, city, region string, events []types.RainEvent, now time.Time) string {
	lang = lang.Normalize()
	var b strings.Builder

	if lang == types.LangItalian {
		fmt.Fprintf(&b, "🌧️ **Previsione Pioggia per %s**\n", city)
	} else {
		fmt.Fprintf(&b, "🌧️ **Rain Forecast for %s**\n", city)
	}
	if region != "" {
		fmt.Fprintf(&b, "*%s*\n", region)
	}
	b.WriteString("\n")

	if len(events) == 0 {
		if lang == types.LangItalian {
			b.WriteString("✅ Nessuna pioggia significativa prevista nei prossimi 48 ore.\n")
			b.WriteString("Al massimo qualche pioviggine o rovescio isolato.\n")
			b.WriteString("\n_Fonte dati: Open-Meteo_")
		} else {
			b.WriteString("✅ No significant rain expected in the next 48 hours.\n")
			b.WriteString("Only light drizzle or isolated showers possible.\n")
			b.WriteString("\n_Data source: Open-Meteo_")
		}
		return b.String()
	}

	// Calendar-day split on local wall-clock dates, not absolute 24h spans.
	today := now.Format("2006-01-02")
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")
	var todayEvents, tomorrowEvents []types.RainEvent
	for _, e := range events {
		switch e.Time.Format("2006-01-02") {
		case today:
			todayEvents = append(todayEvents, e)
		case tomorrow:
			tomorrowEvents = append(tomorrowEvents, e)
		}
	}

	if len(todayEvents) > 0 {
		writeOutlookDay(&b, lang, "Oggi", "Today", now, todayEvents)
	}
	if len(tomorrowEvents) > 0 {
		writeOutlookDay(&b, lang, "Domani", "Tomorrow", now.AddDate(0, 0, 1), tomorrowEvents)
	}

	total := totalPrecipitation(events)
	if lang == types.LangItalian {
		fmt.Fprintf(&b, "**Accumulo totale (48h): %.1f mm**\n\n", total)
	} else {
		fmt.Fprintf(&b, "**Total accumulation (48h): %.1f mm**\n\n", total)
	}

	maxProb := 0.0
	for _, e := range events {
		if e.ProbabilityPct > maxProb {
			maxProb = e.ProbabilityPct
		}
	}
	if lang == types.LangItalian {
		fmt.Fprintf(&b, "*Probabilità massima pioggia: %.0f%%*\n", maxProb)
		b.WriteString("\n_Fonte dati: Open-Meteo_")
		if total > 15 {
			b.WriteString("\n\n💡 **Consiglio**: Pioggia abbondante prevista. Considera di rimandare attività all'aperto.")
		}
	} else {
		fmt.Fprintf(&b, "*Maximum rain probability: %.0f%%*\n", maxProb)
		b.WriteString("\n_Data source: Open-Meteo_")
		if total > 15 {
			b.WriteString("\n\n💡 **Tip**: Heavy rain expected. Consider postponing outdoor activities.")
		}
	}
	return b.String()
}

// writeOutlookDay renders one day block of the detailed rain forecast.
func writeOutlookDay(b *strings.Builder, lang types.Language, nameIT, nameEN string, date time.Time, events []types.RainEvent) {
	if lang == types.LangItalian {
		fmt.Fprintf(b, "**%s (%s)**\n", nameIT, date.Format("02/01"))
	} else {
		fmt.Fprintf(b, "**%s (%s)**\n", nameEN, date.Format("02/01"))
	}

	parts := splitDayParts(events)
	writeOutlookPart(b, lang, "Mattina", "Morning", parts.morning)
	writeOutlookPart(b, lang, "Pomeriggio", "Afternoon", parts.afternoon)
	writeOutlookPart(b, lang, "Sera", "Evening", parts.evening)
	writeOutlookPart(b, lang, "Notte", "Night", parts.night)

	if lang == types.LangItalian {
		fmt.Fprintf(b, "  *Totale %s: %.1f mm*\n\n", strings.ToLower(nameIT), totalPrecipitation(events))
	} else {
		fmt.Fprintf(b, "  *%s total: %.1f mm*\n\n", nameEN, totalPrecipitation(events))
	}
}

// writeOutlookPart renders one day-part bullet of the detailed forecast.
func writeOutlookPart(b *strings.Builder, lang types.Language, nameIT, nameEN string, events []types.RainEvent) {
	if len(events) == 0 {
		return
	}
	if lang == types.LangItalian {
		fmt.Fprintf(b, "• **%s**: Pioggia %s (~%.1f mm)\n",
			nameIT, IntensityName(lang, events[0].Intensity), totalPrecipitation(events))
	} else {
		fmt.Fprintf(b, "• **%s**: %s rain (~%.1f mm)\n",
			nameEN, IntensityName(lang, events[0].Intensity), totalPrecipitation(events))
	}
}

// MorningGreeting prefixes the daily broadcast of the weather report.
func MorningGreeting(lang types.Language, city string) string {
	if lang.Normalize() == types.LangItalian {
		return fmt.Sprintf("🌅 *Buongiorno!* Ecco le previsioni per %s:\n\n", city)
	}
	return fmt.Sprintf("🌅 *Good morning!* Here's the forecast for %s:\n\n", city)
}

// MorningFailure is sent when a user's morning report cannot be produced.
func MorningFailure(lang types.Language, city string) string {
	if lang.Normalize() == types.LangItalian {
		return fmt.Sprintf("⚠️ Non sono riuscito a recuperare le previsioni per %s questa mattina.\n\n"+
			"Controlla che il nome della città sia corretto o salva una nuova città con /setcity", city)
	}
	return fmt.Sprintf("⚠️ I couldn't retrieve the forecast for %s this morning.\n\n"+
		"Please check if the city name is correct or save a new city with /setcity", city)
}

// Welcome is the /start and /help reply.
func Welcome(lang types.Language) string {
	if lang.Normalize() == types.LangItalian {
		return "Ciao! Sono il tuo Assistente Meteo 🌤️\n\n" +
			"Inviami un nome di città o usa /weather <città>\n" +
			"Usa /rain <città> per la previsione pioggia dettagliata\n" +
			"Usa /setcity <città> per salvare la tua città\n" +
			"Usa /alerts per attivare gli avvisi pioggia\n" +
			"Usa /language per cambiare lingua"
	}
	return "Hello! I am your Weather Assistant 🌤️\n\n" +
		"Send me a city name or use /weather <city>\n" +
		"Use /rain <city> for the detailed rain forecast\n" +
		"Use /setcity <city> to save your city\n" +
		"Use /alerts to enable rain alerts\n" +
		"Use /language to change language"
}

// LanguagePrompt asks the user to pick a language; intentionally bilingual.
func LanguagePrompt() string {
	return "Choose your language / Scegli la tua lingua:"
}

// LanguageSet confirms a language change; intentionally bilingual.
func LanguageSet(lang types.Language) string {
	if lang.Normalize() == types.LangItalian {
		return "✅ Language set to Italian! / Lingua impostata su Italiano!"
	}
	return "✅ Language set to English! / Lingua impostata su Inglese!"
}

// CityNotFound is the reply when geocoding finds no match.
func CityNotFound(lang types.Language, city string) string {
	if lang.Normalize() == types.LangItalian {
		return fmt.Sprintf("❌ Non riesco a trovare dati meteo per '%s'.\n\n"+
			"Controlla il nome della città e riprova.", city)
	}
	return fmt.Sprintf("❌ I couldn't find weather data for '%s'.\n\n"+
		"Please check the city name and try again.", city)
}

// ServiceUnavailable is the reply when the weather upstream is down.
func ServiceUnavailable(lang types.Language) string {
	if lang.Normalize() == types.LangItalian {
		return "Servizio meteo non disponibile"
	}
	return "Weather service unavailable"
}

// AskCity is the reply to a city command with no argument.
func AskCity(lang types.Language) string {
	if lang.Normalize() == types.LangItalian {
		return "Specifica una città. Esempio: /weather Roma"
	}
	return "Please specify a city. Example: /weather Rome"
}

// CitySaved confirms a /setcity.
func CitySaved(lang types.Language, city string) string {
	if lang.Normalize() == types.LangItalian {
		return fmt.Sprintf("✅ Città salvata: %s\n\nRiceverai il meteo ogni mattina e potrai attivare gli avvisi pioggia con /alerts", city)
	}
	return fmt.Sprintf("✅ City saved: %s\n\nYou'll receive the weather every morning and can enable rain alerts with /alerts", city)
}

// NoSavedCity is the reply to /alerts when the user has no saved city.
func NoSavedCity(lang types.Language) string {
	if lang.Normalize() == types.LangItalian {
		return "Prima salva la tua città con /setcity <città>"
	}
	return "First save your city with /setcity <city>"
}

// AlertsToggled confirms a rain-alert opt-in change.
func AlertsToggled(lang types.Language, enabled bool) string {
	if lang.Normalize() == types.LangItalian {
		if enabled {
			return "🔔 Avvisi pioggia attivati! Ti avviserò quando sta per piovere nella tua città."
		}
		return "🔕 Avvisi pioggia disattivati."
	}
	if enabled {
		return "🔔 Rain alerts enabled! I'll warn you when rain is about to start in your city."
	}
	return "🔕 Rain alerts disabled."
}

// ScanSummary renders the admin diagnostic message after a scan. Admin
// messages are English only.
func ScanSummary(summary types.ScanSummary, stats types.UserStats) string {
	return fmt.Sprintf(
		"📊 *Rain Scan Summary*\n"+
			"Time: %s\n"+
			"Duration: %s\n"+
			"✅ Sent: %d\n"+
			"⏭️ Skipped: %d\n"+
			"❌ Errors: %d\n\n"+
			"Users: %d total, %d with city, %d with alerts\n"+
			"Alerts sent (24h): %d",
		summary.Started.Format("15:04 02/01/2006"),
		summary.Duration.Round(time.Millisecond),
		summary.Sent, summary.Skipped, summary.Errors,
		stats.TotalUsers, stats.UsersWithCity, stats.UsersWithAlert,
		stats.AlertsSent24h)
}
