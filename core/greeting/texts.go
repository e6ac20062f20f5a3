package greeting

import (
	"fmt"
	"strings"
	"time"
)

// Texts are the user-facing strings of one locale.
type Texts struct {
	Locale       string
	Fallback     string
	Placeholder  string
	DefaultLabel string
	SnoozeNotice string
	prompt       string // one %q verb for the alarm label

	weekdays   [7]string
	months     [12]string
	dateFormat string // weekday, day, month
}

// Prompt renders the generation prompt for label.
func (t Texts) Prompt(label string) string {
	return fmt.Sprintf(t.prompt, label)
}

// FormatDate renders d as a long date, e.g. "segunda-feira, 6 de maio".
func (t Texts) FormatDate(d time.Time) string {
	return fmt.Sprintf(t.dateFormat, t.weekdays[d.Weekday()], d.Day(), t.months[d.Month()-1])
}

var ptBR = Texts{
	Locale:       "pt-BR",
	Fallback:     "Bom dia! Desperte para um novo dia cheio de possibilidades.",
	Placeholder:  "Gerando saudação matinal...",
	DefaultLabel: "Novo Alarme",
	SnoozeNotice: "Soneca ativada (%d min)",
	prompt: "Gere uma saudação matinal curta, motivadora e amigável em Português do Brasil " +
		"para alguém que acaba de acordar. O objetivo do alarme era: %q. Seja conciso (máximo 2 frases).",
	weekdays: [7]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"},
	months: [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
	dateFormat: "%s, %d de %s",
}

var en = Texts{
	Locale:       "en",
	Fallback:     "Good morning! Wake up to a new day full of possibilities.",
	Placeholder:  "Generating your morning greeting...",
	DefaultLabel: "New Alarm",
	SnoozeNotice: "Snooze on (%d min)",
	prompt: "Write a short, motivating and friendly morning greeting in English for someone " +
		"who just woke up. The alarm was for: %q. Be concise (2 sentences at most).",
	weekdays: [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	months: [12]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	dateFormat: "%s, %[3]s %[2]d",
}

// TextsFor returns the texts for locale, defaulting to pt-BR.
func TextsFor(locale string) Texts {
	l := strings.ToLower(locale)
	if l == "en" || strings.HasPrefix(l, "en-") || strings.HasPrefix(l, "en_") {
		return en
	}
	return ptBR
}
