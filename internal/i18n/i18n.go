// Package i18n renders player-facing game messages in the player's language.
package i18n

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/mcoot/fogwalk/internal/model"
)

// Message keys
const (
	KeyEmptyCell      = "Empty cell."
	KeyBonusSteps     = "Bonus! +%d steps next turn."
	KeyDebuffSteps    = "Debuff! %d steps next turn."
	KeyEnemy          = "Enemy! You skip the next turn."
	KeyEventPrefix    = "Event: %s"
	KeyTurnSkipped    = "You skip this turn."
	KeyDiceRolled     = "You rolled %d and %d: %d steps."
	KeyNoActiveRoll   = "Roll the dice first."
	KeyNoStepsLeft    = "No steps left this turn."
	KeySkipPending    = "You cannot move: you must skip a turn."
	KeyAlreadyVisited = "You cannot step on a cell you already visited this turn."
	KeyTurnInProgress = "Your turn is still in progress."
	KeyStepsRemaining = "You still have steps left this turn."
	KeyInvalidDir     = "Unknown direction."
)

// Message is a localizable message: a catalog key plus its format arguments
type Message struct {
	Key  string
	Args []any
}

// NewMessage creates a Message
func NewMessage(key string, args ...any) Message {
	return Message{Key: key, Args: args}
}

// IsZero reports whether the message is unset
func (m Message) IsZero() bool {
	return m.Key == ""
}

// Supported languages, the first is the fallback
var supported = []language.Tag{language.English, language.Russian}

var russian = map[string]string{
	KeyEmptyCell:      "Пустая клетка.",
	KeyBonusSteps:     "Бонус! +%d шагов на след. ход.",
	KeyDebuffSteps:    "Дебафф! %d шагов на след. ход.",
	KeyEnemy:          "Враг! Вы пропускаете следующий ход.",
	KeyEventPrefix:    "Событие: %s",
	KeyTurnSkipped:    "Вы пропускаете этот ход.",
	KeyDiceRolled:     "Выпало %d и %d: %d шагов.",
	KeyNoActiveRoll:   "Сначала бросьте кубики.",
	KeyNoStepsLeft:    "Шаги на этот ход закончились.",
	KeySkipPending:    "Вы не можете ходить: нужно пропустить ход.",
	KeyAlreadyVisited: "Нельзя вставать на уже пройденную ячейку в этом ходу.",
	KeyTurnInProgress: "Ваш ход ещё не закончен.",
	KeyStepsRemaining: "У вас ещё остались шаги.",
	KeyInvalidDir:     "Неизвестное направление.",
}

var errorKeys = []struct {
	err error
	key string
}{
	{model.ErrNoActiveRoll, KeyNoActiveRoll},
	{model.ErrNoStepsLeft, KeyNoStepsLeft},
	{model.ErrSkipPending, KeySkipPending},
	{model.ErrAlreadyVisited, KeyAlreadyVisited},
	{model.ErrTurnInProgress, KeyTurnInProgress},
	{model.ErrStepsRemaining, KeyStepsRemaining},
	{model.ErrInvalidDirection, KeyInvalidDir},
}

// Localizer holds the message catalog and resolves locales
type Localizer struct {
	catalog  *catalog.Builder
	matcher  language.Matcher
	fallback language.Tag
}

// New builds a Localizer with English and Russian messages.
// defaultLocale is used when a locale is empty or unsupported.
func New(defaultLocale string) *Localizer {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, translated := range russian {
		_ = b.SetString(language.English, key, key)
		_ = b.SetString(language.Russian, key, translated)
	}

	l := &Localizer{
		catalog:  b,
		matcher:  language.NewMatcher(supported),
		fallback: language.English,
	}
	l.fallback = l.Resolve(defaultLocale)
	return l
}

// Resolve maps a locale string to the closest supported tag
func (l *Localizer) Resolve(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return l.fallback
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return l.fallback
	}
	_, idx, conf := l.matcher.Match(tag)
	if conf == language.No {
		return l.fallback
	}
	return supported[idx]
}

// ResolveRequest picks a locale from the "lang" query parameter or the Accept-Language header
func (l *Localizer) ResolveRequest(r *http.Request) language.Tag {
	if r == nil {
		return l.fallback
	}
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return l.Resolve(lang)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		tags, _, err := language.ParseAcceptLanguage(accept)
		if err == nil && len(tags) > 0 {
			_, idx, conf := l.matcher.Match(tags...)
			if conf != language.No {
				return supported[idx]
			}
		}
	}
	return l.fallback
}

// Printer returns a printer for the locale
func (l *Localizer) Printer(locale string) *message.Printer {
	return message.NewPrinter(l.Resolve(locale), message.Catalog(l.catalog))
}

// Render formats msg in the given locale
func (l *Localizer) Render(locale string, msg Message) string {
	if msg.IsZero() {
		return ""
	}
	return l.Printer(locale).Sprintf(msg.Key, msg.Args...)
}

// RenderEvent renders an event description with the "Event: " prefix
func (l *Localizer) RenderEvent(locale string, msg Message) string {
	p := l.Printer(locale)
	return p.Sprintf(KeyEventPrefix, p.Sprintf(msg.Key, msg.Args...))
}

// RenderError returns a localized reason for a rejected transition, or err.Error()
func (l *Localizer) RenderError(locale string, err error) string {
	for _, ek := range errorKeys {
		if errors.Is(err, ek.err) {
			return l.Render(locale, NewMessage(ek.key))
		}
	}
	return err.Error()
}
