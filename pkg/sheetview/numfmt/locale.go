package numfmt

import (
	"sync"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Separators are the decimal and digit-group marks of a locale.
type Separators struct {
	Decimal string
	Group   string
}

var (
	localeMu     sync.Mutex
	activeLocale = language.English

	sepMu    sync.RWMutex
	sepCache = map[language.Tag]Separators{}
)

// ActiveLocale returns the process-wide numeric locale.
func ActiveLocale() language.Tag {
	localeMu.Lock()
	defer localeMu.Unlock()
	return activeLocale
}

// useLocale makes tag the active numeric locale until the returned func is
// called. Other callers block in between, so the swap is never observed
// half-way.
func useLocale(tag language.Tag) (restore func()) {
	localeMu.Lock()
	prev := activeLocale
	activeLocale = tag
	return func() {
		activeLocale = prev
		localeMu.Unlock()
	}
}

// currentSeparators must be called while the locale lock is held.
func currentSeparators() Separators {
	return SeparatorsFor(activeLocale)
}

// SeparatorsFor derives the separators of tag by printing a sample number.
func SeparatorsFor(tag language.Tag) Separators {
	sepMu.RLock()
	s, ok := sepCache[tag]
	sepMu.RUnlock()
	if ok {
		return s
	}

	s = detectSeparators(message.NewPrinter(tag).Sprintf("%.1f", 1234.5))
	sepMu.Lock()
	sepCache[tag] = s
	sepMu.Unlock()
	return s
}

func detectSeparators(printed string) Separators {
	var marks []string
	for _, r := range printed {
		if unicode.IsDigit(r) {
			continue
		}
		marks = append(marks, string(r))
	}

	s := Separators{Decimal: ".", Group: ","}
	switch len(marks) {
	case 0:
	case 1:
		s.Decimal = marks[0]
	default:
		s.Group = marks[0]
		s.Decimal = marks[len(marks)-1]
	}
	if s.Group == s.Decimal {
		s.Group = ","
	}
	if len(marks) < 2 && s.Decimal == "," {
		s.Group = "."
	}
	return s
}

// ParseLocale parses a BCP 47 tag, falling back to English on empty input.
func ParseLocale(s string) (language.Tag, error) {
	if s == "" {
		return language.English, nil
	}
	return language.Parse(s)
}
