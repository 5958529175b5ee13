// Package translate renders the emulator's messages in the user's locale.
package translate

import (
	"log"
	"sync/atomic"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

// FALLBACK_LOCALE is matched after any requested locale.
const FALLBACK_LOCALE = "en-US"

var printer atomic.Pointer[message.Printer]

func init() {
	SetLocale()
}

// SetLocale selects the locales of later messages, most preferred first.
// With no locales the host's locales are used. Error values built at
// package initialization keep the host locale.
func SetLocale(locales ...string) {
	if len(locales) == 0 {
		var err error
		locales, err = locale.GetLocales()
		if err != nil {
			log.Printf("pdp11: locale: %v", err)
		}
	}

	tags := append(append([]string{}, locales...), FALLBACK_LOCALE)
	printer.Store(message.NewPrinter(message.MatchLanguage(tags...)))
}

// Message renders an en-US Sprintf() format in the selected locale.
func Message(key message.Reference, args ...any) string {
	return printer.Load().Sprintf(key, args...)
}
