// Package lang negotiates the preferred display language for the launcher.
//
// The set below mirrors the translations the application ships; the matcher
// picks the closest supported tag for the user's locale so downstream
// surfaces render in a language that actually exists.
package lang

import (
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/language"

	"github.com/tutunian/cryptomator/internal/logging"
)

// supported lists the shipped translations, default first.
var supported = []language.Tag{
	language.English,
	language.German,
	language.French,
	language.Italian,
	language.Dutch,
	language.Polish,
	language.BrazilianPortuguese,
	language.Russian,
	language.Japanese,
	language.Korean,
	language.SimplifiedChinese,
	language.TraditionalChinese,
}

var matcher = language.NewMatcher(supported)

// Preferred returns the supported language closest to the process locale.
// Locale hints are read from LC_ALL, LC_MESSAGES, and LANG in that order.
func Preferred() language.Tag {
	var prefs []string
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if value := localeTag(os.Getenv(key)); value != "" {
			prefs = append(prefs, value)
		}
	}
	tag, _ := language.MatchStrings(matcher, prefs...)
	return tag
}

// ApplyPreferred resolves the preferred language and logs the decision.
func ApplyPreferred(logger *slog.Logger) language.Tag {
	if logger == nil {
		logger = logging.NewNop()
	}
	tag := Preferred()
	logger.Debug("applied preferred language", logging.String("language", tag.String()))
	return tag
}

// localeTag converts a POSIX locale value to a BCP 47 tag, e.g.
// "de_DE.UTF-8@euro" -> "de-DE". C and POSIX carry no language preference.
func localeTag(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || value == "C" || value == "POSIX" {
		return ""
	}
	if idx := strings.IndexAny(value, ".@"); idx >= 0 {
		value = value[:idx]
	}
	return strings.ReplaceAll(value, "_", "-")
}
