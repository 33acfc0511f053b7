package httperr

import (
	"fmt"

	"golang.org/x/text/language"
)

type messageID int

const (
	msgDuplicate messageID = iota
	msgDuplicateField
	msgInvalidID
	msgValidation
	msgSessionExpired
	msgInvalidToken
	msgUploadFailed
	msgUploadTooLarge
	msgUploadTooMany
	msgUploadBadType
	msgInternal
)

var catalog = map[language.Base]map[messageID]string{
	mustBase(language.Swedish): {
		msgDuplicate:      "Värdet finns redan",
		msgDuplicateField: "%s finns redan",
		msgInvalidID:      "Ogiltigt ID-format",
		msgValidation:     "Ogiltiga uppgifter",
		msgSessionExpired: "Din session har gått ut. Logga in igen.",
		msgInvalidToken:   "Ogiltig token. Logga in igen.",
		msgUploadFailed:   "Filuppladdningen misslyckades",
		msgUploadTooLarge: "Filen är för stor",
		msgUploadTooMany:  "För många filer",
		msgUploadBadType:  "Filtypen stöds inte",
		msgInternal:       "Något gick fel på servern",
	},
	mustBase(language.English): {
		msgDuplicate:      "The value already exists",
		msgDuplicateField: "%s already exists",
		msgInvalidID:      "Invalid ID format",
		msgValidation:     "Invalid input",
		msgSessionExpired: "Your session has expired. Please log in again.",
		msgInvalidToken:   "Invalid token. Please log in again.",
		msgUploadFailed:   "File upload failed",
		msgUploadTooLarge: "File is too large",
		msgUploadTooMany:  "Too many files",
		msgUploadBadType:  "File type is not supported",
		msgInternal:       "Something went wrong on the server",
	},
}

// Supported lists the message languages; the first is the default.
var Supported = []language.Tag{language.Swedish, language.English}

var matcher = language.NewMatcher(Supported)

func mustBase(t language.Tag) language.Base {
	b, _ := t.Base()
	return b
}

// MatchLanguage picks a supported language from an Accept-Language header.
// Unknown or empty headers yield Swedish.
func MatchLanguage(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Supported[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

func message(lang language.Tag, id messageID, args ...any) string {
	msgs, ok := catalog[mustBase(lang)]
	if !ok {
		msgs = catalog[mustBase(Supported[0])]
	}
	if len(args) > 0 {
		return fmt.Sprintf(msgs[id], args...)
	}
	return msgs[id]
}
