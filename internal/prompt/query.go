package prompt

import (
	"strings"

	"github.com/Conceptual-Machines/albumatlas/internal/models"
)

// DefaultQuery is used when every preference field is empty
const DefaultQuery = "Suggest some great albums for me to discover"

// ComposeQuery turns form preferences into a natural-language query.
// Sentences are appended in the fixed order mood, artist, album, then the
// free text verbatim. Blank fields are skipped; everything else is forwarded
// unvalidated.
func ComposeQuery(input models.PreferenceInput) string {
	var b strings.Builder

	if !isBlank(input.Mood) {
		b.WriteString("I'm feeling " + input.Mood + ". ")
	}
	if !isBlank(input.Artist) {
		b.WriteString("I like " + input.Artist + ". ")
	}
	if !isBlank(input.Album) {
		b.WriteString("I enjoyed " + input.Album + ". ")
	}
	if !isBlank(input.Additional) {
		b.WriteString(input.Additional)
	}

	query := b.String()
	if strings.TrimSpace(query) == "" {
		return DefaultQuery
	}
	return query
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
