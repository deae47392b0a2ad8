package judge0

import (
	"sort"
	"strings"
)

// Language is a supported language and its Judge0 language id.
type Language struct {
	Name string
	ID   int
}

var languageIDs = map[string]int{
	"C":          50,
	"CPP":        54,
	"GO":         60,
	"JAVA":       62,
	"JAVASCRIPT": 63,
	"PYTHON":     71,
	"RUST":       73,
	"TYPESCRIPT": 74,
}

// ResolveLanguage maps a language name to its Judge0 id, ignoring case and
// surrounding spaces. Unknown names report ok == false.
func ResolveLanguage(name string) (Language, bool) {
	canonical := strings.ToUpper(strings.TrimSpace(name))
	id, ok := languageIDs[canonical]
	if !ok {
		return Language{}, false
	}
	return Language{Name: canonical, ID: id}, true
}

// SupportedLanguages lists the canonical language names in sorted order.
func SupportedLanguages() []string {
	names := make([]string, 0, len(languageIDs))
	for name := range languageIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
