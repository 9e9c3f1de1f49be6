package analyzer

import (
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/vibescan/domain"
)

var languageByExtension = map[string]domain.Language{
	".js":  domain.LanguageJavaScript,
	".jsx": domain.LanguageJavaScript,
	".mjs": domain.LanguageJavaScript,
	".cjs": domain.LanguageJavaScript,
	".ts":  domain.LanguageTypeScript,
	".tsx": domain.LanguageTypeScript,
	".mts": domain.LanguageTypeScript,
	".cts": domain.LanguageTypeScript,
}

// DetectLanguage returns the language selected by the file extension, or ""
// when the extension is not a JavaScript or TypeScript one.
func DetectLanguage(path string) domain.Language {
	return languageByExtension[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions returns the extensions DetectLanguage recognizes
func SupportedExtensions() []string {
	return []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"}
}

func containsLanguage(languages []domain.Language, lang domain.Language) bool {
	for _, l := range languages {
		if l == lang {
			return true
		}
	}
	return false
}

var bothLanguages = []domain.Language{domain.LanguageJavaScript, domain.LanguageTypeScript}
