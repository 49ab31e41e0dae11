package discovery

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is a tagged pattern. Rules are evaluated in table order.
type Rule struct {
	Tag     string
	Pattern *regexp.Regexp
}

func rule(tag, pattern string) Rule {
	return Rule{Tag: tag, Pattern: regexp.MustCompile(pattern)}
}

// extractor is a pattern whose single capturing group holds the value to
// collect.
func extractor(pattern string) *regexp.Regexp {
	re := regexp.MustCompile(pattern)
	if re.NumSubexp() != 1 {
		panic(fmt.Sprintf("discovery: extraction pattern %q must have exactly one capturing group, has %d", pattern, re.NumSubexp()))
	}
	return re
}

// scriptFile matches the files a target can use as entry.
var scriptFile = regexp.MustCompile(`(?i)\.(?:[cm]?js|jsx|tsx?)$`)

// Import-like statements, split by syntax generation.
var (
	legacyImports = []*regexp.Regexp{
		extractor(`\brequire\s*\(\s*['"]([^'"]+)['"]\s*\)`),
	}
	modernImports = []*regexp.Regexp{
		extractor(`\bimport\s+[\w$*{}\s,]+?\s+from\s+['"]([^'"]+)['"]`),
		extractor(`\bimport\s+['"]([^'"]+)['"]`),
		extractor(`\bimport\s*\(\s*['"]([^'"]+)['"]\s*\)`),
		extractor(`\bexport\s+(?:\*(?:\s+as\s+[\w$]+)?|\{[^}]*\})\s+from\s+['"]([^'"]+)['"]`),
	}
)

// Export-like statements, split by syntax generation.
var (
	legacyExports = []*regexp.Regexp{
		extractor(`\b(module\.exports)\b`),
		extractor(`(?m)^\s*exports\.([\w$]+)\s*=`),
	}
	modernExports = []*regexp.Regexp{
		extractor(`\bexport\s+(default)\b`),
		extractor(`\bexport\s+(?:const|let|var|class|(?:async\s+)?function\*?)\s+([\w$]+)`),
		extractor(`\bexport\s*\{([^}]*)\}`),
	}
)

// BrowserFrameworks maps import paths to frameworks that only render in a
// browser.
var BrowserFrameworks = []Rule{
	rule("angularjs", `^angular$`),
	rule("angular", `^@angular/(?:core|platform-browser(?:-dynamic)?)$`),
	rule("aurelia", `^aurelia-(?:bootstrapper|framework|pal-browser)$`),
	rule("react", `^react-dom(?:/client)?$`),
	rule("preact", `^preact$`),
	rule("vue", `^vue$`),
	rule("svelte", `^svelte$`),
}

// NodeFrameworks maps import paths that show a framework is being rendered
// on the server.
var NodeFrameworks = []Rule{
	rule("react", `^react-dom/server$`),
	rule("preact", `^preact-render-to-string$`),
	rule("vue", `^(?:vue-server-renderer|@vue/server-renderer)$`),
	rule("angular", `^@angular/platform-server$`),
	rule("aurelia", `^aurelia-pal-nodejs$`),
}

// BrowserGlobals are usages of browser-only APIs in source text.
var BrowserGlobals = []Rule{
	rule("document", `\bdocument\.[a-zA-Z]+`),
	rule("window", `\bwindow\.[a-zA-Z]+`),
	rule("navigator", `\bnavigator\.[a-zA-Z]+`),
	rule("storage", `\b(?:local|session)Storage\b`),
	rule("animation-frame", `\brequestAnimationFrame\s*\(`),
	rule("custom-elements", `\bcustomElements\.define\s*\(`),
}

// AssetImports are import paths that need a bundler to be resolved.
var AssetImports = []Rule{
	rule("image", `\.(?:png|jpe?g|gif|svg|webp|ico|bmp|avif)$`),
	rule("font", `\.(?:woff2?|ttf|eot|otf)$`),
	rule("style", `\.(?:css|s[ac]ss|less|styl)$`),
	rule("markup", `\.html?$`),
	rule("media", `\.(?:mp[34]|webm|ogg|wav)$`),
}

// match returns the first rule whose pattern matches any of the values.
func match(rules []Rule, values []string) (Rule, bool) {
	for _, r := range rules {
		for _, v := range values {
			if r.Pattern.MatchString(v) {
				return r, true
			}
		}
	}
	return Rule{}, false
}

// matchText returns the first rule whose pattern matches the text.
func matchText(rules []Rule, text string) (Rule, bool) {
	for _, r := range rules {
		if r.Pattern.MatchString(text) {
			return r, true
		}
	}
	return Rule{}, false
}

// extract collects the first group of every match, lower-cased, trimmed
// and de-duplicated, in order of first appearance.
func extract(patterns []*regexp.Regexp, text string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v := strings.ToLower(strings.TrimSpace(m[1]))
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			values = append(values, v)
		}
	}
	return values
}

// Statements holds the import and export statements found in a file.
type Statements struct {
	LegacyImports []string
	ModernImports []string
	LegacyExports []string
	ModernExports []string
}

// Extract finds the import-like and export-like statements in source text.
func Extract(text string) Statements {
	return Statements{
		LegacyImports: extract(legacyImports, text),
		ModernImports: extract(modernImports, text),
		LegacyExports: extract(legacyExports, text),
		ModernExports: extract(modernExports, text),
	}
}

// Imports returns every import path regardless of syntax.
func (s Statements) Imports() []string {
	return append(append([]string(nil), s.LegacyImports...), s.ModernImports...)
}

// HasExports reports whether the file exports anything.
func (s Statements) HasExports() bool {
	return len(s.LegacyExports) > 0 || len(s.ModernExports) > 0
}

// Modern reports whether modern import or export syntax was used.
func (s Statements) Modern() bool {
	return len(s.ModernImports) > 0 || len(s.ModernExports) > 0
}
