package i18n

import (
	"golang.org/x/text/language"
)

// Catalog holds the UI strings for the locales the site is generated in.
// The content itself is authored per-locale; these are only the chrome
// strings the generator needs (not-found states, back links).
type Catalog struct {
	defaultLocale string
	matcher       language.Matcher
	tags          []language.Tag
	locales       []string
}

// New builds a catalog for the given locales. Unknown locale codes are
// skipped; if none survive, the catalog falls back to Korean only.
func New(locales []string, defaultLocale string) *Catalog {
	var tags []language.Tag
	var kept []string
	for _, l := range locales {
		tag, err := language.Parse(l)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		kept = append(kept, l)
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.Korean}
		kept = []string{"ko"}
	}
	if defaultLocale == "" {
		defaultLocale = kept[0]
	}

	return &Catalog{
		defaultLocale: defaultLocale,
		matcher:       language.NewMatcher(tags),
		tags:          tags,
		locales:       kept,
	}
}

// Locales returns the locale codes the catalog was built with.
func (c *Catalog) Locales() []string {
	return c.locales
}

// DefaultLocale returns the locale used when negotiation fails.
func (c *Catalog) DefaultLocale() string {
	return c.defaultLocale
}

// Match negotiates a locale from an Accept-Language header (or a bare
// locale code). Returns the default locale when nothing matches.
func (c *Catalog) Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return c.defaultLocale
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.defaultLocale
	}

	_, index, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return c.defaultLocale
	}
	return c.locales[index]
}

// T returns the string for key in the given locale, falling back to the
// default locale, then to the key itself.
func (c *Catalog) T(locale, key string) string {
	if m, ok := messages[locale]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if m, ok := messages[c.defaultLocale]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	return key
}

var messages = map[string]map[string]string{
	"ko": {
		"not_found.title":   "페이지를 찾을 수 없습니다",
		"not_found.book":    "요청하신 도서를 찾을 수 없습니다.",
		"not_found.author":  "요청하신 작가를 찾을 수 없습니다.",
		"not_found.news":    "요청하신 소식을 찾을 수 없습니다.",
		"not_found.item":    "요청하신 자료를 찾을 수 없습니다.",
		"back.books":        "도서 목록으로 돌아가기",
		"back.authors":      "작가 목록으로 돌아가기",
		"back.news":         "소식 목록으로 돌아가기",
		"back.home":         "홈으로 돌아가기",
		"search.books":      "도서",
		"search.authors":    "작가",
		"search.news":       "소식",
		"search.dataroom":   "자료실",
	},
	"en": {
		"not_found.title":   "Page not found",
		"not_found.book":    "The requested book could not be found.",
		"not_found.author":  "The requested author could not be found.",
		"not_found.news":    "The requested article could not be found.",
		"not_found.item":    "The requested item could not be found.",
		"back.books":        "Back to books",
		"back.authors":      "Back to authors",
		"back.news":         "Back to news",
		"back.home":         "Back to home",
		"search.books":      "Books",
		"search.authors":    "Authors",
		"search.news":       "News",
		"search.dataroom":   "Data Room",
	},
}
