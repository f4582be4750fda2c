// Package i18n provides synchronous translation lookups backed by embedded
// YAML bundles. Keys are dotted paths into the bundle ("General.Grid").
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Translation keys used by the energy chart
const (
	KeyProduction  = "General.Production"
	KeyGrid        = "General.Grid"
	KeyGridBuy     = "General.GridBuy"
	KeyGridSell    = "General.GridSell"
	KeyConsumption = "General.Consumption"
	KeyNoData      = "General.NoData"
	KeyChartTitle  = "Edge.History.EnergyChart"
	KeyTime        = "Edge.History.Time"
)

// Translation keys used by stored reports
const (
	KeyReportTitle    = "Report.Title"
	KeyReportPeriod   = "Report.Period"
	KeyReportProduced = "Report.Produced"
	KeyReportSold     = "Report.Sold"
	KeyReportBought   = "Report.Bought"
	KeyReportConsumed = "Report.Consumed"
	KeyReportSamples  = "Report.Samples"
)

// Translator resolves translation keys for one language
type Translator interface {
	Instant(key string) string
	Language() language.Tag
}

// Bundle holds the translations of every embedded language
type Bundle struct {
	fallback     language.Tag
	tags         []language.Tag
	translations map[language.Tag]map[string]string
	matcher      language.Matcher
}

// NewBundle loads the embedded locales. The fallback language is listed first
// so that the matcher prefers it when nothing else fits.
func NewBundle(fallback string) (*Bundle, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}

	b := &Bundle{translations: make(map[language.Tag]map[string]string)}
	for _, entry := range entries {
		name := entry.Name()
		tag, err := language.Parse(strings.TrimSuffix(name, path.Ext(name)))
		if err != nil {
			return nil, fmt.Errorf("failed to parse locale name %s: %w", name, err)
		}
		data, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", name, err)
		}
		var tree map[string]interface{}
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", name, err)
		}
		flat := make(map[string]string)
		flatten("", tree, flat)
		b.translations[tag] = flat
		b.tags = append(b.tags, tag)
	}

	fb, err := language.Parse(fallback)
	if err != nil || b.translations[fb] == nil {
		fb = language.English
	}
	b.fallback = fb

	sort.Slice(b.tags, func(i, j int) bool {
		if b.tags[i] == fb {
			return true
		}
		if b.tags[j] == fb {
			return false
		}
		return b.tags[i].String() < b.tags[j].String()
	})
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

func flatten(prefix string, tree map[string]interface{}, out map[string]string) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Languages returns the available language tags, fallback first
func (b *Bundle) Languages() []language.Tag {
	return append([]language.Tag(nil), b.tags...)
}

// Translator returns the translator best matching an Accept-Language style
// preference list ("de-DE,de;q=0.9,en;q=0.8"). An empty or unknown preference
// yields the fallback language.
func (b *Bundle) Translator(preference string) Translator {
	tag := b.fallback
	if preference != "" {
		if prefs, _, err := language.ParseAcceptLanguage(preference); err == nil && len(prefs) > 0 {
			_, idx, conf := b.matcher.Match(prefs...)
			if conf != language.No {
				tag = b.tags[idx]
			}
		}
	}
	return &translator{
		tag:      tag,
		messages: b.translations[tag],
		fallback: b.translations[b.fallback],
	}
}

type translator struct {
	tag      language.Tag
	messages map[string]string
	fallback map[string]string
}

// Instant returns the translation of key, falling back to the default
// language and finally to the key itself
func (t *translator) Instant(key string) string {
	if v, ok := t.messages[key]; ok {
		return v
	}
	if v, ok := t.fallback[key]; ok {
		return v
	}
	return key
}

func (t *translator) Language() language.Tag {
	return t.tag
}

// Static is a Translator backed by a fixed map. Handy for tests and for
// callers that already resolved their labels.
type Static map[string]string

// Instant returns the mapped value or the key
func (s Static) Instant(key string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return key
}

// Language reports an undetermined tag
func (s Static) Language() language.Tag {
	return language.Und
}
