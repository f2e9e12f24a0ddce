// Package i18n localizes the status, result and warning messages shown to
// users. Messages live in embedded YAML files, one per language.
package i18n

import (
	"embed"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	appLog "carelog/internal/log"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Translator resolves message ids for a preferred language list.
type Translator struct {
	bundle   *i18n.Bundle
	fallback string
}

// New loads the embedded message files. fallback is the language used when
// none of the requested ones has a translation.
func New(fallback string) *Translator {
	bundle := i18n.NewBundle(language.Korean)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		appLog.Error("i18n: reading embedded locales failed", err)
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			appLog.Error("i18n: reading locale failed", err, "file", f.Name())
			continue
		}
		if _, err := bundle.ParseMessageFileBytes(data, f.Name()); err != nil {
			appLog.Error("i18n: parsing locale failed", err, "file", f.Name())
		}
	}

	if fallback == "" {
		fallback = "ko"
	}
	return &Translator{bundle: bundle, fallback: fallback}
}

// T translates id. langs are tried in order (Accept-Language values work
// as-is) before the fallback language. An unknown id is returned unchanged.
func (t *Translator) T(langs []string, id string, data map[string]any) string {
	prefs := append(append([]string{}, langs...), t.fallback)
	loc := i18n.NewLocalizer(t.bundle, prefs...)
	msg, err := loc.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}

// Default translates id in the fallback language only.
func (t *Translator) Default(id string, data map[string]any) string {
	return t.T(nil, id, data)
}
