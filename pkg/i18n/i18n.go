package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	mu     sync.RWMutex
	bundle *goi18n.Bundle
)

// Init creates the global bundle and loads the embedded locales. defaultLocale
// is the language used when a request names none we know; an empty or
// unparsable value means English.
func Init(defaultLocale string) error {
	tag := language.English
	if defaultLocale != "" {
		if t, err := language.Parse(defaultLocale); err == nil {
			tag = t
		}
	}

	b := goi18n.NewBundle(tag)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, f := range []string{"locales/active.en.json", "locales/active.id.json"} {
		if _, err := b.LoadMessageFileFS(localeFS, f); err != nil {
			return err
		}
	}

	mu.Lock()
	bundle = b
	mu.Unlock()
	return nil
}

// Load adds an extra message file from disk on top of the embedded ones.
func Load(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if bundle == nil {
		bundle = goi18n.NewBundle(language.English)
		bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	}
	_, err := bundle.LoadMessageFile(path)
	return err
}

// LoadDir loads every *.json message file in dir. File names follow the
// go-i18n convention, e.g. active.de.json.
func LoadDir(dir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, err
	}
	for _, f := range files {
		if err := Load(f); err != nil {
			return 0, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return len(files), nil
}

// T localizes messageID for the first matching language in langs (raw
// Accept-Language values are fine). Unknown ids come back unchanged.
func T(messageID string, data map[string]any, langs ...string) string {
	mu.RLock()
	b := bundle
	mu.RUnlock()
	if b == nil {
		return messageID
	}

	msg, err := goi18n.NewLocalizer(b, langs...).Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}
