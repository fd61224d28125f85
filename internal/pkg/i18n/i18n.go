package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const DefaultLocale = "pt-BR"

//go:embed locales/*.yaml
var embedded embed.FS

type Translations map[string]string

var (
	locales = make(map[string]Translations)
	mu      sync.RWMutex
	once    sync.Once
)

// LoadTranslations reads every <locale>.yaml in fsys. Later calls override
// keys loaded earlier.
func LoadTranslations(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		locale := strings.TrimSuffix(entry.Name(), ".yaml")

		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}

		var catalog struct {
			Messages Translations `yaml:"MESSAGES"`
		}
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}

		if locales[locale] == nil {
			locales[locale] = make(Translations)
		}
		for k, v := range catalog.Messages {
			locales[locale][k] = v
		}
	}

	return nil
}

func loadDefaults() {
	once.Do(func() {
		sub, err := fs.Sub(embedded, "locales")
		if err != nil {
			panic(err)
		}
		if err := LoadTranslations(sub); err != nil {
			panic(err)
		}
	})
}

func Translate(locale, key string) string {
	loadDefaults()

	mu.RLock()
	defer mu.RUnlock()

	if trans, ok := locales[locale]; ok {
		if val, ok := trans[key]; ok {
			return val
		}
	}

	if locale != DefaultLocale {
		if trans, ok := locales[DefaultLocale]; ok {
			if val, ok := trans[key]; ok {
				return val
			}
		}
	}

	return key
}

// Format translates key and applies args to it as a Printf format.
func Format(locale, key string, args ...any) string {
	return fmt.Sprintf(Translate(locale, key), args...)
}
