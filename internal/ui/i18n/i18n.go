// Package i18n loads the site's translation catalogs and negotiates the
// request language.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the source locale; other catalogs fall back to it.
const BaseLocale = "ko"

//go:embed locales/*.yaml
var embeddedFS embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle holds every loaded catalog.
type Bundle struct {
	base     language.Tag
	tags     []language.Tag
	messages map[language.Tag]map[string]string
	builder  *catalog.Builder
	matcher  language.Matcher
}

var defaultBundle = mustLoadEmbedded()

func mustLoadEmbedded() *Bundle {
	b, err := LoadFromFS(embeddedFS, BaseLocale)
	if err != nil {
		panic(fmt.Sprintf("i18n: load embedded catalogs: %v", err))
	}
	return b
}

// Default returns the embedded catalogs.
func Default() *Bundle {
	return defaultBundle
}

// LoadFromFS reads locales/*.yaml from fsys. The file name must match the
// catalog's locale and the base locale must be present.
func LoadFromFS(fsys fs.FS, base string) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	baseTag, err := language.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base locale %q: %w", base, err)
	}

	b := &Bundle{
		base:     baseTag,
		messages: make(map[language.Tag]map[string]string),
	}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		name := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if strings.TrimSpace(file.Locale) != name {
			return nil, fmt.Errorf("catalog %s: locale %q must match file name", p, file.Locale)
		}
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}
		msgs := make(map[string]string, len(file.Messages))
		for key, value := range file.Messages {
			key = strings.TrimSpace(key)
			if key == "" {
				return nil, fmt.Errorf("catalog %s: message key cannot be blank", p)
			}
			msgs[key] = value
		}
		b.messages[tag] = msgs
	}
	if _, ok := b.messages[baseTag]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", base)
	}

	b.tags = append(b.tags, baseTag)
	for tag := range b.messages {
		if tag != baseTag {
			b.tags = append(b.tags, tag)
		}
	}
	rest := b.tags[1:]
	sort.Slice(rest, func(i, j int) bool { return rest[i].String() < rest[j].String() })
	b.matcher = language.NewMatcher(b.tags)

	if err := b.register(); err != nil {
		return nil, err
	}
	return b, nil
}

// register fills a catalog builder so every supported tag carries every key,
// with base-locale text standing in for missing translations.
func (b *Bundle) register() error {
	b.builder = catalog.NewBuilder(catalog.Fallback(b.base))
	baseMsgs := b.messages[b.base]
	for _, tag := range b.tags {
		msgs := b.messages[tag]
		for key, value := range baseMsgs {
			if translated, ok := msgs[key]; ok {
				value = translated
			}
			if err := b.builder.SetString(tag, key, value); err != nil {
				return fmt.Errorf("register %s/%s: %w", tag, key, err)
			}
		}
		for key, value := range msgs {
			if _, ok := baseMsgs[key]; ok {
				continue
			}
			if err := b.builder.SetString(tag, key, value); err != nil {
				return fmt.Errorf("register %s/%s: %w", tag, key, err)
			}
		}
	}
	return nil
}

// Base returns the base language tag.
func (b *Bundle) Base() language.Tag {
	return b.base
}

// Supported returns the supported tags, base first.
func (b *Bundle) Supported() []language.Tag {
	return append([]language.Tag(nil), b.tags...)
}

// Match picks the best supported tag for the preferred tags.
func (b *Bundle) Match(preferred ...language.Tag) language.Tag {
	if len(preferred) == 0 {
		return b.base
	}
	_, idx, confidence := b.matcher.Match(preferred...)
	if confidence == language.No || idx < 0 || idx >= len(b.tags) {
		return b.base
	}
	return b.tags[idx]
}

// ParseTag resolves a raw language value to a supported tag.
func (b *Bundle) ParseTag(raw string) (language.Tag, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return language.Und, false
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return language.Und, false
	}
	_, idx, confidence := b.matcher.Match(tag)
	if confidence == language.No || idx < 0 || idx >= len(b.tags) {
		return language.Und, false
	}
	return b.tags[idx], true
}

// Lookup returns the message for key in tag, falling back to the base
// locale.
func (b *Bundle) Lookup(tag language.Tag, key string) (string, bool) {
	if msg, ok := b.messages[tag][key]; ok {
		return msg, true
	}
	msg, ok := b.messages[b.base][key]
	return msg, ok
}

// Translator renders messages for one language.
type Translator struct {
	bundle  *Bundle
	tag     language.Tag
	printer *message.Printer
}

// Translator returns a translator for tag. Unsupported tags get the base.
func (b *Bundle) Translator(tag language.Tag) *Translator {
	if _, ok := b.messages[tag]; !ok {
		tag = b.Match(tag)
	}
	return &Translator{
		bundle:  b,
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(b.builder)),
	}
}

// Tag returns the translator's language.
func (t *Translator) Tag() language.Tag {
	return t.tag
}

// Locale returns the translator's language as a plain string such as "en".
func (t *Translator) Locale() string {
	return t.tag.String()
}

// T translates key. Missing keys render as the key itself. Arguments are
// applied with the catalog's printf-style formatting.
func (t *Translator) T(key string, args ...any) string {
	msg, ok := t.bundle.Lookup(t.tag, key)
	if !ok {
		return key
	}
	if len(args) == 0 {
		return msg
	}
	return t.printer.Sprintf(key, args...)
}
