package formats

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fileconv/internal/config"
)

// Known categories returned by the upload service.
const (
	CategoryDocument = "document"
	CategoryImage    = "image"
)

// PlaceholderLabel is shown for the empty "none selected" option.
const PlaceholderLabel = "Select target format"

// Format is one selectable target format.
type Format struct {
	Code  string
	Label string
}

// Placeholder returns the neutral option with an empty code.
func Placeholder() Format {
	return Format{Code: "", Label: PlaceholderLabel}
}

// Catalog maps categories to ordered target formats. A Catalog is immutable
// once built and safe for concurrent reads.
type Catalog struct {
	entries map[string][]Format
}

var defaultEntries = map[string][]Format{
	CategoryDocument: {
		{Code: "pdf", Label: "PDF"},
		{Code: "docx", Label: "DOCX (Word)"},
		{Code: "odt", Label: "ODT (OpenDocument)"},
		{Code: "txt", Label: "TXT (Plain Text)"},
	},
	CategoryImage: {
		{Code: "png", Label: "PNG"},
		{Code: "jpg", Label: "JPG"},
		{Code: "webp", Label: "WEBP"},
		{Code: "bmp", Label: "BMP"},
		{Code: "tiff", Label: "TIFF"},
	},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(defaultEntries)
}

// New builds a catalog from the provided entries. Category keys and codes are
// lowercased; entries with an empty code are skipped.
func New(entries map[string][]Format) *Catalog {
	c := &Catalog{entries: make(map[string][]Format, len(entries))}
	for category, list := range entries {
		key := normalizeKey(category)
		if key == "" {
			continue
		}
		formats := make([]Format, 0, len(list))
		for _, f := range list {
			code := normalizeKey(f.Code)
			if code == "" {
				continue
			}
			label := strings.TrimSpace(f.Label)
			if label == "" {
				label = strings.ToUpper(code)
			}
			formats = append(formats, Format{Code: code, Label: label})
		}
		c.entries[key] = formats
	}
	return c
}

// FromConfig overlays configured categories on top of the defaults.
func FromConfig(cfg *config.Config) *Catalog {
	merged := make(map[string][]Format, len(defaultEntries))
	for category, list := range defaultEntries {
		merged[category] = list
	}
	if cfg != nil {
		for category, list := range cfg.Formats {
			formats := make([]Format, 0, len(list))
			for _, entry := range list {
				formats = append(formats, Format{Code: entry.Code, Label: entry.Label})
			}
			merged[category] = formats
		}
	}
	return New(merged)
}

// List returns the formats for category in display order. Unknown categories
// return an empty slice.
func (c *Catalog) List(category string) []Format {
	if c == nil {
		return []Format{}
	}
	return append([]Format{}, c.entries[normalizeKey(category)]...)
}

// Options returns List prefixed with the placeholder option.
func (c *Catalog) Options(category string) []Format {
	list := c.List(category)
	return append([]Format{Placeholder()}, list...)
}

// Lookup finds code among the formats for category.
func (c *Catalog) Lookup(category, code string) (Format, bool) {
	if c == nil {
		return Format{}, false
	}
	code = normalizeKey(code)
	if code == "" {
		return Format{}, false
	}
	for _, f := range c.entries[normalizeKey(category)] {
		if f.Code == code {
			return f, true
		}
	}
	return Format{}, false
}

// Categories returns the known category keys in sorted order.
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// DisplayCategory renders a category key for humans ("document" -> "Document").
func DisplayCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return "Unknown"
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(category, "_", " "))
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
