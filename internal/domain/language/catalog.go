package language

import (
	"path/filepath"
	"strings"
)

// Language is one entry of the supported-language catalog.
type Language struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// DefaultID is used when a filename gives no usable hint.
const DefaultID = "javascript"

var builtin = []Language{
	{ID: "javascript", Name: "JavaScript", Extensions: []string{"js", "jsx"}},
	{ID: "typescript", Name: "TypeScript", Extensions: []string{"ts", "tsx"}},
	{ID: "python", Name: "Python", Extensions: []string{"py", "pyw"}},
	{ID: "java", Name: "Java", Extensions: []string{"java"}},
	{ID: "cpp", Name: "C++", Extensions: []string{"cpp", "cc", "cxx", "c++"}},
	{ID: "c", Name: "C", Extensions: []string{"c", "h"}},
	{ID: "csharp", Name: "C#", Extensions: []string{"cs"}},
	{ID: "php", Name: "PHP", Extensions: []string{"php"}},
	{ID: "ruby", Name: "Ruby", Extensions: []string{"rb"}},
	{ID: "go", Name: "Go", Extensions: []string{"go"}},
	{ID: "rust", Name: "Rust", Extensions: []string{"rs"}},
	{ID: "swift", Name: "Swift", Extensions: []string{"swift"}},
	{ID: "kotlin", Name: "Kotlin", Extensions: []string{"kt", "kts"}},
	{ID: "scala", Name: "Scala", Extensions: []string{"scala"}},
	{ID: "dart", Name: "Dart", Extensions: []string{"dart"}},
	{ID: "r", Name: "R", Extensions: []string{"r", "R"}},
	{ID: "matlab", Name: "MATLAB", Extensions: []string{"m"}},
	{ID: "perl", Name: "Perl", Extensions: []string{"pl", "pm"}},
	{ID: "lua", Name: "Lua", Extensions: []string{"lua"}},
	{ID: "shell", Name: "Shell", Extensions: []string{"sh", "bash"}},
	{ID: "powershell", Name: "PowerShell", Extensions: []string{"ps1"}},
	{ID: "sql", Name: "SQL", Extensions: []string{"sql"}},
	{ID: "html", Name: "HTML", Extensions: []string{"html", "htm"}},
	{ID: "css", Name: "CSS", Extensions: []string{"css"}},
	{ID: "json", Name: "JSON", Extensions: []string{"json"}},
	{ID: "xml", Name: "XML", Extensions: []string{"xml"}},
	{ID: "yaml", Name: "YAML", Extensions: []string{"yml", "yaml"}},
}

// Catalog is an immutable set of languages, safe for concurrent use.
type Catalog struct {
	langs []Language
	byID  map[string]int
	byExt map[string]int
}

// NewCatalog builds a catalog from langs. The first language claiming an
// extension wins.
func NewCatalog(langs []Language) *Catalog {
	c := &Catalog{
		langs: make([]Language, len(langs)),
		byID:  make(map[string]int, len(langs)),
		byExt: make(map[string]int),
	}
	copy(c.langs, langs)
	for i, l := range c.langs {
		c.byID[strings.ToLower(l.ID)] = i
		for _, ext := range l.Extensions {
			ext = strings.ToLower(ext)
			if _, taken := c.byExt[ext]; !taken {
				c.byExt[ext] = i
			}
		}
	}
	return c
}

// Default returns the built-in catalog of 27 languages.
func Default() *Catalog {
	return NewCatalog(builtin)
}

// All returns the languages in catalog order.
func (c *Catalog) All() []Language {
	out := make([]Language, len(c.langs))
	copy(out, c.langs)
	return out
}

// Lookup finds a language by id, ignoring case and surrounding space.
func (c *Catalog) Lookup(label string) (Language, bool) {
	i, ok := c.byID[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return Language{}, false
	}
	return c.langs[i], true
}

// DetectFromFilename maps a file extension to a language, falling back to
// DefaultID when the name has no extension or an unknown one.
func (c *Catalog) DetectFromFilename(name string) Language {
	ext := strings.TrimPrefix(filepath.Ext(strings.TrimSpace(name)), ".")
	if i, ok := c.byExt[strings.ToLower(ext)]; ok && ext != "" {
		return c.langs[i]
	}
	l, _ := c.Lookup(DefaultID)
	return l
}

// Canonical returns the catalog id for a known label, or the trimmed label as-is.
func (c *Catalog) Canonical(label string) (string, bool) {
	if l, ok := c.Lookup(label); ok {
		return l.ID, true
	}
	return strings.TrimSpace(label), false
}

// PrimaryExtension is the first extension listed for id, or "txt".
func (c *Catalog) PrimaryExtension(id string) string {
	l, ok := c.Lookup(id)
	if !ok || len(l.Extensions) == 0 {
		return "txt"
	}
	return l.Extensions[0]
}
