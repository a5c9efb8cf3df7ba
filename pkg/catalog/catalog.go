// Package catalog loads the closed list of tradable stocks from a
// recognizer model export.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
)

// StocksList is the closed list holding stock names.
const StocksList = "Stocks"

var (
	ErrListNotFound    = errors.New("closed list not found")
	ErrVocabularyEmpty = errors.New("closed list has no canonical forms")
)

// Entry is one canonical stock name and the synonyms that map to it.
type Entry struct {
	Canonical string
	Synonyms  []string
}

// Catalog is an immutable stock vocabulary.
type Catalog struct {
	entries []Entry
}

type modelExport struct {
	ClosedLists []closedList `json:"closedLists"`
}

type closedList struct {
	Name     string    `json:"name"`
	SubLists []subList `json:"subLists"`
}

type subList struct {
	CanonicalForm string   `json:"canonicalForm"`
	List          []string `json:"list"`
}

// Load reads the named closed list from a model export file.
func Load(path, list string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %q: %w", path, err)
	}
	c, err := Parse(data, list)
	if err != nil {
		return nil, fmt.Errorf("vocabulary %q: %w", path, err)
	}
	return c, nil
}

// Parse decodes a model export and extracts the named closed list.
// Blank and duplicate canonical forms are skipped.
func Parse(data []byte, list string) (*Catalog, error) {
	var export modelExport
	if err := sonic.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("decode model export: %w", err)
	}

	for _, cl := range export.ClosedLists {
		if cl.Name != list {
			continue
		}

		seen := make(map[string]bool)
		var entries []Entry
		for _, sl := range cl.SubLists {
			name := strings.TrimSpace(sl.CanonicalForm)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			entries = append(entries, Entry{Canonical: name, Synonyms: sl.List})
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrVocabularyEmpty, list)
		}
		return &Catalog{entries: entries}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrListNotFound, list)
}

// New builds a catalog from canonical names without synonyms.
func New(names ...string) *Catalog {
	c := &Catalog{}
	for _, n := range names {
		c.entries = append(c.entries, Entry{Canonical: n})
	}
	return c
}

// Names returns the canonical names in file order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Canonical
	}
	return names
}

// Len returns the number of canonical names.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Lookup returns the canonical name whose form or synonyms equal s,
// ignoring case.
func (c *Catalog) Lookup(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, e := range c.entries {
		if strings.EqualFold(e.Canonical, s) {
			return e.Canonical, true
		}
		for _, syn := range e.Synonyms {
			if strings.EqualFold(syn, s) {
				return e.Canonical, true
			}
		}
	}
	return "", false
}

// Find returns the first canonical stock mentioned by a word of text.
func (c *Catalog) Find(text string) (canonical, span string, ok bool) {
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,!?'\"")
		if name, found := c.Lookup(w); found {
			return name, w, true
		}
	}
	return "", "", false
}
