package schedule

import (
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/academia/core"
)

// suggestMinRatio is the minimum similarity for a catalog name to be suggested for an unknown software.
const suggestMinRatio = .6

// Entry is the number of lectures a software curriculum requires.
type Entry struct {
	Name     string `csv:"name" json:"name"`
	Lectures int    `csv:"lectures" json:"lectures"`
}

// Suggestion points an unrecognized software name to the closest catalog entry, if any.
type Suggestion struct {
	Name       string `json:"name"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Catalog is an immutable, ordered software -> lecture count table.
type Catalog struct {
	entries     []Entry
	exact       map[string]int
	fingerprint string
}

var defaultEntries = []Entry{
	{Name: "Photoshop", Lectures: 23},
	{Name: "Illustrator", Lectures: 20},
	{Name: "CorelDraw", Lectures: 18},
	{Name: "InDesign", Lectures: 12},
	{Name: "Lightroom", Lectures: 8},
	{Name: "Premiere Pro", Lectures: 20},
	{Name: "After Effects", Lectures: 25},
	{Name: "Audition", Lectures: 10},
	{Name: "Final Cut Pro", Lectures: 15},
	{Name: "DaVinci Resolve", Lectures: 18},
	{Name: "Maya", Lectures: 92},
	{Name: "3ds Max", Lectures: 80},
	{Name: "Blender", Lectures: 60},
	{Name: "ZBrush", Lectures: 40},
	{Name: "Substance Painter", Lectures: 20},
	{Name: "Cinema 4D", Lectures: 45},
	{Name: "Houdini", Lectures: 70},
	{Name: "Nuke", Lectures: 35},
	{Name: "Unreal Engine", Lectures: 50},
	{Name: "Unity", Lectures: 45},
	{Name: "AutoCAD", Lectures: 30},
	{Name: "SketchUp", Lectures: 15},
	{Name: "Revit", Lectures: 35},
	{Name: "V-Ray", Lectures: 20},
	{Name: "Figma", Lectures: 12},
	{Name: "Adobe XD", Lectures: 10},
	{Name: "HTML & CSS", Lectures: 20},
	{Name: "JavaScript", Lectures: 30},
	{Name: "WordPress", Lectures: 15},
}

var defaultCatalog = mustCatalog(defaultEntries)

func mustCatalog(entries []Entry) *Catalog {
	c, err := NewCatalog(entries)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog returns the built-in lecture table.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// NewCatalog builds a Catalog, keeping the given declaration order.
func NewCatalog(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		exact:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		e.Name = core.CleanString(e.Name)
		if e.Name == "" {
			return nil, errors.Errorf("catalog entry %d: name is required", i+1)
		}
		if e.Lectures < 0 {
			return nil, errors.Errorf("catalog entry %q: lectures cannot be negative", e.Name)
		}
		if _, exists := c.exact[e.Name]; exists {
			return nil, errors.Errorf("catalog entry %q: duplicate name", e.Name)
		}
		c.exact[e.Name] = len(c.entries)
		c.entries = append(c.entries, e)
	}

	h := fnv.New64a()
	for _, e := range c.entries {
		_, _ = fmt.Fprintf(h, "%s=%d;", e.Name, e.Lectures)
	}
	c.fingerprint = fmt.Sprintf("%016x", h.Sum64())
	return c, nil
}

// Fingerprint identifies the table content; two catalogs with the same entries share it.
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}

// LoadCatalog reads a "name,lectures" CSV (with header).
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var entries []Entry
	if err := gocsv.Unmarshal(r, &entries); err != nil {
		return nil, errors.Wrap(err, "parsing catalog csv")
	}
	return NewCatalog(entries)
}

// LoadCatalogFile is LoadCatalog over a file path.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening catalog file")
	}
	defer func() { _ = f.Close() }()
	return LoadCatalog(f)
}

// Entries returns a copy of the table, in declaration order.
func (c *Catalog) Entries() []Entry {
	entries := make([]Entry, len(c.entries))
	copy(entries, c.entries)
	return entries
}

// Lookup finds the entry for a single software name.
// An exact (case-sensitive) match wins; otherwise the first entry, in declaration order,
// whose name contains the token or is contained by it, ignoring case.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, false
	}
	if i, ok := c.exact[name]; ok {
		return c.entries[i], true
	}
	lname := strings.ToLower(name)
	for _, e := range c.entries {
		key := strings.ToLower(e.Name)
		if strings.Contains(key, lname) || strings.Contains(lname, key) {
			return e, true
		}
	}
	return Entry{}, false
}

// TotalLectures sums the lecture counts of a comma separated software list.
// Unknown names count for 0.
func (c *Catalog) TotalLectures(software string) int {
	var total int
	for _, name := range core.SplitList(software) {
		if e, ok := c.Lookup(name); ok {
			total += e.Lectures
		}
	}
	return total
}

// Unrecognized lists the names of a software list that match no entry,
// with the most similar catalog name when one is close enough.
func (c *Catalog) Unrecognized(software string) []Suggestion {
	var unknown []Suggestion
	for _, name := range core.SplitList(software) {
		if _, ok := c.Lookup(name); ok {
			continue
		}
		unknown = append(unknown, Suggestion{Name: name, Suggestion: c.closest(name)})
	}
	return unknown
}

func (c *Catalog) closest(name string) string {
	var (
		best      string
		bestRatio float64
	)
	chars := strings.Split(strings.ToLower(name), "")
	for _, e := range c.entries {
		ratio := difflib.NewMatcher(chars, strings.Split(strings.ToLower(e.Name), "")).Ratio()
		if ratio > bestRatio {
			best, bestRatio = e.Name, ratio
		}
	}
	if bestRatio < suggestMinRatio {
		return ""
	}
	return best
}
