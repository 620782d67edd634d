package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"osrs-alching/pkg/osrs"
)

//go:embed items.json
var defaultItems []byte

// Item is a static item definition. Items are loaded once and never mutated.
type Item struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	HighAlch int    `json:"highAlch"`
	Limit    int    `json:"limit"` // max units per 4 hour buy window
	Members  bool   `json:"members"`
}

// Catalog is an ordered, validated list of items
type Catalog struct {
	items []Item
}

// New validates items and wraps them in a Catalog. Order is preserved.
func New(items []Item) (*Catalog, error) {
	if err := Validate(items); err != nil {
		return nil, err
	}
	cp := make([]Item, len(items))
	copy(cp, items)
	return &Catalog{items: cp}, nil
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Parse(defaultItems)
}

// Load reads a catalog from path. An empty path returns the bundled catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes a JSON array of items.
func Parse(data []byte) (*Catalog, error) {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return New(items)
}

// Validate checks ids are unique and every buy limit is positive
func Validate(items []Item) error {
	seen := make(map[int]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("duplicate item id %d (%s)", item.ID, item.Name)
		}
		seen[item.ID] = struct{}{}

		if item.Limit <= 0 {
			return fmt.Errorf("item %d (%s) has non-positive buy limit %d", item.ID, item.Name, item.Limit)
		}
	}
	return nil
}

// Items returns a copy of the catalog in its original order
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of items
func (c *Catalog) Len() int {
	return len(c.items)
}

// FromMappings builds catalog items from /mapping metadata.
// Items that cannot be alched for coins or have no buy limit are dropped.
// The result is ordered by item id.
func FromMappings(mappings []osrs.ItemMapping) []Item {
	items := make([]Item, 0, len(mappings))
	seen := make(map[int]struct{}, len(mappings))

	for _, m := range mappings {
		if m.HighAlch <= 0 || m.BuyLimit <= 0 {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}

		items = append(items, Item{
			ID:       m.ID,
			Name:     m.Name,
			HighAlch: m.HighAlch,
			Limit:    m.BuyLimit,
			Members:  m.Members,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items
}

// Write encodes items as an indented JSON array
func Write(w io.Writer, items []Item) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return nil
}
