package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed catalog_schema.cue
var catalogSchema string

//go:embed default.cue
var defaultCatalog []byte

// Catalog maps style and word ids to display names and prompts. Lookups of
// unknown ids fall back to the id itself or the default prompt.
type Catalog struct {
	Styles        map[string]string `json:"styles"`
	Words         map[string]string `json:"words"`
	Prompts       map[string]string `json:"prompts"`
	Variants      int               `json:"variants"`
	DefaultPrompt string            `json:"defaultPrompt"`
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	c, err := DecodeCatalog(defaultCatalog, "default.cue")
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a CUE file; an empty path returns the embedded catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return DecodeCatalog(src, path)
}

// DecodeCatalog compiles src, validates it against the catalog schema and
// decodes it.
func DecodeCatalog(src []byte, filename string) (*Catalog, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString("close({"+catalogSchema+"})", cue.Filename("catalog_schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("catalog schema: %w", err)
	}
	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, filename, err)
	}
	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, filename, err)
	}
	var c Catalog
	if err := unified.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, filename, err)
	}
	return &c, nil
}

func (c *Catalog) StyleName(id string) string {
	if name, ok := c.Styles[id]; ok && name != "" {
		return name
	}
	return id
}

func (c *Catalog) WordName(id string) string {
	if name, ok := c.Words[id]; ok && name != "" {
		return name
	}
	return id
}

// Prompt returns the most specific text for a variant.
func (c *Catalog) Prompt(style, word string, variant int) string {
	v := "v" + strconv.Itoa(variant)
	for _, key := range []string{style + "/" + word + "/" + v, word + "/" + v, word} {
		if p, ok := c.Prompts[key]; ok && p != "" {
			return p
		}
	}
	return c.DefaultPrompt
}

// StyleIDs returns the style ids in sorted order.
func (c *Catalog) StyleIDs() []string { return sortedKeys(c.Styles) }

// WordIDs returns the word ids in sorted order.
func (c *Catalog) WordIDs() []string { return sortedKeys(c.Words) }

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
