package catalogs

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const DefaultNamespace = "minecraft"

//go:embed default_blocks.json
var defaultBlocksJSON []byte

type BlockCatalog struct {
	Palette       []string
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string
}

type BlockDef struct {
	ID         string        `json:"id"`
	Solid      bool          `json:"solid"`
	Properties []PropertyDef `json:"properties,omitempty"`
}

type PropertyDef struct {
	Name     string   `json:"name"`
	Values   []string `json:"values,omitempty"`
	Default  string   `json:"default,omitempty"`
	Required bool     `json:"required,omitempty"`
}

func (d BlockDef) property(name string) (PropertyDef, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyDef{}, false
}

// Load reads blocks.json from configDir.
func Load(configDir string) (*BlockCatalog, error) {
	path := filepath.Join(configDir, "blocks.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Default returns the catalog compiled into the binary.
func Default() *BlockCatalog {
	c, err := Parse(defaultBlocksJSON)
	if err != nil {
		panic(fmt.Sprintf("catalogs: embedded blocks.json: %v", err))
	}
	return c
}

func Parse(raw []byte) (*BlockCatalog, error) {
	out := &BlockCatalog{DefsDigest: sha256Hex(raw)}

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("blocks.json: %w", err)
	}
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("blocks.json: empty id")
		}
		id := normalizeID(d.ID)
		if _, dup := out.Defs[id]; dup {
			return nil, fmt.Errorf("blocks.json: duplicate id %s", id)
		}
		d.ID = id
		out.Defs[id] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Ensure air exists and is palette id 0.
	air := DefaultNamespace + ":air"
	if _, ok := out.Defs[air]; !ok {
		return nil, fmt.Errorf("blocks.json: missing %s", air)
	}
	ids = append([]string{air}, filterOut(ids, air)...)

	out.Palette = ids
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return out, nil
}

func normalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if !strings.Contains(id, ":") {
		id = DefaultNamespace + ":" + id
	}
	return id
}

// AssertValid returns the fully namespaced form of blockID or an
// E_UNKNOWN_BLOCK ValidationError.
func (c *BlockCatalog) AssertValid(blockID string) (string, error) {
	id := normalizeID(blockID)
	if _, ok := c.Defs[id]; !ok {
		return "", &ValidationError{Code: ErrUnknownBlock, BlockID: blockID, Msg: "unknown block"}
	}
	return id, nil
}

// AssertProperties checks props against the block's property table and
// returns a validated copy. Defaults are not filled in.
func (c *BlockCatalog) AssertProperties(blockID string, props map[string]string) (map[string]string, error) {
	id, err := c.AssertValid(blockID)
	if err != nil {
		return nil, err
	}
	def := c.Defs[id]

	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make(map[string]string, len(props))
	for _, k := range names {
		v := props[k]
		p, ok := def.property(k)
		if !ok {
			return nil, &ValidationError{Code: ErrUnknownProperty, BlockID: id, Property: k, Msg: "unknown property"}
		}
		if len(p.Values) > 0 && !contains(p.Values, v) {
			return nil, &ValidationError{Code: ErrInvalidProperty, BlockID: id, Property: k, Msg: fmt.Sprintf("invalid value %q", v)}
		}
		out[k] = v
	}
	for _, p := range def.Properties {
		if !p.Required {
			continue
		}
		if _, ok := out[p.Name]; !ok {
			return nil, &ValidationError{Code: ErrMissingProperty, BlockID: id, Property: p.Name, Msg: "missing required property"}
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func contains(vals []string, v string) bool {
	for _, s := range vals {
		if s == v {
			return true
		}
	}
	return false
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func filterOut(in []string, remove string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == remove {
			continue
		}
		out = append(out, s)
	}
	return out
}
