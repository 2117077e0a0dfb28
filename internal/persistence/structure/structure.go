// Package structure defines the bounded structure record consumed by
// renderers and importers, with its file encodings.
package structure

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

type Structure struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Depth  int     `json:"depth"`
	Blocks []Block `json:"blocks"`
}

// Block is one cuboid entry. End is exclusive.
type Block struct {
	Start      [3]int            `json:"start"`
	End        [3]int            `json:"end"`
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties,omitempty"`
	Fill       bool              `json:"fill"`
}

func (b Block) Size() [3]int {
	return [3]int{b.End[0] - b.Start[0], b.End[1] - b.Start[1], b.End[2] - b.Start[2]}
}

func (b Block) Volume() int {
	s := b.Size()
	return s[0] * s[1] * s[2]
}

// Encode marshals s as JSON. Map keys are emitted sorted, so equal
// structures encode to equal bytes.
func Encode(s Structure) ([]byte, error) {
	if s.Blocks == nil {
		s.Blocks = []Block{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("structure encode: %w", err)
	}
	return b, nil
}

func Decode(raw []byte) (Structure, error) {
	var s Structure
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return s, fmt.Errorf("structure decode: %w", err)
	}
	return s, nil
}

// Digest is the hex sha256 of the canonical JSON encoding.
func Digest(s Structure) (string, error) {
	b, err := Encode(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Stats summarises the entries of a structure.
type Stats struct {
	Entries int
	Voxels  int
	ByType  map[string]int
}

func Summarize(s Structure) Stats {
	st := Stats{ByType: map[string]int{}}
	for _, b := range s.Blocks {
		st.Entries++
		st.Voxels += b.Volume()
		st.ByType[b.Type]++
	}
	return st
}
