// Package simerr holds the error sentinels shared by the generation packages.
package simerr

import "errors"

var (
	// ErrInvalidConfiguration marks construction-time failures: unsupported
	// biome, invalid eraser axis, malformed size triple and similar.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmptyScene is returned by export when the scene holds no blocks.
	ErrEmptyScene = errors.New("empty scene")
)
