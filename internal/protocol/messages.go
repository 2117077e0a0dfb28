package protocol

import (
	"encoding/json"

	"voxelforge.ai/internal/persistence/structure"
)

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ClientName      string            `json:"client_name"`
	Capabilities    HelloCapabilities `json:"capabilities"`
}

type HelloCapabilities struct {
	MaxQueue  int `json:"max_queue,omitempty"`
	BatchSize int `json:"batch_size,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	Catalogs        CatalogDigests `json:"catalogs"`
	Limits          Limits         `json:"limits"`
	Biomes          []string       `json:"biomes"`
}

type CatalogDigests struct {
	BlockPalette DigestRef `json:"block_palette"`
	BlockDefs    string    `json:"block_defs_digest"`
	TuningDigest string    `json:"tuning_digest,omitempty"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

type Limits struct {
	MaxWidth    int `json:"max_width"`
	MaxDepth    int `json:"max_depth"`
	MaxFeatures int `json:"max_features"`
	MaxEntries  int `json:"max_entries"`
}

// GENERATE (client -> server). Plan uses the same keys as a YAML plan file.
type GenerateMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	ReqID           string          `json:"req_id"`
	Plan            json.RawMessage `json:"plan"`
}

type PhaseCounts struct {
	Terrain     int `json:"terrain"`
	Water       int `json:"water"`
	Overlay     int `json:"overlay"`
	Decorations int `json:"decorations"`
}

// STRUCTURE_HEADER (server -> client): sent once before the BLOCKS batches.
type StructureHeaderMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	ReqID           string      `json:"req_id"`
	RunID           string      `json:"run_id,omitempty"`
	Width           int         `json:"width"`
	Height          int         `json:"height"`
	Depth           int         `json:"depth"`
	TotalBlocks     int         `json:"total_blocks"`
	TotalParts      int         `json:"total_parts"`
	Digest          string      `json:"digest"`
	Phases          PhaseCounts `json:"phases"`
}

// BLOCKS (server -> client): one slice of the structure's entries, in order.
type BlocksMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ReqID           string            `json:"req_id"`
	Part            int               `json:"part"`
	Blocks          []structure.Block `json:"blocks"`
}

type DoneMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	RunID           string `json:"run_id,omitempty"`
	Parts           int    `json:"parts"`
	ElapsedMs       int64  `json:"elapsed_ms"`
}

type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

func NewError(reqID, code, msg string) ErrorMsg {
	return ErrorMsg{Type: TypeError, ProtocolVersion: Version, ReqID: reqID, Code: code, Message: msg}
}
