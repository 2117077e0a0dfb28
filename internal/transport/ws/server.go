package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"voxelforge.ai/internal/persistence/indexdb"
	persistlog "voxelforge.ai/internal/persistence/log"
	"voxelforge.ai/internal/protocol"
	"voxelforge.ai/internal/sim/catalogs"
	"voxelforge.ai/internal/sim/plan"
	"voxelforge.ai/internal/sim/simerr"
	"voxelforge.ai/internal/sim/terrain"
	"voxelforge.ai/internal/sim/tuning"
)

type Server struct {
	cat  *catalogs.BlockCatalog
	tune tuning.Tuning
	idx  *indexdb.Index
	log  *log.Logger

	journal *persistlog.RequestLogger

	// slots bounds concurrent generations across all connections.
	slots chan struct{}

	upgrader websocket.Upgrader
}

// NewServer builds the generator endpoint. idx and logger may be nil.
func NewServer(cat *catalogs.BlockCatalog, tune tuning.Tuning, idx *indexdb.Index, logger *log.Logger) *Server {
	return &Server{
		cat:   cat,
		tune:  tune,
		idx:   idx,
		log:   logger,
		slots: make(chan struct{}, 4),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// SetRequestLogger journals every GENERATE outcome to l.
func (s *Server) SetRequestLogger(l *persistlog.RequestLogger) { s.journal = l }

func (s *Server) record(e persistlog.RequestEntry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.WriteRequest(e); err != nil {
		s.logf("request journal: %v", err)
	}
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

type session struct {
	id        string
	out       chan []byte
	batchSize int
	busy      atomic.Bool
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if kb := s.tune.Stream.MaxMessageKB; kb > 0 {
			conn.SetReadLimit(int64(kb) * 1024)
		}

		sess := s.handshake(conn)
		if sess == nil {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		writeTimeout := time.Duration(s.tune.Stream.WriteTimeoutMs) * time.Millisecond
		if writeTimeout <= 0 {
			writeTimeout = 5 * time.Second
		}
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-sess.out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				s.send(ctx, sess, protocol.NewError("", protocol.ErrProtoBadRequest, "malformed json"))
				continue
			}
			if base.Type != protocol.TypeGenerate {
				s.send(ctx, sess, protocol.NewError("", protocol.ErrProtoBadRequest, "unexpected message type "+base.Type))
				continue
			}
			var gen protocol.GenerateMsg
			if err := json.Unmarshal(msg, &gen); err != nil || gen.ReqID == "" {
				s.send(ctx, sess, protocol.NewError(gen.ReqID, protocol.ErrProtoBadRequest, "bad GENERATE"))
				continue
			}
			if gen.ProtocolVersion != protocol.Version {
				s.send(ctx, sess, protocol.NewError(gen.ReqID, protocol.ErrProtoBadRequest, "bad protocol_version"))
				continue
			}
			if !sess.busy.CompareAndSwap(false, true) {
				s.send(ctx, sess, protocol.NewError(gen.ReqID, protocol.ErrBusy, "a generation is already running"))
				continue
			}
			go func() {
				defer sess.busy.Store(false)
				s.generate(ctx, sess, gen)
			}()
		}
		<-done
	}
}

func (s *Server) handshake(conn *websocket.Conn) *session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return nil
	}

	maxQ := hello.Capabilities.MaxQueue
	if maxQ <= 0 {
		maxQ = 8
	}
	if maxQ > 64 {
		maxQ = 64
	}
	batch := hello.Capabilities.BatchSize
	if batch <= 0 || batch > s.tune.Stream.BatchSize {
		batch = s.tune.Stream.BatchSize
	}
	if batch <= 0 {
		batch = 512
	}

	sess := &session{id: uuid.NewString(), out: make(chan []byte, maxQ), batchSize: batch}

	// Send welcome immediately.
	if err := writeJSON(conn, s.welcome(sess.id)); err != nil {
		return nil
	}
	s.logf("session %s: client %q", sess.id, hello.ClientName)
	return sess
}

func (s *Server) welcome(sessionID string) protocol.WelcomeMsg {
	biomes := terrain.Biomes()
	names := make([]string, len(biomes))
	for i, b := range biomes {
		names[i] = string(b)
	}
	l := s.tune.Limits
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		Catalogs: protocol.CatalogDigests{
			BlockPalette: protocol.DigestRef{Digest: s.cat.PaletteDigest, Count: len(s.cat.Palette)},
			BlockDefs:    s.cat.DefsDigest,
		},
		Limits: protocol.Limits{
			MaxWidth:    l.MaxWidth,
			MaxDepth:    l.MaxDepth,
			MaxFeatures: l.MaxFeatures,
			MaxEntries:  l.MaxEntries,
		},
		Biomes: names,
	}
}

func (s *Server) generate(ctx context.Context, sess *session, gen protocol.GenerateMsg) {
	var p tuning.Plan
	dec := json.NewDecoder(bytes.NewReader(gen.Plan))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		s.send(ctx, sess, protocol.NewError(gen.ReqID, protocol.ErrBadRequest, "plan: "+err.Error()))
		return
	}

	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return
	}
	runner := plan.Runner{Catalog: s.cat, Tuning: s.tune, Logger: s.log}
	res, err := runner.Run(ctx, p)
	<-s.slots
	entry := persistlog.RequestEntry{
		SessionID: sess.id,
		ReqID:     gen.ReqID,
		Plan:      p.Name,
		Seed:      p.Terrain.Seed,
		Biome:     string(p.Terrain.Biome),
	}
	if err != nil {
		code := CodeFor(err)
		s.logf("session %s req %s: %v", sess.id, gen.ReqID, err)
		entry.Code, entry.Message = code, err.Error()
		s.record(entry)
		s.send(ctx, sess, protocol.NewError(gen.ReqID, code, err.Error()))
		return
	}

	runID := s.idx.Enqueue(indexdb.Run{
		Name:      p.Name,
		Seed:      p.Terrain.Seed,
		Biome:     string(p.Terrain.Biome),
		Width:     p.Terrain.Width,
		Depth:     p.Terrain.Depth,
		Entries:   res.Summary.Entries,
		Voxels:    res.Summary.Voxels,
		Digest:    res.Digest,
		ElapsedMs: res.Elapsed.Milliseconds(),
		Plan:      gen.Plan,
	})
	entry.RunID = runID
	entry.Entries = res.Summary.Entries
	entry.Digest = res.Digest
	entry.ElapsedMs = res.Elapsed.Milliseconds()
	s.record(entry)

	blocks := res.Structure.Blocks
	parts := (len(blocks) + sess.batchSize - 1) / sess.batchSize
	st := res.Terrain
	if !s.send(ctx, sess, protocol.StructureHeaderMsg{
		Type:            protocol.TypeStructureHeader,
		ProtocolVersion: protocol.Version,
		ReqID:           gen.ReqID,
		RunID:           runID,
		Width:           res.Structure.Width,
		Height:          res.Structure.Height,
		Depth:           res.Structure.Depth,
		TotalBlocks:     len(blocks),
		TotalParts:      parts,
		Digest:          res.Digest,
		Phases:          protocol.PhaseCounts{Terrain: st.Terrain, Water: st.Water, Overlay: st.Overlay, Decorations: st.Decorations},
	}) {
		return
	}
	for part := 0; part < parts; part++ {
		lo := part * sess.batchSize
		hi := lo + sess.batchSize
		if hi > len(blocks) {
			hi = len(blocks)
		}
		if !s.send(ctx, sess, protocol.BlocksMsg{
			Type:            protocol.TypeBlocks,
			ProtocolVersion: protocol.Version,
			ReqID:           gen.ReqID,
			Part:            part,
			Blocks:          blocks[lo:hi],
		}) {
			return
		}
	}
	s.send(ctx, sess, protocol.DoneMsg{
		Type:            protocol.TypeDone,
		ProtocolVersion: protocol.Version,
		ReqID:           gen.ReqID,
		RunID:           runID,
		Parts:           parts,
		ElapsedMs:       res.Elapsed.Milliseconds(),
	})
}

// send queues v for the writer. It blocks while the queue is full and
// reports false once the connection is gone.
func (s *Server) send(ctx context.Context, sess *session, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		return false
	}
	select {
	case sess.out <- b:
		return true
	case <-ctx.Done():
		return false
	}
}

// CodeFor maps a generation error onto a protocol error code.
func CodeFor(err error) string {
	var ve *catalogs.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Code
	case errors.Is(err, simerr.ErrInvalidConfiguration):
		return protocol.ErrInvalidConfiguration
	case errors.Is(err, simerr.ErrEmptyScene):
		return protocol.ErrEmptyScene
	case errors.Is(err, tuning.ErrLimit):
		return protocol.ErrLimit
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return protocol.ErrCanceled
	default:
		return protocol.ErrInternal
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
