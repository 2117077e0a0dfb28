package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"voxelforge.ai/internal/persistence/indexdb"
	persistlog "voxelforge.ai/internal/persistence/log"
	"voxelforge.ai/internal/protocol"
	"voxelforge.ai/internal/sim/catalogs"
	"voxelforge.ai/internal/sim/simerr"
	"voxelforge.ai/internal/sim/tuning"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readMsg(t *testing.T, conn *websocket.Conn) (string, []byte) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	base, err := protocol.DecodeBase(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return base.Type, b
}

func hello(t *testing.T, conn *websocket.Conn, batch int) protocol.WelcomeMsg {
	t.Helper()
	sendJSON(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      "test",
		Capabilities:    protocol.HelloCapabilities{BatchSize: batch},
	})
	typ, b := readMsg(t, conn)
	if typ != protocol.TypeWelcome {
		t.Fatalf("got %s want WELCOME", typ)
	}
	var w protocol.WelcomeMsg
	if err := json.Unmarshal(b, &w); err != nil {
		t.Fatal(err)
	}
	return w
}

const planJSON = `{"name":"ws","terrain":{"width":16,"depth":16,"base_height":10,"height_range":3,"seed":4,"biome":"%s"},
"features":[{"kind":"mountain","x":8,"z":8,"radius":4,"height":8}]}`

func TestGenerateStreamsStructure(t *testing.T) {
	idx, err := indexdb.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	s := NewServer(catalogs.Default(), tuning.Defaults(), idx, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	conn := dial(t, srv)
	defer conn.Close()

	w := hello(t, conn, 10)
	if w.SessionID == "" || len(w.Biomes) == 0 || w.Catalogs.BlockPalette.Count == 0 {
		t.Fatalf("welcome=%+v", w)
	}

	sendJSON(t, conn, protocol.GenerateMsg{
		Type:            protocol.TypeGenerate,
		ProtocolVersion: protocol.Version,
		ReqID:           "R1",
		Plan:            json.RawMessage(fmt.Sprintf(planJSON, "plains")),
	})

	typ, b := readMsg(t, conn)
	if typ != protocol.TypeStructureHeader {
		t.Fatalf("got %s: %s", typ, b)
	}
	var hdr protocol.StructureHeaderMsg
	if err := json.Unmarshal(b, &hdr); err != nil {
		t.Fatal(err)
	}
	if hdr.ReqID != "R1" || hdr.TotalBlocks == 0 || hdr.RunID == "" || len(hdr.Digest) != 64 {
		t.Fatalf("header=%+v", hdr)
	}

	got := 0
	for part := 0; part < hdr.TotalParts; part++ {
		typ, b := readMsg(t, conn)
		if typ != protocol.TypeBlocks {
			t.Fatalf("part %d: got %s", part, typ)
		}
		var bm protocol.BlocksMsg
		if err := json.Unmarshal(b, &bm); err != nil {
			t.Fatal(err)
		}
		if bm.Part != part || len(bm.Blocks) > 10 {
			t.Fatalf("part=%d len=%d", bm.Part, len(bm.Blocks))
		}
		got += len(bm.Blocks)
	}
	if got != hdr.TotalBlocks {
		t.Fatalf("streamed %d blocks want %d", got, hdr.TotalBlocks)
	}
	typ, b = readMsg(t, conn)
	if typ != protocol.TypeDone {
		t.Fatalf("got %s want DONE", typ)
	}
	var done protocol.DoneMsg
	_ = json.Unmarshal(b, &done)
	if done.RunID != hdr.RunID || done.Parts != hdr.TotalParts {
		t.Fatalf("done=%+v", done)
	}

	srv.Close()
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestGenerateReportsInvalidBiome(t *testing.T) {
	s := NewServer(catalogs.Default(), tuning.Defaults(), nil, nil)
	journal := persistlog.NewRequestLogger(t.TempDir())
	defer journal.Close()
	s.SetRequestLogger(journal)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	conn := dial(t, srv)
	defer conn.Close()
	hello(t, conn, 0)

	sendJSON(t, conn, protocol.GenerateMsg{
		Type:            protocol.TypeGenerate,
		ProtocolVersion: protocol.Version,
		ReqID:           "R2",
		Plan:            json.RawMessage(fmt.Sprintf(planJSON, "volcano")),
	})
	typ, b := readMsg(t, conn)
	if typ != protocol.TypeError {
		t.Fatalf("got %s want ERROR", typ)
	}
	var em protocol.ErrorMsg
	_ = json.Unmarshal(b, &em)
	if em.ReqID != "R2" || em.Code != protocol.ErrInvalidConfiguration {
		t.Fatalf("error=%+v", em)
	}
	if n := journal.Lines(); n != 1 {
		t.Fatalf("journal lines=%d want 1", n)
	}
}

func TestUnexpectedMessageType(t *testing.T) {
	s := NewServer(catalogs.Default(), tuning.Defaults(), nil, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	conn := dial(t, srv)
	defer conn.Close()
	hello(t, conn, 0)

	sendJSON(t, conn, map[string]string{"type": "PING", "protocol_version": protocol.Version})
	typ, b := readMsg(t, conn)
	if typ != protocol.TypeError {
		t.Fatalf("got %s", typ)
	}
	var em protocol.ErrorMsg
	_ = json.Unmarshal(b, &em)
	if em.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("code=%s", em.Code)
	}
}

func TestCodeFor(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&catalogs.ValidationError{Code: catalogs.ErrMissingProperty}, protocol.ErrMissingProperty},
		{fmt.Errorf("x: %w", simerr.ErrInvalidConfiguration), protocol.ErrInvalidConfiguration},
		{fmt.Errorf("export: %w", simerr.ErrEmptyScene), protocol.ErrEmptyScene},
		{fmt.Errorf("plan: %w", tuning.ErrLimit), protocol.ErrLimit},
		{context.Canceled, protocol.ErrCanceled},
		{errors.New("boom"), protocol.ErrInternal},
	}
	for _, tc := range cases {
		if got := CodeFor(tc.err); got != tc.want {
			t.Fatalf("CodeFor(%v)=%s want %s", tc.err, got, tc.want)
		}
	}
}
