package structure

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// WriteFile writes s as JSON, zstd-compressed when path ends in ".zst".
func WriteFile(path string, s Structure) error {
	raw, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		_, err = f.Write(raw)
		return err
	}
	return writeZstd(f, raw)
}

func writeZstd(w io.Writer, raw []byte) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)
	if _, err := bw.Write(raw); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func ReadFile(path string) (Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return Structure{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return Structure{}, err
		}
		defer dec.Close()
		r = dec
	}
	raw, err := io.ReadAll(bufio.NewReaderSize(r, 256*1024))
	if err != nil {
		return Structure{}, err
	}
	return Decode(raw)
}
