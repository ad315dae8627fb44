package catalog

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	archiveMagic   = "MCAT"
	archiveVersion = 1
)

type archive struct {
	Version int    `msgpack:"version"`
	Items   []Item `msgpack:"items"`
}

// WriteArchive writes a compressed snapshot of items: a magic header
// followed by an lz4 frame holding the msgpack encoded collection.
func WriteArchive(w io.Writer, items []Item) error {
	if items == nil {
		items = []Item{}
	}

	payload, err := msgpack.Marshal(archive{Version: archiveVersion, Items: items})
	if err != nil {
		return fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	if _, err := io.WriteString(w, archiveMagic); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write([]byte{archiveVersion}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	zw := lz4.NewWriter(w)
	if _, err := zw.Write(payload); err != nil {
		return fmt.Errorf("failed to compress data: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to compress data: %w", err)
	}
	return nil
}

func ReadArchive(r io.Reader) ([]Item, error) {
	header := make([]byte, len(archiveMagic)+1)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if string(header[:len(archiveMagic)]) != archiveMagic {
		return nil, fmt.Errorf("invalid archive format: expected %s, got %q", archiveMagic, header[:len(archiveMagic)])
	}
	if v := header[len(archiveMagic)]; v != archiveVersion {
		return nil, fmt.Errorf("unsupported archive version: %d", v)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lz4.NewReader(r)); err != nil {
		return nil, fmt.Errorf("failed to decompress data: %w", err)
	}

	var a archive
	if err := msgpack.Unmarshal(buf.Bytes(), &a); err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	if a.Items == nil {
		a.Items = []Item{}
	}
	return a.Items, nil
}
