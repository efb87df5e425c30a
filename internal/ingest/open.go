package ingest

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Open opens path for reading, transparently decompressing .gz and
// .zst/.zstd files. Closing the result releases the decoder and the file.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &decodedFile{Reader: zr, closeDecoder: zr.Close, file: f}, nil
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &decodedFile{Reader: dec, closeDecoder: func() error { dec.Close(); return nil }, file: f}, nil
	default:
		return f, nil
	}
}

type decodedFile struct {
	io.Reader
	closeDecoder func() error
	file         *os.File
}

func (d *decodedFile) Close() error {
	derr := d.closeDecoder()
	if err := d.file.Close(); err != nil {
		return err
	}
	return derr
}
