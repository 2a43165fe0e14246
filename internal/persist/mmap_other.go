//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package persist

import (
	"io"
	"os"
)

// mapping is a writable view of a whole file.
type mapping interface {
	Bytes() []byte
	Sync() error
	Close() error
}

// bufferRegion reads the file into memory and writes it back on Sync.
type bufferRegion struct {
	f    *os.File
	data []byte
}

func mapFile(f *os.File) (mapping, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &bufferRegion{f: f, data: data}, nil
}

func (b *bufferRegion) Bytes() []byte { return b.data }

func (b *bufferRegion) Sync() error {
	if _, err := b.f.WriteAt(b.data, 0); err != nil {
		return err
	}
	return b.f.Sync()
}

func (b *bufferRegion) Close() error {
	b.data = nil
	return nil
}
