//go:build linux || darwin || freebsd || netbsd || openbsd

package persist

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapping is a writable view of a whole file.
type mapping interface {
	Bytes() []byte
	Sync() error
	Close() error
}

type mmapRegion struct {
	data []byte
}

func mapFile(f *os.File) (mapping, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%s is empty", f.Name())
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &mmapRegion{data: data}, nil
}

func (m *mmapRegion) Bytes() []byte { return m.data }

func (m *mmapRegion) Sync() error {
	return unix.Msync(m.data, unix.MS_SYNC)
}

func (m *mmapRegion) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}
