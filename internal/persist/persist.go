// Package persist stores the leaderboard inside the running executable.
//
// On Open the executable is copied next to itself with a .tmp extension
// and the copy is mapped into memory. Flush writes the table into the
// reserved region of the copy and renames it over the original, so the
// next start of the program sees the updated scores.
package persist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tomz197/snake/internal/leaderboard"
)

// ErrAlreadyFlushed is returned by a second call to Flush.
var ErrAlreadyFlushed = errors.New("persist: already flushed")

// Options configure a Manager.
type Options struct {
	// Executable overrides the path of the running executable.
	Executable string
	// Table is the leaderboard to write. Defaults to the compiled-in table.
	Table  *leaderboard.Table
	Logger *log.Logger
}

// Manager owns the temporary copy of the executable until it is flushed
// or closed.
type Manager struct {
	table   *leaderboard.Table
	exe     string
	tmp     string
	mode    os.FileMode
	file    *os.File
	mapping mapping
	logger  *log.Logger

	flushed bool
	renamed bool
	closed  bool
}

// Open copies the executable and maps the copy for writing.
func Open(opts Options) (*Manager, error) {
	exe := opts.Executable
	if exe == "" {
		var err error
		exe, err = os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}
	}
	exe, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}
	info, err := os.Stat(exe)
	if err != nil {
		return nil, fmt.Errorf("stat executable: %w", err)
	}

	m := &Manager{
		table:  opts.Table,
		exe:    exe,
		tmp:    tempPath(exe),
		mode:   info.Mode().Perm(),
		logger: opts.Logger,
	}
	if m.table == nil {
		m.table = leaderboard.Default()
	}
	if m.logger == nil {
		m.logger = log.New(io.Discard)
	}

	if err := copyFile(exe, m.tmp); err != nil {
		os.Remove(m.tmp)
		return nil, err
	}
	m.file, err = os.OpenFile(m.tmp, os.O_RDWR, 0)
	if err != nil {
		os.Remove(m.tmp)
		return nil, fmt.Errorf("open copy: %w", err)
	}
	m.mapping, err = mapFile(m.file)
	if err != nil {
		m.file.Close()
		os.Remove(m.tmp)
		return nil, fmt.Errorf("map copy: %w", err)
	}

	m.logger.Info("executable copied", "from", exe, "to", m.tmp, "size", len(m.mapping.Bytes()))
	return m, nil
}

// tempPath replaces the extension of path with .tmp.
func tempPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".tmp"
}

// Table returns the leaderboard that Flush will write. Callers mutate it
// in place.
func (m *Manager) Table() *leaderboard.Table { return m.table }

// TempPath returns the path of the working copy.
func (m *Manager) TempPath() string { return m.tmp }

// Flush writes the table into the copy and replaces the executable with
// it. On failure the copy is discarded and the executable is untouched.
func (m *Manager) Flush() error {
	if m.flushed {
		return ErrAlreadyFlushed
	}
	m.flushed = true

	if err := m.flush(); err != nil {
		m.discard()
		return err
	}
	m.logger.Info("leaderboard saved", "executable", m.exe)
	return nil
}

func (m *Manager) flush() error {
	if m.closed {
		return errors.New("persist: manager closed")
	}
	data := m.mapping.Bytes()
	r, err := locate(data, leaderboard.ReservedSymbol, leaderboard.Marker())
	if err != nil {
		return err
	}

	buf, err := m.table.MarshalBinary()
	if err != nil {
		return err
	}
	copy(data[r.Offset:r.Offset+r.Size], buf)
	if err := m.mapping.Sync(); err != nil {
		return fmt.Errorf("sync copy: %w", err)
	}
	if err := m.release(); err != nil {
		return err
	}

	if err := os.Chmod(m.tmp, m.mode); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Rename(m.tmp, m.exe); err != nil {
		return fmt.Errorf("replace executable: %w", err)
	}
	m.renamed = true
	return nil
}

// release unmaps and closes the copy. It is safe to call twice.
func (m *Manager) release() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	if m.mapping != nil {
		errs = append(errs, m.mapping.Close())
	}
	if m.file != nil {
		errs = append(errs, m.file.Close())
	}
	return errors.Join(errs...)
}

func (m *Manager) discard() {
	if err := m.release(); err != nil {
		m.logger.Warn("release copy", "err", err)
	}
	if err := os.Remove(m.tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.logger.Warn("remove copy", "path", m.tmp, "err", err)
	}
}

// Close releases the copy and removes it unless Flush already moved it
// into place. Close is idempotent.
func (m *Manager) Close() error {
	if m.renamed {
		return nil
	}
	err := m.release()
	if rmErr := os.Remove(m.tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		err = errors.Join(err, rmErr)
	}
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open executable: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy executable: %w", err)
	}
	return out.Close()
}
