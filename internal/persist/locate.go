package persist

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"errors"
	"fmt"
	"os"

	"github.com/tomz197/snake/internal/leaderboard"
)

var (
	// ErrRegionNotFound means the executable has no reserved leaderboard region.
	ErrRegionNotFound = errors.New("persist: reserved region not found")
	// ErrRegionSize means the reserved region does not match the table size.
	ErrRegionSize = errors.New("persist: reserved region has wrong size")
	// ErrUnknownFormat means the file is not an ELF, Mach-O or PE image.
	ErrUnknownFormat = errors.New("persist: unknown executable format")
)

// region is a byte range in the executable file.
type region struct {
	Offset int64
	Size   int64
}

// section is the part of a section header needed to turn a symbol
// address into a file offset.
type section struct {
	name    string
	addr    uint64
	offset  uint64
	size    uint64
	noBytes bool
}

// symbol is a named address inside one section. size is 0 when the
// format does not record it.
type symbol struct {
	name    string
	section int
	value   uint64
	size    uint64
}

// image is the format-neutral view of an executable.
type image struct {
	sections []section
	symbols  []symbol
}

// dataSections lists the sections a statically initialised Go variable
// without pointers can live in, per format.
var dataSections = map[string]bool{
	".noptrdata":  true,
	".data":       true,
	"__noptrdata": true,
	"__data":      true,
}

// locate finds the table bytes of the reserved region. The symbol table is
// tried first; stripped binaries fall back to a scan of the data sections
// for marker.
func locate(data []byte, name string, marker []byte) (region, error) {
	img, err := parseImage(data)
	if err != nil {
		return region{}, err
	}
	return img.find(data, name, marker)
}

func (img *image) find(data []byte, name string, marker []byte) (region, error) {
	r, err := img.symbolRegion(data, name, marker)
	if err == nil || !errors.Is(err, ErrRegionNotFound) {
		return r, err
	}
	r, scanErr := img.markerRegion(data, marker)
	if scanErr != nil {
		return region{}, fmt.Errorf("%w; %v", scanErr, err)
	}
	return r, nil
}

// symbolRegion resolves the named symbol and checks that it starts with
// marker.
func (img *image) symbolRegion(data []byte, name string, marker []byte) (region, error) {
	idx := -1
	for i, s := range img.symbols {
		if s.name == name || s.name == "_"+name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return region{}, fmt.Errorf("%w: no symbol %q", ErrRegionNotFound, name)
	}
	sym := img.symbols[idx]
	if sym.section < 0 || sym.section >= len(img.sections) {
		return region{}, fmt.Errorf("%w: symbol %q has no section", ErrRegionNotFound, name)
	}
	sec := img.sections[sym.section]
	if sec.noBytes {
		return region{}, fmt.Errorf("%w: symbol %q lives in a section without file data", ErrRegionNotFound, name)
	}
	if sym.value < sec.addr || sym.value >= sec.addr+sec.size {
		return region{}, fmt.Errorf("%w: symbol %q outside its section", ErrRegionNotFound, name)
	}

	want := uint64(len(marker) + leaderboard.TableSize)
	size := sym.size
	switch {
	case size == 0:
		// Inferred sizes include any alignment padding after the symbol.
		if size = img.distanceToNext(sym, sec); size < want {
			return region{}, fmt.Errorf("%w: symbol %q has %d bytes, want %d", ErrRegionSize, name, size, want)
		}
	case size != want:
		return region{}, fmt.Errorf("%w: symbol %q has %d bytes, want %d", ErrRegionSize, name, size, want)
	}

	off := sec.offset + (sym.value - sec.addr)
	if off+want > uint64(len(data)) {
		return region{}, fmt.Errorf("%w: symbol %q runs past the end of the file", ErrRegionNotFound, name)
	}
	if !bytes.Equal(data[off:off+uint64(len(marker))], marker) {
		return region{}, fmt.Errorf("%w: symbol %q does not start with the marker", ErrRegionNotFound, name)
	}
	return region{Offset: int64(off) + int64(len(marker)), Size: leaderboard.TableSize}, nil
}

// markerRegion scans the data sections for marker. The marker must occur
// exactly once and be followed by a whole table inside the same section.
// Images without any known data section are scanned section by section.
func (img *image) markerRegion(data []byte, marker []byte) (region, error) {
	if len(marker) == 0 {
		return region{}, fmt.Errorf("%w: empty marker", ErrRegionNotFound)
	}

	var candidates []section
	for _, sec := range img.sections {
		if dataSections[sec.name] {
			candidates = append(candidates, sec)
		}
	}
	if len(candidates) == 0 {
		candidates = img.sections
	}

	found := region{Offset: -1}
	for _, sec := range candidates {
		if sec.noBytes || sec.offset >= uint64(len(data)) {
			continue
		}
		end := min(sec.offset+sec.size, uint64(len(data)))
		body := data[sec.offset:end]

		for from := 0; ; {
			i := bytes.Index(body[from:], marker)
			if i < 0 {
				break
			}
			at := from + i
			if found.Offset >= 0 {
				return region{}, fmt.Errorf("%w: marker found more than once", ErrRegionNotFound)
			}
			start := at + len(marker)
			if start+leaderboard.TableSize > len(body) {
				return region{}, fmt.Errorf("%w: marker at %#x is followed by %d bytes, want %d",
					ErrRegionSize, sec.offset+uint64(at), len(body)-start, leaderboard.TableSize)
			}
			found = region{Offset: int64(sec.offset) + int64(start), Size: leaderboard.TableSize}
			from = start
		}
	}
	if found.Offset < 0 {
		return region{}, fmt.Errorf("%w: no marker in data sections", ErrRegionNotFound)
	}
	return found, nil
}

// distanceToNext infers a symbol's size from the next symbol in the same
// section, or the section end. Mach-O and PE do not store sizes.
func (img *image) distanceToNext(sym symbol, sec section) uint64 {
	end := sec.addr + sec.size
	for _, s := range img.symbols {
		if s.section == sym.section && s.value > sym.value && s.value < end {
			end = s.value
		}
	}
	return end - sym.value
}

func parseImage(data []byte) (*image, error) {
	switch {
	case bytes.HasPrefix(data, []byte(elf.ELFMAG)):
		return parseELF(data)
	case bytes.HasPrefix(data, []byte("MZ")):
		return parsePE(data)
	case len(data) >= 4 && isMachO(data[:4]):
		return parseMachO(data)
	}
	return nil, ErrUnknownFormat
}

func isMachO(magic []byte) bool {
	for _, m := range []uint32{macho.Magic32, macho.Magic64} {
		le := []byte{byte(m), byte(m >> 8), byte(m >> 16), byte(m >> 24)}
		be := []byte{le[3], le[2], le[1], le[0]}
		if bytes.Equal(magic, le) || bytes.Equal(magic, be) {
			return true
		}
	}
	return false
}

func parseELF(data []byte) (*image, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse elf: %w", err)
	}
	defer f.Close()

	img := &image{}
	for _, s := range f.Sections {
		img.sections = append(img.sections, section{
			name:    s.Name,
			addr:    s.Addr,
			offset:  s.Offset,
			size:    s.Size,
			noBytes: s.Type == elf.SHT_NOBITS,
		})
	}
	syms, err := f.Symbols()
	if err != nil {
		if errors.Is(err, elf.ErrNoSymbols) {
			return img, nil
		}
		return nil, fmt.Errorf("read elf symbols: %w", err)
	}
	for _, s := range syms {
		img.symbols = append(img.symbols, symbol{
			name:    s.Name,
			section: int(s.Section),
			value:   s.Value,
			size:    s.Size,
		})
	}
	return img, nil
}

func parseMachO(data []byte) (*image, error) {
	f, err := macho.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse mach-o: %w", err)
	}
	defer f.Close()

	img := &image{}
	for _, s := range f.Sections {
		img.sections = append(img.sections, section{
			name:   s.Name,
			addr:   s.Addr,
			offset: uint64(s.Offset),
			size:   s.Size,
			// Zero-fill sections have no file offset.
			noBytes: s.Offset == 0,
		})
	}
	if f.Symtab == nil {
		return img, nil
	}
	for _, s := range f.Symtab.Syms {
		if s.Sect == 0 {
			continue
		}
		img.symbols = append(img.symbols, symbol{
			name:    s.Name,
			section: int(s.Sect) - 1,
			value:   s.Value,
		})
	}
	return img, nil
}

func parsePE(data []byte) (*image, error) {
	f, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse pe: %w", err)
	}
	defer f.Close()

	// COFF symbol values are offsets into their section, so sections are
	// addressed from zero here.
	img := &image{}
	for _, s := range f.Sections {
		img.sections = append(img.sections, section{
			name:    s.Name,
			offset:  uint64(s.Offset),
			size:    uint64(s.Size),
			noBytes: s.Offset == 0,
		})
	}
	for _, s := range f.Symbols {
		if s.SectionNumber <= 0 {
			continue
		}
		img.symbols = append(img.symbols, symbol{
			name:    s.Name,
			section: int(s.SectionNumber) - 1,
			value:   uint64(s.Value),
		})
	}
	return img, nil
}

// ReadTable decodes the leaderboard stored in the executable at path.
func ReadTable(path string) (*leaderboard.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read executable: %w", err)
	}
	return readTable(data, leaderboard.ReservedSymbol, leaderboard.Marker())
}

func readTable(data []byte, name string, marker []byte) (*leaderboard.Table, error) {
	r, err := locate(data, name, marker)
	if err != nil {
		return nil, err
	}
	var t leaderboard.Table
	if err := t.UnmarshalBinary(data[r.Offset : r.Offset+r.Size]); err != nil {
		return nil, err
	}
	return &t, nil
}
