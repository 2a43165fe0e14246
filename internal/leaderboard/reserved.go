package leaderboard

import "unsafe"

// MarkerSize is the length of the tag stored in front of the compiled-in
// table.
const MarkerSize = 16

// ReservedSize is the size of the compiled-in region: marker plus table.
const ReservedSize = MarkerSize + TableSize

// reserved is the table compiled into the executable. It is the storage the
// persist package patches in the binary on disk, so it must stay a
// statically initialised, non-zero value: an all-zero variable would land
// in a section with no file bytes.
//
// The marker lets the region be found in stripped binaries. It is spelled
// out byte by byte so that no second copy of it ends up in read-only data.
var reserved = struct {
	Marker  [MarkerSize]byte
	Records [Capacity]Record
}{
	Marker: [MarkerSize]byte{'s', 'n', 'a', 'k', 'e', '.', 's', 'c', 'o', 'r', 'e', 's', '.', 'v', '1', 0},
	Records: [Capacity]Record{
		{Name: [NameLength]rune{' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}},
		{Name: [NameLength]rune{' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}},
		{Name: [NameLength]rune{' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}},
		{Name: [NameLength]rune{' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}},
		{Name: [NameLength]rune{' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}},
		{Name: [NameLength]rune{' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}},
		{Name: [NameLength]rune{' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}},
		{Name: [NameLength]rune{' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}},
		{Name: [NameLength]rune{' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}},
		{Name: [NameLength]rune{' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}},
	},
}

// Compile-time check that the table directly follows the marker.
var _ [ReservedSize - int(unsafe.Sizeof(reserved))]struct{}
var _ [int(unsafe.Sizeof(reserved)) - ReservedSize]struct{}

// ReservedSymbol is the linker symbol of the compiled-in region.
const ReservedSymbol = "github.com/tomz197/snake/internal/leaderboard.reserved"

// Marker returns a copy of the tag that precedes the table in the
// executable.
func Marker() []byte {
	m := reserved.Marker
	return m[:]
}

// Default returns the table this executable was started with.
func Default() *Table {
	return &Table{Records: reserved.Records}
}
