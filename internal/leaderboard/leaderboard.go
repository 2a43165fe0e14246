// Package leaderboard implements the fixed-size ranked score table and its
// on-disk byte layout.
package leaderboard

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unsafe"
)

const (
	// Capacity is the number of ranked entries kept.
	Capacity = 10
	// NameLength is the number of characters stored per name.
	NameLength = 16
	// RecordSize is the encoded size of one entry: 16 runes, a uint16
	// score and two bytes of padding.
	RecordSize = NameLength*4 + 2 + 2
	// TableSize is the encoded size of the whole table.
	TableSize = Capacity * RecordSize
)

// Record is one leaderboard row. Name is always space padded.
type Record struct {
	Name  [NameLength]rune
	Score uint16
	_     [2]byte
}

// Compile-time check that the in-memory layout matches the encoded one.
var _ [TableSize - int(unsafe.Sizeof([Capacity]Record{}))]struct{}
var _ [int(unsafe.Sizeof([Capacity]Record{})) - TableSize]struct{}

// NameString returns the name with trailing padding removed.
func (r Record) NameString() string {
	return strings.TrimRight(string(r.Name[:]), " ")
}

// Table holds the ranked records, best first.
type Table struct {
	Records [Capacity]Record
}

// blankName returns a name made only of spaces.
func blankName() [NameLength]rune {
	var n [NameLength]rune
	for i := range n {
		n[i] = ' '
	}
	return n
}

// RankInsert places name/score in front of the first entry with a strictly
// lower score, dropping the last entry. It returns the rank taken (0-based)
// and false when the score does not qualify.
func (t *Table) RankInsert(name string, score uint16) (int, bool) {
	at := -1
	for i, rec := range t.Records {
		if rec.Score < score {
			at = i
			break
		}
	}
	if at < 0 {
		return 0, false
	}

	copy(t.Records[at+1:], t.Records[at:Capacity-1])

	rec := Record{Name: blankName(), Score: score}
	i := 0
	for _, r := range name {
		if i == NameLength {
			break
		}
		rec.Name[i] = r
		i++
	}
	t.Records[at] = rec
	return at, true
}

// ScoreFromLength converts a snake length into a table score, saturating
// at the bounds of uint16.
func ScoreFromLength(length float64) uint16 {
	switch {
	case length <= 0 || math.IsNaN(length):
		return 0
	case length >= math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(length)
}

// MarshalBinary encodes the table into its fixed TableSize layout. The
// byte order is the machine's, matching how the compiled-in table sits in
// the executable.
func (t *Table) MarshalBinary() ([]byte, error) {
	buf := make([]byte, TableSize)
	for i, rec := range t.Records {
		off := i * RecordSize
		for j, r := range rec.Name {
			binary.NativeEndian.PutUint32(buf[off+j*4:], uint32(r))
		}
		binary.NativeEndian.PutUint16(buf[off+NameLength*4:], rec.Score)
	}
	return buf, nil
}

// UnmarshalBinary decodes a table previously produced by MarshalBinary.
func (t *Table) UnmarshalBinary(data []byte) error {
	if len(data) != TableSize {
		return fmt.Errorf("leaderboard: want %d bytes, got %d", TableSize, len(data))
	}
	for i := range t.Records {
		off := i * RecordSize
		var rec Record
		for j := range rec.Name {
			rec.Name[j] = rune(binary.NativeEndian.Uint32(data[off+j*4:]))
		}
		rec.Score = binary.NativeEndian.Uint16(data[off+NameLength*4:])
		t.Records[i] = rec
	}
	return nil
}
