// Package testutil provides deterministic FCS fixtures and instrumented
// parsers for tests.
package testutil

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"
	"testing"
)

// FCSOptions controls fixture encoding. The zero value writes FCS3.0
// float32 little-endian data, which is what most plate exports look like.
type FCSOptions struct {
	Datatype  string // "F" (default), "D", or "I"
	BigEndian bool
	Keywords  map[string]string // extra TEXT keywords, e.g. "$TIMESTEP"
}

// WriteFCS writes a minimal but standard-conforming FCS 3.0 file.
//
// names fixes the channel order; cols must be aligned to names and all
// columns must have equal length. Integer data is written as 16-bit
// unsigned values.
func WriteFCS(t *testing.T, path string, names []string, cols [][]float64, opts *FCSOptions) {
	t.Helper()

	if opts == nil {
		opts = &FCSOptions{}
	}
	datatype := opts.Datatype
	if datatype == "" {
		datatype = "F"
	}
	if len(names) != len(cols) {
		t.Fatalf("WriteFCS: %d names but %d columns", len(names), len(cols))
	}
	rows := 0
	if len(cols) > 0 {
		rows = len(cols[0])
		for i, c := range cols {
			if len(c) != rows {
				t.Fatalf("WriteFCS: column %q has %d rows, want %d", names[i], len(c), rows)
			}
		}
	}

	byteord := "1,2,3,4"
	var order binary.AppendByteOrder = binary.LittleEndian
	if opts.BigEndian {
		byteord = "4,3,2,1"
		order = binary.BigEndian
	}

	var bits int
	switch datatype {
	case "F":
		bits = 32
	case "D":
		bits = 64
	case "I":
		bits = 16
	default:
		t.Fatalf("WriteFCS: unsupported datatype %q", datatype)
	}

	// TEXT segment: delimiter-prefixed keyword/value pairs, each followed
	// by the delimiter.
	const delim = "/"
	text := delim
	add := func(k, v string) { text += k + delim + v + delim }

	add("$MODE", "L")
	add("$DATATYPE", datatype)
	add("$BYTEORD", byteord)
	add("$PAR", fmt.Sprintf("%d", len(names)))
	add("$TOT", fmt.Sprintf("%d", rows))
	for i, name := range names {
		add(fmt.Sprintf("$P%dN", i+1), name)
		add(fmt.Sprintf("$P%dB", i+1), fmt.Sprintf("%d", bits))
	}
	// Extra keywords in sorted order for reproducible files.
	extra := make([]string, 0, len(opts.Keywords))
	for k := range opts.Keywords {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, k := range extra {
		add(k, opts.Keywords[k])
	}

	// DATA segment: row-major event matrix.
	data := make([]byte, 0, rows*len(names)*bits/8)
	for r := 0; r < rows; r++ {
		for _, c := range cols {
			switch datatype {
			case "F":
				data = order.AppendUint32(data, math.Float32bits(float32(c[r])))
			case "D":
				data = order.AppendUint64(data, math.Float64bits(c[r]))
			case "I":
				data = order.AppendUint16(data, uint16(c[r]))
			}
		}
	}

	const headerSize = 58
	textBegin := headerSize
	textEnd := textBegin + len(text) - 1
	dataBegin := textEnd + 1
	dataEnd := dataBegin + len(data) - 1
	if len(data) == 0 {
		dataEnd = dataBegin
		data = []byte{0}
	}

	header := fmt.Sprintf("FCS3.0    %8d%8d%8d%8d%8d%8d",
		textBegin, textEnd, dataBegin, dataEnd, 0, 0)
	if len(header) != headerSize {
		t.Fatalf("WriteFCS: header is %d bytes, want %d", len(header), headerSize)
	}

	out := append([]byte(header), []byte(text)...)
	out = append(out, data...)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatalf("WriteFCS: %v", err)
	}
}
