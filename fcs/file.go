package fcs

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/fcmcmp/frame"
)

const headerSize = 58

// FileParser is the default Parser. It reads FCS 3.0 and 3.1 files.
//
// FileParser is stateless and safe for concurrent use.
type FileParser struct{}

// Parse reads the FCS file at path and returns its event frame and the
// complete TEXT keyword map.
func (FileParser) Parse(path string) (*frame.Frame, Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if len(raw) < headerSize {
		return nil, nil, fmt.Errorf("%s: file too short for FCS header (%d bytes)", path, len(raw))
	}

	version := strings.TrimSpace(string(raw[0:10]))
	if version != "FCS3.0" && version != "FCS3.1" {
		return nil, nil, fmt.Errorf("%s: unsupported FCS version %q", path, version)
	}

	textBegin, err := headerOffset(raw, 10)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: TEXT begin offset: %w", path, err)
	}
	textEnd, err := headerOffset(raw, 18)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: TEXT end offset: %w", path, err)
	}
	dataBegin, err := headerOffset(raw, 26)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: DATA begin offset: %w", path, err)
	}
	dataEnd, err := headerOffset(raw, 34)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: DATA end offset: %w", path, err)
	}

	if textBegin < headerSize || textEnd < textBegin || textEnd >= len(raw) {
		return nil, nil, fmt.Errorf("%s: TEXT segment [%d, %d] out of bounds", path, textBegin, textEnd)
	}

	meta, err := parseText(raw[textBegin : textEnd+1])
	if err != nil {
		return nil, nil, fmt.Errorf("%s: TEXT segment: %w", path, err)
	}

	// Files whose DATA segment does not fit in the 8-digit header fields
	// carry zero offsets and the real ones in the TEXT segment.
	if dataBegin == 0 && dataEnd == 0 {
		dataBegin, err = keywordInt(meta, "$BEGINDATA")
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		dataEnd, err = keywordInt(meta, "$ENDDATA")
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if dataBegin < headerSize || dataEnd < dataBegin || dataEnd >= len(raw) {
		return nil, nil, fmt.Errorf("%s: DATA segment [%d, %d] out of bounds", path, dataBegin, dataEnd)
	}

	f, err := parseData(raw[dataBegin:dataEnd+1], meta)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: DATA segment: %w", path, err)
	}
	return f, meta, nil
}

// headerOffset reads one right-justified 8-character ASCII integer from the
// header. Blank fields read as zero.
func headerOffset(raw []byte, at int) (int, error) {
	field := strings.TrimSpace(string(raw[at : at+8]))
	if field == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("malformed offset field %q", field)
	}
	return n, nil
}

// parseText tokenizes the delimited TEXT segment into a keyword map.
//
// The first byte of the segment is the delimiter. A doubled delimiter
// inside a value is an escaped literal delimiter.
func parseText(text []byte) (Metadata, error) {
	if len(text) < 2 {
		return nil, fmt.Errorf("segment too short (%d bytes)", len(text))
	}
	delim := string(text[0])
	body := string(text[1:])
	// The segment ends with a trailing delimiter.
	body = strings.TrimSuffix(body, delim)

	parts := strings.Split(body, delim)
	var tokens []string
	for i := 0; i < len(parts); {
		tok := parts[i]
		i++
		// An empty part marks an escaped (doubled) delimiter: rejoin.
		for i < len(parts) && parts[i] == "" {
			tok += delim
			i++
			if i < len(parts) {
				tok += parts[i]
				i++
			}
		}
		tokens = append(tokens, tok)
	}

	if len(tokens)%2 != 0 {
		return nil, fmt.Errorf("odd number of TEXT tokens (%d)", len(tokens))
	}

	meta := make(Metadata, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		key := tokens[i]
		if strings.HasPrefix(key, "$") {
			key = strings.ToUpper(key)
		}
		meta[key] = tokens[i+1]
	}
	return meta, nil
}

func keywordInt(meta Metadata, key string) (int, error) {
	value, ok := meta[key]
	if !ok {
		return 0, fmt.Errorf("missing required keyword %s", key)
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("keyword %s: malformed integer %q", key, value)
	}
	return n, nil
}

// parseData decodes the binary event matrix described by the TEXT keywords.
func parseData(data []byte, meta Metadata) (*frame.Frame, error) {
	if mode, ok := meta["$MODE"]; !ok || mode != "L" {
		return nil, fmt.Errorf("unsupported $MODE %q (only list mode is supported)", meta["$MODE"])
	}

	par, err := keywordInt(meta, "$PAR")
	if err != nil {
		return nil, err
	}
	tot, err := keywordInt(meta, "$TOT")
	if err != nil {
		return nil, err
	}
	if par <= 0 || tot < 0 {
		return nil, fmt.Errorf("implausible $PAR=%d / $TOT=%d", par, tot)
	}

	var order binary.ByteOrder
	switch meta["$BYTEORD"] {
	case "1,2,3,4":
		order = binary.LittleEndian
	case "4,3,2,1":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("unsupported $BYTEORD %q", meta["$BYTEORD"])
	}

	datatype := meta["$DATATYPE"]

	names := make([]string, par)
	widths := make([]int, par)
	rowBytes := 0
	for p := 1; p <= par; p++ {
		name, ok := meta[fmt.Sprintf("$P%dN", p)]
		if !ok {
			return nil, fmt.Errorf("missing channel name $P%dN", p)
		}
		names[p-1] = name

		switch datatype {
		case "F":
			widths[p-1] = 4
		case "D":
			widths[p-1] = 8
		case "I":
			bits, err := keywordInt(meta, fmt.Sprintf("$P%dB", p))
			if err != nil {
				return nil, err
			}
			switch bits {
			case 8, 16, 32, 64:
				widths[p-1] = bits / 8
			default:
				return nil, fmt.Errorf("unsupported $P%dB=%d for integer data", p, bits)
			}
		default:
			return nil, fmt.Errorf("unsupported $DATATYPE %q", datatype)
		}
		rowBytes += widths[p-1]
	}

	if need := tot * rowBytes; len(data) < need {
		return nil, fmt.Errorf("DATA segment has %d bytes, need %d for %d events", len(data), need, tot)
	}

	cols := make(map[string][]float64, par)
	colSlices := make([][]float64, par)
	for i, name := range names {
		values := make([]float64, tot)
		colSlices[i] = values
		cols[name] = values
	}

	off := 0
	for row := 0; row < tot; row++ {
		for p := 0; p < par; p++ {
			w := widths[p]
			chunk := data[off : off+w]
			off += w

			var v float64
			switch datatype {
			case "F":
				v = float64(math.Float32frombits(order.Uint32(chunk)))
			case "D":
				v = math.Float64frombits(order.Uint64(chunk))
			case "I":
				switch w {
				case 1:
					v = float64(chunk[0])
				case 2:
					v = float64(order.Uint16(chunk))
				case 4:
					v = float64(order.Uint32(chunk))
				case 8:
					v = float64(order.Uint64(chunk))
				}
			}
			colSlices[p][row] = v
		}
	}

	return frame.FromColumns(names, cols)
}
