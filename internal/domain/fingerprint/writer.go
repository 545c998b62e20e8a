package fingerprint

import (
	"math"
	"strconv"
	"strings"
)

const hexDigits = "0123456789abcdef"

// writer emits JSON text the way a browser's JSON.stringify does: shortest
// round-trip numbers, null for non-finite values and no HTML or
// line-separator escaping.
type writer struct {
	strings.Builder
}

func (w *writer) num(f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		w.WriteString("null")
		return
	}
	if f == 0 {
		w.WriteByte('0')
		return
	}
	format := byte('f')
	if abs := math.Abs(f); abs < 1e-6 || abs >= 1e21 {
		format = 'e'
	}
	b := strconv.AppendFloat(make([]byte, 0, 24), f, format, -1, 64)
	if format == 'e' {
		// 1e-07 -> 1e-7
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	w.Write(b)
}

func (w *writer) str(s string) {
	w.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			w.WriteString(`\"`)
		case '\\':
			w.WriteString(`\\`)
		case '\b':
			w.WriteString(`\b`)
		case '\f':
			w.WriteString(`\f`)
		case '\n':
			w.WriteString(`\n`)
		case '\r':
			w.WriteString(`\r`)
		case '\t':
			w.WriteString(`\t`)
		default:
			if r < 0x20 {
				w.WriteString(`\u00`)
				w.WriteByte(hexDigits[r>>4])
				w.WriteByte(hexDigits[r&0xF])
				continue
			}
			w.WriteRune(r)
		}
	}
	w.WriteByte('"')
}
