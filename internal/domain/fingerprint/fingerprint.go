// Package fingerprint derives a short digest of a criteria set so snapshots
// taken under different criteria can be told apart.
//
// The digest is an integrity hint for humans comparing history entries. It is
// a 32-bit FNV-1a hash and offers no protection against deliberate collisions.
//
// Criteria are ordered by byte-wise id comparison. The web tracker ordered them
// with a locale-aware comparison, so its stored digests match only when both
// orders agree. They agree for lowercase ids built from one character class,
// which includes generated ids. Mixed-case ids, or ids where '_' meets a digit,
// produce a different digest here.
package fingerprint

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
)

// FNV-1a 32-bit parameters.
const (
	offsetBasis uint32 = 2166136261
	prime       uint32 = 16777619
)

// Of returns the fingerprint of criteria as lowercase hex without padding.
// The input order does not matter; criteria are sorted by id first.
func Of(criteria []model.Criterion) string {
	return strconv.FormatUint(uint64(Sum32(Canonical(criteria))), 16)
}

// Canonical returns the compact JSON text that Of hashes:
// an array of {id,name,dimension,weight,scaleMin,scaleMax,enabled} objects
// in ascending id order.
func Canonical(criteria []model.Criterion) string {
	sorted := slices.Clone(criteria)
	slices.SortStableFunc(sorted, func(a, b model.Criterion) int {
		return strings.Compare(a.ID, b.ID)
	})

	var w writer
	w.WriteByte('[')
	for i, c := range sorted {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteString(`{"id":`)
		w.str(c.ID)
		w.WriteString(`,"name":`)
		w.str(c.Name)
		w.WriteString(`,"dimension":`)
		w.str(string(c.Dimension))
		w.WriteString(`,"weight":`)
		w.num(c.Weight)
		w.WriteString(`,"scaleMin":`)
		w.num(c.ScaleMin)
		w.WriteString(`,"scaleMax":`)
		w.num(c.ScaleMax)
		w.WriteString(`,"enabled":`)
		w.WriteString(strconv.FormatBool(c.Enabled))
		w.WriteByte('}')
	}
	w.WriteByte(']')
	return w.String()
}

// Sum32 hashes the UTF-16 code units of s with FNV-1a. For ASCII text this is
// the same as hashing the bytes.
func Sum32(s string) uint32 {
	h := offsetBasis
	for _, r := range s {
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			h = (h ^ uint32(hi)) * prime
			h = (h ^ uint32(lo)) * prime
			continue
		}
		h = (h ^ uint32(r)) * prime
	}
	return h
}

// Comparable reports whether a snapshot was taken under the criteria whose
// fingerprint is current.
func Comparable(s model.Snapshot, current string) bool {
	return s.CriteriaHash != "" && s.CriteriaHash == current
}
