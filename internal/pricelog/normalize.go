package pricelog

import "strings"

// NormalizePrice canonicalizes a submitted price string before storage and
// lookup:
//
//  1. spaces are stripped ("1 299,90" → "1299,90")
//  2. comma decimal separators become dots ("19,99" → "19.99")
//  3. when several dots remain, only the last is kept as the decimal
//     separator; the others are thousands separators and are dropped
//     ("1.299,90" → "1.299.90" → "1299.90")
//
// The result is stable: NormalizePrice(NormalizePrice(s)) == NormalizePrice(s).
// An empty result means no usable price was submitted.
func NormalizePrice(raw string) string {
	val := strings.ReplaceAll(raw, " ", "")
	val = strings.ReplaceAll(val, ",", ".")

	if strings.Count(val, ".") > 1 {
		last := strings.LastIndex(val, ".")
		val = strings.ReplaceAll(val[:last], ".", "") + val[last:]
	}

	return val
}
