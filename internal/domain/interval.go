package domain

import "time"

// Overlaps reports whether [aStart,aEnd] and [bStart,bEnd] overlap inclusive
// on both endpoints — the sole overlap predicate used anywhere in the
// booking core (GLOSSARY: "Overlap (inclusive)"; spec §4.2).
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}
