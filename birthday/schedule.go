package birthday

import (
	"sort"
	"time"
)

// Entry pairs one guild member with their stored birthday. Entries are
// in-memory snapshots; the scheduler never touches storage.
type Entry struct {
	UserID   string
	GuildID  string
	Birthday Birthday
}

// Occurrence is an entry together with one concrete instant its birthday
// happens on.
type Occurrence struct {
	Entry
	At time.Time
}

// Due returns the entries whose yearly occurrence falls inside
// [now-halfWindow, now+halfWindow], inclusive at both ends. Occurrences in
// the years adjacent to now's are considered too, so windows straddling
// New Year still catch 1 January birthdays.
func Due(now time.Time, halfWindow time.Duration, entries []Entry) []Entry {
	start := now.Add(-halfWindow)
	end := now.Add(halfWindow)

	var due []Entry
	for _, entry := range entries {
		for _, year := range [...]int{now.Year() - 1, now.Year(), now.Year() + 1} {
			occ := entry.Birthday.Occurrence(year)
			if !occ.Before(start) && !occ.After(end) {
				due = append(due, entry)
				break
			}
		}
	}
	return due
}

// Next returns the next `limit` upcoming birthdays, soonest first. Each
// entry appears once with its true next occurrence; if limit exceeds the
// number of entries the sequence wraps around, every further pass sitting
// one year later. Ties keep the entries' original relative order. Instants
// are compared absolutely, so differing offsets order consistently.
func Next(now time.Time, entries []Entry, limit int) []Occurrence {
	if limit < 1 || len(entries) == 0 {
		return nil
	}

	next := make([]Occurrence, len(entries))
	for i, entry := range entries {
		occ := entry.Birthday.Occurrence(now.Year())
		if occ.Before(now) {
			occ = entry.Birthday.Occurrence(now.Year() + 1)
		}
		next[i] = Occurrence{Entry: entry, At: occ}
	}

	sort.SliceStable(next, func(i, j int) bool {
		return next[i].At.Before(next[j].At)
	})

	out := make([]Occurrence, 0, limit)
	for pass := 0; len(out) < limit; pass++ {
		for _, occ := range next {
			if len(out) == limit {
				break
			}
			if pass > 0 {
				occ.At = occ.Birthday.Occurrence(occ.At.Year() + pass)
			}
			out = append(out, occ)
		}
	}
	return out
}
