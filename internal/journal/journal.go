// Package journal keeps a bounded, tick-keyed record of the interpreter's
// per-tick notes so a spell's unfolding can be inspected after the fact.
// Retention is bounded by count and by age; the live simulation never
// depends on journal contents.
package journal

import (
	"sync"
	"time"

	"rune-and-ruin/server/spell"
)

// Telemetry captures the metrics adapter used by the journal to report
// dropped or evicted records.
type Telemetry interface {
	RecordJournalDrop(metric string)
}

const (
	// MetricEvictedCount marks records pushed out by the capacity bound.
	MetricEvictedCount = "journal_evicted_count"
	// MetricEvictedAge marks records pushed out by the retention window.
	MetricEvictedAge = "journal_evicted_age"
	// MetricStaleNote marks notes rejected for running backwards in time.
	MetricStaleNote = "journal_stale_note"
)

type record struct {
	note       spell.Note
	recordedAt time.Time
}

// Journal is safe for concurrent use; the loop records while inspection
// endpoints read.
type Journal struct {
	mu        sync.RWMutex
	records   []record
	maxNotes  int
	maxAge    time.Duration
	telemetry Telemetry
}

// New constructs a journal retaining up to capacity notes for at most
// maxAge. A zero capacity disables retention entirely.
func New(capacity int, maxAge time.Duration) Journal {
	if capacity < 0 {
		capacity = 0
	}
	if maxAge < 0 {
		maxAge = 0
	}
	return Journal{
		records:  make([]record, 0, capacity),
		maxNotes: capacity,
		maxAge:   maxAge,
	}
}

// AttachTelemetry wires drop counters into the journal.
func (j *Journal) AttachTelemetry(t Telemetry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.telemetry = t
}

// Record stores a note keyed by its tick, evicting expired and overflowing
// records from the front. Ticks must not run backwards; a stale note is
// dropped rather than splicing history.
func (j *Journal) Record(note spell.Note) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.maxNotes == 0 {
		return
	}
	if n := len(j.records); n > 0 && note.Tick < j.records[n-1].note.Tick {
		j.recordDropLocked(MetricStaleNote)
		return
	}

	now := time.Now()
	j.records = append(j.records, record{note: note, recordedAt: now})

	if j.maxAge > 0 {
		cutoff := now.Add(-j.maxAge)
		idx := 0
		for idx < len(j.records) && j.records[idx].recordedAt.Before(cutoff) {
			idx++
		}
		if idx > 0 {
			for i := 0; i < idx; i++ {
				j.recordDropLocked(MetricEvictedAge)
			}
			copy(j.records, j.records[idx:])
			j.records = j.records[:len(j.records)-idx]
		}
	}

	if overflow := len(j.records) - j.maxNotes; overflow > 0 {
		for i := 0; i < overflow; i++ {
			j.recordDropLocked(MetricEvictedCount)
		}
		copy(j.records, j.records[overflow:])
		j.records = j.records[:len(j.records)-overflow]
	}
}

// Recent returns a copy of the retained notes, oldest first.
func (j *Journal) Recent() []spell.Note {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.records) == 0 {
		return nil
	}
	notes := make([]spell.Note, len(j.records))
	for i, r := range j.records {
		notes[i] = r.note
	}
	return notes
}

// ByTick looks up the retained note for a tick. Newest records are checked
// first since inspection usually chases the present.
func (j *Journal) ByTick(tick uint64) (spell.Note, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	for i := len(j.records) - 1; i >= 0; i-- {
		if j.records[i].note.Tick == tick {
			return j.records[i].note, true
		}
	}
	return spell.Note{}, false
}

// Window reports the retained note count and its tick bounds.
func (j *Journal) Window() (int, uint64, uint64) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	size := len(j.records)
	if size == 0 {
		return 0, 0, 0
	}
	return size, j.records[0].note.Tick, j.records[size-1].note.Tick
}

func (j *Journal) recordDropLocked(metric string) {
	if j.telemetry == nil {
		return
	}
	j.telemetry.RecordJournalDrop(metric)
}
