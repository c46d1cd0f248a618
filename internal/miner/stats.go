package miner

import (
	"time"

	"github.com/mvp-joe/docvault/internal/storage"
)

// Stats tracks what one mining run did.
type Stats struct {
	RunID          string
	FilesSeen      int
	FilesMined     int
	FilesUnchanged int
	FilesRemoved   int
	ParseErrors    int
	ReadErrors     int
	Functions      int
	Classes        int
	Lines          int
	CacheHits      int
	// Skips counts elements that produced no record, by reason.
	Skips    map[string]int
	Duration time.Duration
}

func newStats(runID string) *Stats {
	return &Stats{RunID: runID, Skips: map[string]int{}}
}

// Records is the number of function and class records produced.
func (s *Stats) Records() int {
	return s.Functions + s.Classes
}

func (s *Stats) addSkips(skips map[string]int) {
	for reason, n := range skips {
		s.Skips[reason] += n
	}
}

// toRun converts the stats into the vault's run row.
func (s *Stats) toRun(rootDir string, started time.Time) *storage.Run {
	return &storage.Run{
		ID:           s.RunID,
		RootDir:      rootDir,
		StartedAt:    started,
		FinishedAt:   started.Add(s.Duration),
		FilesSeen:    s.FilesSeen,
		FilesMined:   s.FilesMined,
		FilesSkipped: s.FilesUnchanged + s.ReadErrors,
		ParseErrors:  s.ParseErrors,
		Records:      s.Records(),
		LineRecords:  s.Lines,
		Skips:        s.Skips,
	}
}
