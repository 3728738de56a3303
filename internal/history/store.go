package history

import (
	"os"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/evolveapp/statusprobe/internal/errkind"
	"github.com/evolveapp/statusprobe/internal/fsutil"
)

// Store reads and writes the history file.
//
// The file is a shared resource without locking; the scheduler is expected
// to keep runs from overlapping. Concurrent runs can lose updates on the
// load-modify-save cycle.
type Store struct {
	path   string
	logger *zap.Logger
}

func NewStore(path string, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Store{path: path, logger: logger}
}

// Path returns path to the history file.
func (s Store) Path() string {
	return s.path
}

// Load reads the persisted History. A missing or unreadable or corrupt
// file yields an empty History; nothing here ever fails the run.
func (s Store) Load() History {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read history, starting empty",
				zap.String("path", s.path),
				zap.Error(err))
		}
		return New()
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		s.logger.Warn("history file is corrupt, starting empty",
			zap.String("path", s.path),
			zap.Error(err))
		return New()
	}

	if h.Checks == nil {
		h.Checks = []Record{}
	}
	if h.DailySummary == nil {
		h.DailySummary = DailySummary{}
	}

	return h
}

// Save persists the full History, replacing the previous content.
// Unlike Load, a failure here propagates; a run that cannot record its
// own result has failed.
func (s Store) Save(h History) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return errkind.New(errkind.IO, err, "failed to encode history")
	}

	if err := fsutil.WriteFile(s.path, data); err != nil {
		return errkind.New(errkind.IO, err, "failed to write history")
	}

	return nil
}
