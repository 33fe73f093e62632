package feedlog

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"costablanca/server/internal/models"
)

// FeedCycle is the persisted form of one fetch-and-parse cycle. Only
// diagnostics are persisted: the property cache itself lives in memory and
// is rebuilt from the feed.
type FeedCycle struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Partition      string    `json:"partition"`
	StartedAt      time.Time `json:"started_at"`
	DurationMs     int64     `json:"duration_ms"`
	Status         string    `json:"status"`
	TotalRecords   int       `json:"total_records"`
	Stored         int       `json:"stored"`
	Skipped        int       `json:"skipped"`
	DuplicateCount int       `json:"duplicate_count"`
	UnmatchedTowns string    `json:"unmatched_towns"`
	Error          string    `json:"error,omitempty"`
}

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Log records feed cycles in sqlite so data-quality regressions in the
// upstream feed stay visible across restarts.
type Log struct {
	db  *gorm.DB
	log *logrus.Logger
}

func Open(path string, log *logrus.Logger) (*Log, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&FeedCycle{}); err != nil {
		return nil, err
	}
	return &Log{db: db, log: log}, nil
}

// Record persists one cycle report.
func (l *Log) Record(report models.CycleReport) error {
	cycle := FeedCycle{
		Partition:      string(report.Partition),
		StartedAt:      report.StartedAt,
		DurationMs:     report.Duration.Milliseconds(),
		Status:         StatusOK,
		TotalRecords:   report.TotalRecords,
		Stored:         report.Stored,
		Skipped:        report.Skipped,
		DuplicateCount: len(report.Duplicates),
		UnmatchedTowns: encodeTowns(report.UnmatchedTowns),
	}
	if report.Err != nil {
		cycle.Status = StatusFailed
		cycle.Error = report.Err.Error()
	}
	return l.db.Create(&cycle).Error
}

// RecentCycles returns the most recent cycles, newest first.
func (l *Log) RecentCycles(limit int) ([]FeedCycle, error) {
	if limit <= 0 {
		limit = 20
	}
	var cycles []FeedCycle
	err := l.db.Order("id DESC").Limit(limit).Find(&cycles).Error
	return cycles, err
}

// UnmatchedTowns returns the distinct towns reported unclassified by recent
// cycles, so the lookup table can be extended.
func (l *Log) UnmatchedTowns() ([]string, error) {
	var cycles []FeedCycle
	err := l.db.Where("unmatched_towns <> ''").Order("id DESC").Limit(50).Find(&cycles).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var towns []string
	for _, cycle := range cycles {
		for _, town := range decodeTowns(cycle.UnmatchedTowns) {
			if town == "" {
				continue
			}
			if _, ok := seen[town]; ok {
				continue
			}
			seen[town] = struct{}{}
			towns = append(towns, town)
		}
	}
	return towns, nil
}

// encodeTowns stores the list as JSON so town names survive round-tripping
// unchanged whatever characters they contain. An empty list stays an empty
// string so queries can filter on it directly.
func encodeTowns(towns []string) string {
	if len(towns) == 0 {
		return ""
	}
	data, err := json.Marshal(towns)
	if err != nil {
		return ""
	}
	return string(data)
}

func decodeTowns(encoded string) []string {
	if encoded == "" {
		return nil
	}
	var towns []string
	if err := json.Unmarshal([]byte(encoded), &towns); err != nil {
		return nil
	}
	return towns
}
