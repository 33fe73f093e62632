package feedlog

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"costablanca/server/internal/models"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	l, err := Open(filepath.Join(t.TempDir(), "feedlog.db"), logger)
	assert.NoError(t, err)
	return l
}

func TestLog_RecordAndRecentCycles(t *testing.T) {
	l := openTestLog(t)

	err := l.Record(models.CycleReport{
		Partition:      models.PartitionGeneral,
		StartedAt:      time.Now().Add(-time.Minute),
		Duration:       1200 * time.Millisecond,
		TotalRecords:   40,
		Stored:         38,
		Skipped:        1,
		Duplicates:     []string{"A1"},
		UnmatchedTowns: []string{"Unknownville", "Newtown"},
	})
	assert.NoError(t, err)

	err = l.Record(models.CycleReport{
		Partition: models.PartitionInland,
		StartedAt: time.Now(),
		Err:       errors.New("gateway timeout"),
	})
	assert.NoError(t, err)

	cycles, err := l.RecentCycles(10)
	assert.NoError(t, err)
	assert.Len(t, cycles, 2)

	// Newest first
	assert.Equal(t, string(models.PartitionInland), cycles[0].Partition)
	assert.Equal(t, StatusFailed, cycles[0].Status)
	assert.Equal(t, "gateway timeout", cycles[0].Error)

	assert.Equal(t, StatusOK, cycles[1].Status)
	assert.Equal(t, 40, cycles[1].TotalRecords)
	assert.Equal(t, 38, cycles[1].Stored)
	assert.Equal(t, 1, cycles[1].DuplicateCount)
	assert.Equal(t, int64(1200), cycles[1].DurationMs)
	assert.Equal(t, `["Unknownville","Newtown"]`, cycles[1].UnmatchedTowns)
}

func TestLog_RecentCyclesDefaultLimit(t *testing.T) {
	l := openTestLog(t)

	for i := 0; i < 25; i++ {
		assert.NoError(t, l.Record(models.CycleReport{
			Partition: models.PartitionGeneral,
			StartedAt: time.Now(),
		}))
	}

	cycles, err := l.RecentCycles(0)
	assert.NoError(t, err)
	assert.Len(t, cycles, 20)

	cycles, err = l.RecentCycles(5)
	assert.NoError(t, err)
	assert.Len(t, cycles, 5)
}

func TestLog_UnmatchedTowns(t *testing.T) {
	l := openTestLog(t)

	assert.NoError(t, l.Record(models.CycleReport{
		Partition:      models.PartitionGeneral,
		UnmatchedTowns: []string{"Unknownville", "Newtown"},
	}))
	assert.NoError(t, l.Record(models.CycleReport{
		Partition: models.PartitionGeneral,
	}))
	assert.NoError(t, l.Record(models.CycleReport{
		Partition:      models.PartitionInland,
		UnmatchedTowns: []string{"Newtown", "Otherville"},
	}))

	towns, err := l.UnmatchedTowns()
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"Unknownville", "Newtown", "Otherville"}, towns)
}

func TestLog_UnmatchedTownsWithCommas(t *testing.T) {
	l := openTestLog(t)

	// Some feeds write "town, province" into the town field
	assert.NoError(t, l.Record(models.CycleReport{
		Partition:      models.PartitionGeneral,
		UnmatchedTowns: []string{"Elche, Alicante", "Unknownville"},
	}))

	towns, err := l.UnmatchedTowns()
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"Elche, Alicante", "Unknownville"}, towns)
}

func TestLog_UnmatchedTownsEmpty(t *testing.T) {
	l := openTestLog(t)

	assert.NoError(t, l.Record(models.CycleReport{Partition: models.PartitionGeneral}))

	towns, err := l.UnmatchedTowns()
	assert.NoError(t, err)
	assert.Empty(t, towns)
}
