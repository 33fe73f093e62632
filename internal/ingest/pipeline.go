package ingest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"costablanca/server/config"
	"costablanca/server/internal/feed"
	"costablanca/server/internal/geo"
	"costablanca/server/internal/models"
	"costablanca/server/internal/normalizer"
	"costablanca/server/internal/store"
)

// Fetcher is the transport boundary; satisfied by *feed.Client.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]byte, error)
}

// Recorder persists cycle reports for observability; satisfied by
// *feedlog.Log. It is optional.
type Recorder interface {
	Record(report models.CycleReport) error
}

// Pipeline runs one fetch-decode-normalize-classify-store cycle per feed.
// A failed cycle leaves the prior generation in place.
type Pipeline struct {
	fetcher    Fetcher
	store      *store.Store
	recorder   Recorder
	logger     *logrus.Logger
	feedURLs   map[models.Partition]string
	maxRetries int
	retryDelay time.Duration
}

func NewPipeline(fetcher Fetcher, st *store.Store, recorder Recorder, cfg *config.Config, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		store:    st,
		recorder: recorder,
		logger:   logger,
		feedURLs: map[models.Partition]string{
			models.PartitionGeneral: cfg.Feeds.GeneralURL,
			models.PartitionInland:  cfg.Feeds.InlandURL,
		},
		maxRetries: cfg.Feeds.MaxRetries,
		retryDelay: time.Duration(cfg.Feeds.RetryDelaySeconds) * time.Second,
	}
}

// RunCycle refreshes one partition from its feed. The report carries every
// data-quality signal of the cycle: skips, duplicate references, and towns
// the lookup table does not know yet.
func (pl *Pipeline) RunCycle(ctx context.Context, partition models.Partition) models.CycleReport {
	report := models.CycleReport{
		Partition: partition,
		StartedAt: time.Now(),
	}

	data, err := pl.fetchWithRetry(ctx, pl.feedURLs[partition])
	if err != nil {
		return pl.finish(report, err)
	}

	records, err := feed.DecodeRecords(data)
	if err != nil {
		return pl.finish(report, err)
	}
	report.TotalRecords = len(records)

	unmatched := make(map[string]struct{})
	properties := make([]models.Property, 0, len(records))
	for _, rec := range records {
		p, err := normalizer.Normalize(rec)
		if err != nil {
			report.Skipped++
			continue
		}

		p.Region = string(config.RegionForTown(p.Town))
		if p.Region == "" && p.Town != "" {
			unmatched[p.Town] = struct{}{}
		}

		if p.Latitude != nil && p.Longitude != nil && !geo.InServiceArea(*p.Latitude, *p.Longitude) {
			p.Latitude, p.Longitude = nil, nil
		}

		properties = append(properties, *p)
	}

	result := pl.store.Refresh(partition, properties)
	report.Stored = result.Stored
	report.Duplicates = result.Duplicates
	report.UnmatchedTowns = sortedKeys(unmatched)

	return pl.finish(report, nil)
}

// RefreshAll runs both feed cycles concurrently; they share no mutable
// state until each calls Refresh on its own partition.
func (pl *Pipeline) RefreshAll(ctx context.Context) []models.CycleReport {
	partitions := []models.Partition{models.PartitionGeneral, models.PartitionInland}
	reports := make([]models.CycleReport, len(partitions))

	var wg sync.WaitGroup
	for i, partition := range partitions {
		wg.Add(1)
		go func(i int, partition models.Partition) {
			defer wg.Done()
			reports[i] = pl.RunCycle(ctx, partition)
		}(i, partition)
	}
	wg.Wait()

	return reports
}

// fetchWithRetry wraps the single-shot client with the cycle's retry
// policy.
func (pl *Pipeline) fetchWithRetry(ctx context.Context, feedURL string) ([]byte, error) {
	var err error
	for attempt := 0; attempt <= pl.maxRetries; attempt++ {
		if attempt > 0 {
			pl.logger.Infof("Retrying feed fetch, attempt %d of %d", attempt, pl.maxRetries)
			select {
			case <-time.After(pl.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var data []byte
		data, err = pl.fetcher.Fetch(ctx, feedURL)
		if err == nil {
			return data, nil
		}
	}
	return nil, err
}

func (pl *Pipeline) finish(report models.CycleReport, err error) models.CycleReport {
	report.Err = err
	report.Duration = time.Since(report.StartedAt)

	fields := logrus.Fields{
		"partition":       report.Partition,
		"total_records":   report.TotalRecords,
		"stored":          report.Stored,
		"skipped":         report.Skipped,
		"duplicates":      len(report.Duplicates),
		"unmatched_towns": len(report.UnmatchedTowns),
		"duration":        report.Duration.String(),
	}
	if err != nil {
		pl.logger.WithError(err).WithFields(fields).Error("Feed cycle failed; previous generation remains servable")
	} else {
		pl.logger.WithFields(fields).Info("Feed cycle completed")
		if len(report.UnmatchedTowns) > 0 {
			pl.logger.WithField("towns", report.UnmatchedTowns).Warn("Towns missing from the region lookup table")
		}
		if len(report.Duplicates) > 0 {
			pl.logger.WithField("references", report.Duplicates).Warn("Duplicate references collapsed last-write-wins")
		}
	}

	if pl.recorder != nil {
		if recordErr := pl.recorder.Record(report); recordErr != nil {
			pl.logger.WithError(recordErr).Error("Failed to record feed cycle")
		}
	}
	return report
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
