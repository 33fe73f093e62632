package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"costablanca/server/config"
	"costablanca/server/internal/models"
	"costablanca/server/internal/store"
)

// Refresher runs one feed cycle; satisfied by *ingest.Pipeline.
type Refresher interface {
	RunCycle(ctx context.Context, partition models.Partition) models.CycleReport
}

// Catalog is the only read surface other components use. It layers the
// time-to-live policy on top of the store: data older than the revalidate
// interval triggers a refresh, stale data keeps serving while one runs, and
// at most one refresh per partition is in flight.
type Catalog struct {
	store     *store.Store
	refresher Refresher
	ttl       time.Duration
	logger    *logrus.Logger

	mu       sync.Mutex
	inflight map[models.Partition]bool
}

func New(st *store.Store, refresher Refresher, ttl time.Duration, logger *logrus.Logger) *Catalog {
	return &Catalog{
		store:     st,
		refresher: refresher,
		ttl:       ttl,
		logger:    logger,
		inflight:  make(map[models.Partition]bool),
	}
}

// NewBuilds returns the current generation of new-build properties from the
// general feed. Never an error: with no successful cycle ever, the result
// is empty — a page with zero listings beats a crashed build.
func (c *Catalog) NewBuilds(ctx context.Context) []models.Property {
	c.ensureFresh(ctx, models.PartitionGeneral)

	all := c.store.All(models.PartitionGeneral)
	out := make([]models.Property, 0, len(all))
	for _, p := range all {
		if p.NewBuild {
			out = append(out, p)
		}
	}
	return out
}

// InlandProperties returns properties from the inland feed whose region is
// one of the inland identifiers.
func (c *Catalog) InlandProperties(ctx context.Context) []models.Property {
	c.ensureFresh(ctx, models.PartitionInland)

	all := c.store.All(models.PartitionInland)
	out := make([]models.Property, 0, len(all))
	for _, p := range all {
		if p.Region != "" && config.IsInlandRegion(config.RegionKey(p.Region)) {
			out = append(out, p)
		}
	}
	return out
}

// PropertyByReference resolves a single listing for detail pages.
func (c *Catalog) PropertyByReference(ctx context.Context, ref string) (models.Property, bool) {
	c.ensureFresh(ctx, models.PartitionGeneral)
	c.ensureFresh(ctx, models.PartitionInland)
	return c.store.ByReference(ref)
}

// References enumerates every reference across both partitions, for
// static-path generation. General feed first, feed order preserved.
func (c *Catalog) References(ctx context.Context) []string {
	c.ensureFresh(ctx, models.PartitionGeneral)
	c.ensureFresh(ctx, models.PartitionInland)

	var refs []string
	seen := make(map[string]struct{})
	for _, partition := range []models.Partition{models.PartitionGeneral, models.PartitionInland} {
		for _, p := range c.store.All(partition) {
			if _, ok := seen[p.Reference]; ok {
				continue
			}
			seen[p.Reference] = struct{}{}
			refs = append(refs, p.Reference)
		}
	}
	return refs
}

// LastRefreshed exposes the store timestamp for status reporting.
func (c *Catalog) LastRefreshed(partition models.Partition) (time.Time, bool) {
	return c.store.LastRefreshed(partition)
}

// ensureFresh applies the revalidation policy for one partition. The first
// load blocks (there is nothing to serve yet); after that a stale
// generation keeps serving while the refresh runs in the background.
// Callers arriving mid-refresh get the previous generation instead of
// queueing behind a slow upstream.
func (c *Catalog) ensureFresh(ctx context.Context, partition models.Partition) {
	age, loaded := c.store.Age(partition)
	if loaded && age < c.ttl {
		return
	}

	c.mu.Lock()
	if c.inflight[partition] {
		c.mu.Unlock()
		return
	}
	c.inflight[partition] = true
	c.mu.Unlock()

	run := func(ctx context.Context) {
		defer func() {
			c.mu.Lock()
			delete(c.inflight, partition)
			c.mu.Unlock()
		}()
		c.refresher.RunCycle(ctx, partition)
	}

	if !loaded {
		run(ctx)
		return
	}

	c.logger.WithField("partition", partition).Debug("Generation stale, revalidating in background")
	go run(context.Background())
}
