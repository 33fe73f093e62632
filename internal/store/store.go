package store

import (
	"sync"
	"time"

	"costablanca/server/internal/models"
)

// RefreshResult reports what a refresh did to the incoming set.
type RefreshResult struct {
	Stored     int
	Duplicates []string
}

// generation is one complete, internally consistent snapshot of properties
// from a single fetch cycle. It is never mutated after construction.
type generation struct {
	items       []models.Property
	byRef       map[string]int
	refreshedAt time.Time
}

// Store holds the current generation for each feed partition. Readers
// always see a whole generation: Refresh builds the new one aside and swaps
// it in under the write lock.
type Store struct {
	mu          sync.RWMutex
	generations map[models.Partition]*generation

	now func() time.Time
}

func New() *Store {
	return &Store{
		generations: make(map[models.Partition]*generation),
		now:         time.Now,
	}
}

// lookupOrder fixes which partition wins when the same reference appears in
// both feeds: the general feed is authoritative.
var lookupOrder = []models.Partition{models.PartitionGeneral, models.PartitionInland}

// Refresh replaces the partition's generation with the given set. Duplicate
// references collapse last-write-wins in feed order; the collapsed
// references come back so the cycle can log them. Calling Refresh twice
// with the same input yields the same observable state.
func (s *Store) Refresh(partition models.Partition, properties []models.Property) RefreshResult {
	gen := &generation{
		byRef:       make(map[string]int, len(properties)),
		refreshedAt: s.now(),
	}

	var duplicates []string
	for _, p := range properties {
		if idx, seen := gen.byRef[p.Reference]; seen {
			gen.items[idx] = p
			duplicates = append(duplicates, p.Reference)
			continue
		}
		gen.byRef[p.Reference] = len(gen.items)
		gen.items = append(gen.items, p)
	}

	s.mu.Lock()
	s.generations[partition] = gen
	s.mu.Unlock()

	return RefreshResult{Stored: len(gen.items), Duplicates: duplicates}
}

// All returns a copy of the partition's current generation, empty when no
// cycle has succeeded yet.
func (s *Store) All(partition models.Partition) []models.Property {
	s.mu.RLock()
	gen := s.generations[partition]
	s.mu.RUnlock()

	if gen == nil {
		return nil
	}
	out := make([]models.Property, len(gen.items))
	copy(out, gen.items)
	return out
}

// ByReference looks a property up across partitions, general feed first.
func (s *Store) ByReference(ref string) (models.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, partition := range lookupOrder {
		gen := s.generations[partition]
		if gen == nil {
			continue
		}
		if idx, ok := gen.byRef[ref]; ok {
			return gen.items[idx], true
		}
	}
	return models.Property{}, false
}

// LastRefreshed reports when the partition last completed a refresh.
func (s *Store) LastRefreshed(partition models.Partition) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gen := s.generations[partition]
	if gen == nil {
		return time.Time{}, false
	}
	return gen.refreshedAt, true
}

// Age returns how old the partition's generation is; ok is false when the
// partition has never been refreshed.
func (s *Store) Age(partition models.Partition) (time.Duration, bool) {
	refreshedAt, ok := s.LastRefreshed(partition)
	if !ok {
		return 0, false
	}
	return s.now().Sub(refreshedAt), true
}
