package scheduler

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"costablanca/server/internal/models"
)

// Runner refreshes every feed partition; satisfied by *ingest.Pipeline.
type Runner interface {
	RefreshAll(ctx context.Context) []models.CycleReport
}

// Scheduler re-fetches the feeds on a fixed interval so generations stay
// warm without read traffic. The read path still revalidates on its own;
// the scheduler only keeps the worst-case staleness bounded.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *logrus.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
	jobMutex sync.Mutex // Ensures sequential refresh runs
}

func New(runner Runner, interval time.Duration, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start launches the refresh loop. The first run happens immediately so the
// server comes up with warm generations instead of waiting for the first
// request.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	s.logger.Info("Running startup feed refresh")
	s.refreshAll()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.refreshAll()
		}
	}
}

// refreshAll runs one full refresh. The job mutex keeps a slow run from
// overlapping the next tick.
func (s *Scheduler) refreshAll() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	reports := s.runner.RefreshAll(context.Background())
	for _, report := range reports {
		fields := logrus.Fields{
			"partition": report.Partition,
			"stored":    report.Stored,
			"duration":  report.Duration.String(),
		}
		if report.Err != nil {
			s.logger.WithError(report.Err).WithFields(fields).Error("Scheduled feed refresh failed")
		} else {
			s.logger.WithFields(fields).Info("Scheduled feed refresh completed")
		}
	}
}

// Stop gracefully stops the scheduler, waiting for an in-flight run.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
