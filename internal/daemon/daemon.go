package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"karaoke/internal/api"
	"karaoke/internal/catalog"
	"karaoke/internal/config"
	"karaoke/internal/logging"
	"karaoke/internal/notifications"
	"karaoke/internal/queue"
	"karaoke/internal/storage"
)

// Services are the components the daemon serves. DB is nil for the memory
// storage driver.
type Services struct {
	Engine   *queue.Engine
	Catalog  *catalog.Service
	Notifier *notifications.Service
	DB       *storage.DB
}

// Daemon serves the API and runs queue maintenance, enforcing
// single-instance execution per data directory.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	services Services

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time

	mu        sync.Mutex
	addr      string
	ready     chan struct{}
	readyOnce sync.Once
}

// New constructs a daemon. Nothing is started until Run.
func New(cfg *config.Config, services Services, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || services.Engine == nil || services.Catalog == nil {
		return nil, errors.New("daemon requires config, queue engine, and catalog")
	}
	lockPath := filepath.Join(cfg.Paths.DataDir, "karaoked.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		services: services,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		ready:    make(chan struct{}),
	}, nil
}

// Run acquires the instance lock, serves the API and runs the maintenance
// loop until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("daemon already running")
	}
	defer d.running.Store(false)

	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another karaoked instance holds %s", d.lockPath)
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(err))
		}
	}()

	handler, err := d.Handler()
	if err != nil {
		return err
	}
	srv, err := listen(d.cfg.Paths.APIBind, handler)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.addr = srv.addr()
	d.startedAt = time.Now()
	d.mu.Unlock()
	d.readyOnce.Do(func() { close(d.ready) })

	d.logger.Info("karaoke daemon started",
		logging.String("address", srv.addr()),
		logging.String("lock", d.lockPath),
		logging.String("storage", d.cfg.Storage.Driver),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return srv.serve(groupCtx) })
	group.Go(func() error { return d.maintain(groupCtx) })
	err = group.Wait()

	d.logger.Info("karaoke daemon stopped")
	return err
}

// Handler builds the HTTP API for this daemon's services.
func (d *Daemon) Handler() (http.Handler, error) {
	var hub *notifications.Hub
	if d.services.Notifier != nil {
		hub = d.services.Notifier.Hub()
	}
	return NewHandler(HandlerConfig{
		Engine:           d.services.Engine,
		Catalog:          d.services.Catalog,
		Hub:              hub,
		Status:           d.Status,
		Token:            d.cfg.Paths.APIToken,
		OperationTimeout: d.cfg.OperationTimeout(),
		DefaultLimit:     d.cfg.Queue.DefaultLimit,
		Logger:           d.logger,
	})
}

// Ready is closed once the API listener is bound.
func (d *Daemon) Ready() <-chan struct{} { return d.ready }

// Addr returns the bound API address, empty before Ready.
func (d *Daemon) Addr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addr
}

func (d *Daemon) maintain(ctx context.Context) error {
	interval := d.cfg.MaintenanceInterval()
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := d.CompactQueues(ctx); err != nil && ctx.Err() == nil {
				d.logger.Warn("queue maintenance failed", logging.Error(err))
			}
		}
	}
}

// CompactQueues renumbers every queue whose positions have crowded below the
// renumber gap and reports how many were rewritten.
func (d *Daemon) CompactQueues(ctx context.Context) (int, error) {
	summaries, err := d.services.Engine.Queues(ctx)
	if err != nil {
		return 0, err
	}
	var (
		compacted int
		errs      []error
	)
	for _, summary := range summaries {
		renumbered, err := d.services.Engine.Compact(ctx, summary.QueueID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if renumbered {
			compacted++
			d.logger.Info("queue compacted", logging.QueueID(summary.QueueID), logging.Int("items", summary.Items))
		}
	}
	return compacted, errors.Join(errs...)
}

// Status reports runtime information for GET /api/status.
func (d *Daemon) Status(ctx context.Context) (api.DaemonStatus, error) {
	summaries, err := d.services.Engine.Queues(ctx)
	if err != nil {
		return api.DaemonStatus{}, err
	}
	songs, err := d.services.Catalog.Count(ctx)
	if err != nil {
		return api.DaemonStatus{}, err
	}

	d.mu.Lock()
	startedAt := d.startedAt
	d.mu.Unlock()

	status := api.DaemonStatus{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		StorageDriver: d.cfg.Storage.Driver,
		LockFilePath:  d.lockPath,
		DataDir:       d.cfg.Paths.DataDir,
		Songs:         songs,
		Queues:        api.FromSummaries(summaries),
	}
	if !startedAt.IsZero() {
		status.StartedAt = startedAt.UTC().Format(time.RFC3339)
	}
	if d.services.DB != nil {
		status.DatabasePath = d.services.DB.Path()
	}
	if d.services.Notifier != nil {
		status.Subscribers = d.services.Notifier.Hub().Subscribers()
	}
	if free, total, err := diskUsage(d.cfg.Paths.DataDir); err == nil {
		status.DiskFreeBytes, status.DiskTotalBytes = free, total
	} else {
		logging.WithContext(ctx, d.logger).Debug("disk usage unavailable", logging.Error(err))
	}
	return status, nil
}
