package automation

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/prxgyz/internal/errors"
	"codeberg.org/mutker/prxgyz/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db            *sql.DB
	logger        logger.Logger
	cfg           Config
	mu            sync.Mutex
	buffer        []*Lane
	flushTicker   *time.Ticker
	flushReqChan  chan struct{}
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
	closeOnce     sync.Once
}

func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	dsn := cfg.DBPath + "?_journal=WAL&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}
	// One writer; sqlite serializes anyway and this keeps WAL checkpoints simple.
	db.SetMaxOpenConns(1)

	if err := ValidateAndUpdateSchema(db, cfg.DBPath, log); err != nil {
		db.Close()
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "schema_version",
			Error: err.Error(),
		})
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Int("batch_size", cfg.BatchSize).
		Dur("batch_timeout", cfg.BatchTimeout).
		Msg("Automation repository initialized")

	repo := &repository{
		db:            db,
		logger:        log,
		cfg:           cfg,
		buffer:        make([]*Lane, 0, max(cfg.BatchSize, 1)),
		flushReqChan:  make(chan struct{}, 1),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}

	// Full batches are written by the flusher; the ticker adds a periodic
	// flush for partial ones.
	if cfg.BatchTimeout > 0 {
		repo.flushTicker = time.NewTicker(cfg.BatchTimeout)
	}
	go repo.flusher()

	return repo, nil
}

// Record buffers lane and returns without touching the database. A full
// batch wakes the flusher goroutine.
func (r *repository) Record(_ context.Context, lane *Lane) error {
	r.mu.Lock()
	r.buffer = append(r.buffer, lane)
	full := len(r.buffer) >= max(r.cfg.BatchSize, 1)
	r.mu.Unlock()

	if full {
		select {
		case r.flushReqChan <- struct{}{}:
		default: // a flush is already pending
		}
	}
	return nil
}

func (r *repository) Lanes(ctx context.Context, handle string) ([]Lane, error) {
	errFactory := errors.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Pending lanes are written first so readers see everything recorded.
	if err := r.flush(ctx); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, selectGesturesSQL, handle)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	type gestureRow struct {
		id           int64
		began, ended int64
	}
	var found []gestureRow
	for rows.Next() {
		var g gestureRow
		if err := rows.Scan(&g.id, &g.began, &g.ended); err != nil {
			rows.Close()
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		found = append(found, g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	rows.Close()

	lanes := make([]Lane, 0, len(found))
	for _, g := range found {
		points, err := r.points(ctx, g.id)
		if err != nil {
			return nil, err
		}
		lanes = append(lanes, Lane{
			Handle: handle,
			Began:  time.Unix(0, g.began),
			Ended:  time.Unix(0, g.ended),
			Points: points,
		})
	}

	return lanes, nil
}

func (r *repository) points(ctx context.Context, gestureID int64) ([]Point, error) {
	errFactory := errors.New()

	rows, err := r.db.QueryContext(ctx, selectPointsSQL, gestureID)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var at int64
		var value float64
		if err := rows.Scan(&at, &value); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		points = append(points, Point{At: time.Unix(0, at), Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	return points, nil
}

func (r *repository) Close() error {
	var closeErr error
	r.closeOnce.Do(func() {
		closeErr = r.close()
	})
	return closeErr
}

func (r *repository) close() error {
	errFactory := errors.New()

	// Signal the flusher goroutine to stop and wait for its final flush
	close(r.shutdownChan)
	if r.flushTicker != nil {
		r.flushTicker.Stop()
	}
	<-r.flushDoneChan

	r.mu.Lock()
	flushErr := r.flush(context.Background())
	r.mu.Unlock()
	if flushErr != nil {
		r.logger.Error().Err(flushErr).Msg("Failed to flush pending lanes on close")
	}

	// Checkpoint WAL and cleanup on close
	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		r.db.Close()
		return errFactory.WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "checkpoint_wal",
			Error: err.Error(),
		})
	}

	if err := r.db.Close(); err != nil {
		return errFactory.WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "close_database",
			Error: err.Error(),
		})
	}

	r.logger.Info().Msg("Automation repository closed gracefully")

	return flushErr
}

func (r *repository) flusher() {
	defer close(r.flushDoneChan)

	var tick <-chan time.Time
	if r.flushTicker != nil {
		tick = r.flushTicker.C
	}

	for {
		select {
		case <-r.flushReqChan:
			r.flushLocked("Batch flush failed")
		case <-tick:
			r.flushLocked("Periodic flush failed")
		case <-r.shutdownChan:
			return
		}
	}
}

func (r *repository) flushLocked(failure string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.flush(context.Background()); err != nil {
		r.logger.Error().Err(err).Msg(failure)
	}
}

// flush writes the buffer in one transaction. Callers hold r.mu. On failure
// the buffer is kept for the next attempt.
func (r *repository) flush(ctx context.Context) error {
	if len(r.buffer) == 0 {
		return nil
	}

	errFactory := errors.New()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	if err := r.insertLanes(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error().Err(rbErr).Msg("Failed to roll back transaction")
		}
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	r.logger.Debug().Int("lanes", len(r.buffer)).Msg("Flushed automation lanes to database")
	r.buffer = r.buffer[:0]

	return nil
}

func (r *repository) insertLanes(ctx context.Context, tx *sql.Tx) error {
	gestureStmt, err := tx.PrepareContext(ctx, insertGestureSQL)
	if err != nil {
		return err
	}
	defer gestureStmt.Close()

	pointStmt, err := tx.PrepareContext(ctx, insertPointSQL)
	if err != nil {
		return err
	}
	defer pointStmt.Close()

	for _, lane := range r.buffer {
		res, err := gestureStmt.ExecContext(ctx,
			lane.Handle,
			lane.Began.UnixNano(),
			lane.Ended.UnixNano(),
			len(lane.Points),
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		for seq, p := range lane.Points {
			if _, err := pointStmt.ExecContext(ctx, id, seq, p.At.UnixNano(), p.Value); err != nil {
				return err
			}
		}
	}

	return nil
}
