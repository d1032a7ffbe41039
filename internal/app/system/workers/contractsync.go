// internal/app/system/workers/contractsync.go
package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	contractstore "github.com/vendaops/contratohub/internal/app/store/contracts"
	goalstore "github.com/vendaops/contratohub/internal/app/store/goals"
	userstore "github.com/vendaops/contratohub/internal/app/store/users"
	"github.com/vendaops/contratohub/internal/app/system/auditlog"
	"github.com/vendaops/contratohub/internal/app/system/crm"
	"github.com/vendaops/contratohub/internal/domain/models"
	"go.uber.org/zap"
)

// ErrSyncRunning is returned by RunNow when a run is already in flight.
var ErrSyncRunning = errors.New("a sync run is already in progress")

// SyncResult summarizes one synchronization run.
type SyncResult struct {
	RunID   string    `json:"run_id"`
	Source  string    `json:"source"`
	Fetched int       `json:"fetched"`
	Created int       `json:"created"`
	Updated int       `json:"updated"`
	Skipped int       `json:"skipped"`
	Took    string    `json:"took"`
	At      time.Time `json:"at"`
}

// ContractSync is a background worker that pulls contracts from the CRM
// feeds, upserts them, and advances the owners' goal progress.
type ContractSync struct {
	sources   []crm.Source
	users     *userstore.Store
	contracts *contractstore.Store
	goals     *goalstore.Store
	audit     *auditlog.Logger
	log       *zap.Logger
	interval  time.Duration

	mu        sync.Mutex
	running   bool
	lastRun   time.Time
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewContractSync creates a contract sync worker. interval is how often
// the automatic pull runs; manual runs go through RunNow.
func NewContractSync(
	sources []crm.Source,
	users *userstore.Store,
	contracts *contractstore.Store,
	goals *goalstore.Store,
	audit *auditlog.Logger,
	logger *zap.Logger,
	interval time.Duration,
) *ContractSync {
	return &ContractSync{
		sources:   sources,
		users:     users,
		contracts: contracts,
		goals:     goals,
		audit:     audit,
		log:       logger,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background pull loop.
func (w *ContractSync) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("contract sync worker started",
		zap.Duration("interval", w.interval),
		zap.Int("sources", len(w.sources)))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *ContractSync) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("contract sync worker stopped")
}

func (w *ContractSync) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			for _, src := range w.sources {
				if _, err := w.RunNow(ctx, src.Name()); err != nil && !errors.Is(err, ErrSyncRunning) {
					w.log.Error("scheduled sync failed",
						zap.String("source", src.Name()),
						zap.Error(err))
				}
			}
			cancel()
		}
	}
}

func (w *ContractSync) source(name string) crm.Source {
	for _, s := range w.sources {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// RunNow performs one synchronous pull from the named source. Only one
// run may be in flight at a time across all sources.
func (w *ContractSync) RunNow(ctx context.Context, sourceName string) (SyncResult, error) {
	src := w.source(sourceName)
	if src == nil {
		return SyncResult{}, errors.New("unknown sync source: " + sourceName)
	}

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return SyncResult{}, ErrSyncRunning
	}
	w.running = true
	since := w.lastRun
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	start := time.Now()
	res := SyncResult{
		RunID:  uuid.NewString(),
		Source: src.Name(),
		At:     start,
	}
	log := w.log.With(
		zap.String("source", res.Source),
		zap.String("run_id", res.RunID))
	w.audit.SyncStarted(ctx, res.Source, res.RunID)

	records, err := src.FetchContracts(ctx, since)
	if err != nil {
		w.audit.SyncRun(ctx, res.Source, res.RunID, 0, 0, 0, err)
		return res, err
	}
	res.Fetched = len(records)

	for _, rec := range records {
		switch w.ingest(ctx, log, rec) {
		case contractstore.UpsertCreated:
			res.Created++
		case contractstore.UpsertUpdated:
			res.Updated++
		default:
			res.Skipped++
		}
	}

	w.mu.Lock()
	w.lastRun = start
	w.mu.Unlock()

	res.Took = time.Since(start).String()
	log.Info("sync run finished",
		zap.Int("fetched", res.Fetched),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
		zap.String("took", res.Took))
	w.audit.SyncRun(ctx, res.Source, res.RunID, res.Created, res.Updated, res.Skipped, nil)
	return res, nil
}

// ingest processes one record. Unmatched owners and unknown statuses are
// skipped, never fatal: one bad record must not sink the run.
func (w *ContractSync) ingest(ctx context.Context, log *zap.Logger, rec crm.ContractRecord) contractstore.UpsertResult {
	status, ok := crm.MapStatus(rec.Status)
	if !ok {
		log.Warn("skipping record with unknown status",
			zap.String("external_id", rec.ID),
			zap.String("status", rec.Status))
		return contractstore.UpsertUnchanged
	}

	owner, err := w.users.GetByEmail(ctx, rec.OwnerEmail)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			log.Warn("skipping record with unmatched owner",
				zap.String("external_id", rec.ID),
				zap.String("owner_email", rec.OwnerEmail))
		} else {
			log.Error("owner lookup failed",
				zap.String("external_id", rec.ID),
				zap.Error(err))
		}
		return contractstore.UpsertUnchanged
	}

	c := models.Contract{
		ExternalID:  rec.ID,
		ClientName:  rec.ClientName,
		ClientCPF:   rec.ClientCPF,
		Value:       rec.Value,
		Date:        rec.Date,
		Status:      status,
		Promotora:   rec.Promotora,
		Tabela:      rec.Tabela,
		TipoEmpresa: rec.TipoEmpresa,
	}
	result, err := w.contracts.UpsertExternal(ctx, c, *owner)
	if err != nil {
		log.Error("upsert failed",
			zap.String("external_id", rec.ID),
			zap.Error(err))
		return contractstore.UpsertUnchanged
	}

	// Newly ingested active contracts advance the owner's goals for the
	// contract's period. Updates don't; a status flip on an existing
	// record would need the old value to derive a delta, and the feed
	// doesn't carry it.
	if result == contractstore.UpsertCreated && c.Active() {
		w.advanceGoals(ctx, log, *owner, c)
	}
	return result
}

func (w *ContractSync) advanceGoals(ctx context.Context, log *zap.Logger, owner models.User, c models.Contract) {
	goals, err := w.goals.ActiveForUser(ctx, owner.ID, c.Date)
	if err != nil {
		log.Error("goal lookup failed",
			zap.String("owner_email", owner.Email),
			zap.Error(err))
		return
	}
	for _, g := range goals {
		delta := 1.0
		if g.Type == models.GoalTypeValue {
			delta = c.Value
		}
		if err := w.goals.AddProgress(ctx, g.ID, delta); err != nil {
			log.Error("goal progress update failed",
				zap.String("goal_id", g.ID.Hex()),
				zap.Error(err))
		}
	}
}
