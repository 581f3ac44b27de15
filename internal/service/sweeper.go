package service

import (
	"sync"
	"time"

	"parkbay/config"
	"parkbay/internal/repository"
	"parkbay/internal/ws"

	"go.uber.org/zap"
)

// Sweeper runs two background jobs: completing reservations whose end time
// has passed, and purging soft-deleted rows past the retention window.
type Sweeper struct {
	store *repository.Store
	hub   *ws.Hub
	log   *zap.Logger
	cfg   *config.SweeperConfig
	now   func() time.Time

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewSweeper(store *repository.Store, hub *ws.Hub, cfg *config.SweeperConfig, log *zap.Logger) *Sweeper {
	return &Sweeper{
		store: store,
		hub:   hub,
		log:   log,
		cfg:   cfg,
		now:   time.Now,
	}
}

func (s *Sweeper) Start() {
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.run()
	s.log.Info("sweeper started",
		zap.Duration("sweep_interval", s.cfg.SweepInterval),
		zap.Duration("purge_interval", s.cfg.PurgeInterval))
}

// Stop blocks until the in-flight tick, if any, finishes.
func (s *Sweeper) Stop() {
	close(s.stop)
	s.wg.Wait()
	s.log.Info("sweeper stopped")
}

func (s *Sweeper) run() {
	defer s.wg.Done()
	sweep := time.NewTicker(s.cfg.SweepInterval)
	purge := time.NewTicker(s.cfg.PurgeInterval)
	defer sweep.Stop()
	defer purge.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-sweep.C:
			if err := s.Sweep(); err != nil {
				s.log.Warn("sweep failed, will retry next tick", zap.Error(err))
			}
		case <-purge.C:
			if err := s.Purge(); err != nil {
				s.log.Warn("purge failed, will retry next tick", zap.Error(err))
			}
		}
	}
}

// Sweep completes every reservation whose end time has passed and refreshes
// the availability flag of each bay it touched.
func (s *Sweeper) Sweep() error {
	now := s.now()
	type bayChange struct {
		bayID     uint
		carparkID uint
		available bool
	}
	var (
		changes   []bayChange
		completed int
	)
	err := s.store.Transaction(func(tx *repository.Store) error {
		expired, err := tx.Reservations.FindExpired(now)
		if err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}
		ids := make([]uint, 0, len(expired))
		bays := make(map[uint]uint, len(expired))
		for _, r := range expired {
			ids = append(ids, r.ID)
			bays[r.BayID] = r.CarParkID
		}
		if err := tx.Reservations.MarkCompleted(ids); err != nil {
			return err
		}
		for bayID, carparkID := range bays {
			active, err := tx.Reservations.CountActive(bayID, now)
			if err != nil {
				return err
			}
			avail := active == 0
			if err := tx.Bays.SetAvailability(bayID, avail); err != nil {
				return err
			}
			changes = append(changes, bayChange{bayID: bayID, carparkID: carparkID, available: avail})
		}
		completed = len(ids)
		return nil
	})
	if err != nil {
		return err
	}
	if completed > 0 {
		s.log.Info("completed expired reservations", zap.Int("count", completed))
	}
	if s.hub != nil {
		for _, ch := range changes {
			s.hub.BayChanged(ch.bayID, ch.carparkID, ch.available)
		}
	}
	return nil
}

// Purge hard-deletes soft-deleted users and car parks older than the
// retention window, dependents first.
func (s *Sweeper) Purge() error {
	cutoff := s.now().Add(-s.cfg.PurgeRetention)
	var parks, users int64
	err := s.store.Transaction(func(tx *repository.Store) error {
		var err error
		if parks, err = tx.Maintenance.PurgeCarParksDeletedBefore(cutoff); err != nil {
			return err
		}
		users, err = tx.Maintenance.PurgeUsersDeletedBefore(cutoff)
		return err
	})
	if err != nil {
		return err
	}
	if parks+users > 0 {
		s.log.Info("purged soft-deleted records",
			zap.Int64("car_parks", parks),
			zap.Int64("users", users))
	}
	return nil
}
