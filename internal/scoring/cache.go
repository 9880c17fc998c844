package scoring

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/rotor/backend/internal/contracts"
	"github.com/wonny/rotor/backend/pkg/logger"
	"github.com/wonny/rotor/backend/pkg/redis"
)

// ScoreComputer recomputes and persists a date's ranking.
type ScoreComputer interface {
	UpdateDailyScores(ctx context.Context, date time.Time) ([]contracts.SectorScore, error)
}

// RankingService is the read-through cache in front of the scorer: Redis
// first, then the score repository, then a fresh computation. A per-date
// mutex keeps concurrent callers from computing the same date twice in one
// process; across processes the repository upsert makes reruns idempotent.
type RankingService struct {
	computer ScoreComputer
	repo     contracts.ScoreRepository
	cache    *redis.Cache
	ttl      time.Duration
	logger   *logger.Logger

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

// NewRankingService creates a ranking service.
func NewRankingService(computer ScoreComputer, repo contracts.ScoreRepository, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *RankingService {
	if ttl <= 0 {
		ttl = redis.TTLLong
	}
	return &RankingService{
		computer: computer,
		repo:     repo,
		cache:    cache,
		ttl:      ttl,
		logger:   log,
		inflight: make(map[string]*sync.Mutex),
	}
}

// Rankings returns the sector ranking as of date, computing and persisting
// it when neither the cache nor the repository has it.
func (s *RankingService) Rankings(ctx context.Context, date time.Time) ([]contracts.SectorScore, error) {
	key := date.Format("2006-01-02")

	if scores, ok, err := s.lookup(ctx, key, date); err != nil {
		return nil, err
	} else if ok {
		return scores, nil
	}

	lock := s.dateLock(key)
	lock.Lock()
	defer s.releaseDateLock(key, lock)

	// Another caller may have computed while we waited.
	if scores, ok, err := s.lookup(ctx, key, date); err != nil {
		return nil, err
	} else if ok {
		return scores, nil
	}

	s.logger.WithField("date", key).Info("Computing sector rankings")
	scores, err := s.computer.UpdateDailyScores(ctx, date)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, scores)
	return scores, nil
}

// Invalidate drops the cached ranking for a date.
func (s *RankingService) Invalidate(ctx context.Context, date time.Time) error {
	return s.cache.Delete(ctx, redis.RankingsKey(date.Format("2006-01-02")))
}

func (s *RankingService) lookup(ctx context.Context, key string, date time.Time) ([]contracts.SectorScore, bool, error) {
	var cached []contracts.SectorScore
	hit, err := s.cache.Get(ctx, redis.RankingsKey(key), &cached)
	if err != nil {
		s.logger.WithError(err).Warn("Rankings cache read failed")
	} else if hit {
		return cached, true, nil
	}

	stored, err := s.repo.GetLatest(ctx, date)
	if err != nil {
		return nil, false, err
	}
	if len(stored) > 0 {
		s.store(ctx, key, stored)
		return stored, true, nil
	}
	return nil, false, nil
}

func (s *RankingService) store(ctx context.Context, key string, scores []contracts.SectorScore) {
	if err := s.cache.Set(ctx, redis.RankingsKey(key), scores, s.ttl); err != nil {
		s.logger.WithError(err).Warn("Rankings cache write failed")
	}
}

func (s *RankingService) dateLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.inflight[key]
	if !ok {
		lock = &sync.Mutex{}
		s.inflight[key] = lock
	}
	return lock
}

// releaseDateLock unlocks and prunes the per-date mutex so the inflight
// map does not grow by one entry per scored date in a long-lived process.
// A caller still waiting on the pruned mutex re-checks the cache and the
// repository before computing, so the prune cannot cause extra work.
func (s *RankingService) releaseDateLock(key string, lock *sync.Mutex) {
	lock.Unlock()
	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
}
