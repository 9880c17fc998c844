package scoring

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rotor/backend/internal/contracts"
	"github.com/wonny/rotor/backend/pkg/logger"
	"github.com/wonny/rotor/backend/pkg/redis"
)

type countingComputer struct {
	calls  atomic.Int64
	scores []contracts.SectorScore
	delay  time.Duration
}

func (c *countingComputer) UpdateDailyScores(_ context.Context, _ time.Time) ([]contracts.SectorScore, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	return c.scores, nil
}

func newRankingService(computer ScoreComputer, repo contracts.ScoreRepository) *RankingService {
	cache := redis.NewCache(redis.Disabled(), "rotor")
	return NewRankingService(computer, repo, cache, redis.TTLLong, logger.NewNop())
}

func TestRankingsServedFromRepository(t *testing.T) {
	stored := []contracts.SectorScore{{Symbol: "XLK", Rank: 1, CompositeScore: 61.2}}
	computer := &countingComputer{}
	svc := newRankingService(computer, &stubScoreRepo{latest: stored})

	scores, err := svc.Rankings(context.Background(), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, stored, scores)
	assert.Equal(t, int64(0), computer.calls.Load())
}

func TestRankingsComputedWhenMissing(t *testing.T) {
	computed := []contracts.SectorScore{{Symbol: "XLE", Rank: 1, CompositeScore: 58.0}}
	computer := &countingComputer{scores: computed}
	svc := newRankingService(computer, &stubScoreRepo{})

	scores, err := svc.Rankings(context.Background(), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, computed, scores)
	assert.Equal(t, int64(1), computer.calls.Load())
}

func TestConcurrentRankingsComputeOnce(t *testing.T) {
	repo := &stubScoreRepo{}
	computer := &countingComputer{
		scores: []contracts.SectorScore{{Symbol: "XLF", Rank: 1}},
		delay:  10 * time.Millisecond,
	}

	// The repository starts serving the scores once the first computation
	// upserts them.
	svc := NewRankingService(serveAfterCompute{computer, repo}, repo, redis.NewCache(redis.Disabled(), "rotor"), redis.TTLLong, logger.NewNop())

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Rankings(context.Background(), date)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), computer.calls.Load())
}

func TestRankingsPrunesInflightLock(t *testing.T) {
	computer := &countingComputer{
		scores: []contracts.SectorScore{{Symbol: "XLK", Rank: 1, CompositeScore: 61.2}},
	}
	svc := newRankingService(computer, &stubScoreRepo{})

	_, err := svc.Rankings(context.Background(), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = svc.Rankings(context.Background(), time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	svc.mu.Lock()
	inflight := len(svc.inflight)
	svc.mu.Unlock()
	assert.Zero(t, inflight)
}

// serveAfterCompute mimics the scorer persisting its result: after the
// first computation the repository returns the stored scores.
type serveAfterCompute struct {
	inner *countingComputer
	repo  *stubScoreRepo
}

func (s serveAfterCompute) UpdateDailyScores(ctx context.Context, date time.Time) ([]contracts.SectorScore, error) {
	scores, err := s.inner.UpdateDailyScores(ctx, date)
	if err != nil {
		return nil, err
	}
	s.repo.setLatest(scores)
	return scores, nil
}
