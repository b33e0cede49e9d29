package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/vinom-maze/domain"
	"github.com/beka-birhanu/vinom-maze/explorer"
	pb "github.com/beka-birhanu/vinom-maze/infrastruture/pb_encoder"
	"github.com/beka-birhanu/vinom-maze/infrastruture/simbot"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	entries map[string][]byte
	hits    int
	sets    int
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	payload, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return payload, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, payload []byte, _ time.Duration) error {
	c.sets++
	c.entries[key] = payload
	return nil
}

type memoryRuns struct {
	runs map[uuid.UUID]*dmn.Run
	sync.Mutex
}

func (r *memoryRuns) Save(_ context.Context, run *dmn.Run) error {
	r.Lock()
	defer r.Unlock()
	r.runs[run.ID] = run
	return nil
}

func (r *memoryRuns) ByID(_ context.Context, id uuid.UUID) (*dmn.Run, error) {
	r.Lock()
	defer r.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, dmn.ErrRunNotFound
	}
	return run, nil
}

type countingLocker struct {
	locked   []string
	unlocked int
	err      error
}

func (l *countingLocker) Lock(_ context.Context, key string) (func() error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, key)
	return func() error {
		l.unlocked++
		return nil
	}, nil
}

type fixture struct {
	solver *Solver
	cache  *memoryCache
	runs   *memoryRuns
	locker *countingLocker
}

func newFixture(t *testing.T, factory RobotFactory) *fixture {
	t.Helper()

	if factory == nil {
		factory = func(g *maze.Grid) i.Robot {
			return simbot.New(g, simbot.DefaultConfig(), nil)
		}
	}
	f := &fixture{
		cache:  &memoryCache{entries: map[string][]byte{}},
		runs:   &memoryRuns{runs: map[uuid.UUID]*dmn.Run{}},
		locker: &countingLocker{},
	}

	var err error
	f.solver, err = NewSolver(&Config{
		Cache:        f.cache,
		Encoder:      &pb.Protobuf{},
		Runs:         f.runs,
		Locker:       f.locker,
		RobotFactory: factory,
		Navigation:   explorer.DefaultConfig(),
	})
	require.NoError(t, err)
	return f
}

func seed(v int64) *int64 {
	return &v
}

func TestNewSolver(t *testing.T) {
	t.Run("Robot factory is required", func(t *testing.T) {
		_, err := NewSolver(&Config{Navigation: explorer.DefaultConfig()})
		assert.ErrorIs(t, err, ErrNoRobot)
	})

	t.Run("Navigation is validated", func(t *testing.T) {
		_, err := NewSolver(&Config{
			RobotFactory: func(*maze.Grid) i.Robot { return nil },
			Navigation:   explorer.Config{CellSize: 2, WallThreshold: 3},
		})
		assert.ErrorIs(t, err, explorer.ErrInvalidConfig)
	})
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("Seeded mazes are cached and reproducible", func(t *testing.T) {
		f := newFixture(t, nil)
		req := i.MazeRequest{Width: 7, Height: 5, Obstacles: 4, Seed: seed(11)}

		first, err := f.solver.Generate(ctx, req)
		require.NoError(t, err)
		second, err := f.solver.Generate(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, 1, f.cache.sets)
		assert.Equal(t, 1, f.cache.hits)
		assert.Equal(t, first.Grid.String(), second.Grid.String())
		assert.Equal(t, first.Grid.Obstacles(), second.Grid.Obstacles())
		assert.Equal(t, int64(11), second.Seed)
		assert.NoError(t, second.Grid.CheckPerfect())
	})

	t.Run("Random mazes skip the cache", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.solver.Generate(ctx, i.MazeRequest{Width: 4, Height: 4})
		require.NoError(t, err)
		assert.Equal(t, 0, f.cache.sets)
	})

	t.Run("Obstacle count is clamped", func(t *testing.T) {
		f := newFixture(t, nil)

		scene, err := f.solver.Generate(ctx, i.MazeRequest{Width: 3, Height: 3, Obstacles: 100, Seed: seed(2)})
		require.NoError(t, err)
		assert.True(t, scene.Placement.Clamped)
		assert.Equal(t, 9-len(scene.Placement.Path), scene.Placement.Placed)
	})

	t.Run("Invalid dimensions", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.solver.Generate(ctx, i.MazeRequest{Width: 0, Height: 4, Seed: seed(1)})
		var cfgErr *maze.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestSolve(t *testing.T) {
	ctx := context.Background()

	t.Run("Explores every cell without obstacles", func(t *testing.T) {
		f := newFixture(t, nil)

		run, err := f.solver.Solve(ctx, i.MazeRequest{Width: 6, Height: 6, Seed: seed(5)})
		require.NoError(t, err)
		assert.True(t, run.Completed)
		assert.Equal(t, 36, run.Visited)
		assert.Len(t, run.Order, 36)
		assert.Empty(t, run.Skipped)
		assert.Equal(t, 0, run.BlockedMoves)
		assert.NotEmpty(t, run.Map)

		stored, err := f.solver.Run(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run, stored)

		assert.Equal(t, []string{"maze:6x6:5"}, f.locker.locked)
		assert.Equal(t, 1, f.locker.unlocked)
	})

	t.Run("Obstacles are never visited", func(t *testing.T) {
		f := newFixture(t, nil)

		run, err := f.solver.Solve(ctx, i.MazeRequest{Width: 8, Height: 6, Obstacles: 6, Seed: seed(9)})
		require.NoError(t, err)
		assert.True(t, run.Completed)
		assert.Len(t, run.Obstacles, 6)
		assert.GreaterOrEqual(t, run.Visited, run.PathLength)
		assert.LessOrEqual(t, run.Visited, 48-6)

		obstacles := map[dmn.Cell]bool{}
		for _, c := range run.Obstacles {
			obstacles[c] = true
		}
		for _, c := range run.Order {
			assert.False(t, obstacles[c], "visited obstacle %v", c)
		}
	})

	t.Run("Robot failure is stored as an aborted run", func(t *testing.T) {
		var robot *simbot.Robot
		f := newFixture(t, func(g *maze.Grid) i.Robot {
			robot = simbot.New(g, simbot.DefaultConfig(), nil)
			return robot
		})

		scene, err := f.solver.Generate(ctx, i.MazeRequest{Width: 4, Height: 4, Seed: seed(3)})
		require.NoError(t, err)

		var visits int
		run, err := f.solver.SolveScene(ctx, scene, func(maze.CellPosition, *explorer.DiscoveredMap) {
			visits++
			if visits == 2 {
				robot.FailNextReads(100)
			}
		})
		assert.ErrorIs(t, err, explorer.ErrRobotUnavailable)
		require.NotNil(t, run)
		assert.False(t, run.Completed)
		assert.NotEmpty(t, run.Aborted)
		assert.Equal(t, 2, run.Visited)

		stored, err := f.solver.Run(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.Aborted, stored.Aborted)
	})

	t.Run("Cancelled run is stored", func(t *testing.T) {
		f := newFixture(t, nil)
		scene, err := f.solver.Generate(ctx, i.MazeRequest{Width: 5, Height: 5, Seed: seed(8)})
		require.NoError(t, err)

		cancelCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		run, err := f.solver.SolveScene(cancelCtx, scene, func(maze.CellPosition, *explorer.DiscoveredMap) {
			cancel()
		})
		assert.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, run)
		assert.Equal(t, 1, run.Visited)
		assert.Len(t, f.runs.runs, 1)
	})

	t.Run("Lock failure stops before exploring", func(t *testing.T) {
		f := newFixture(t, nil)
		f.locker.err = errors.New("busy")

		_, err := f.solver.Solve(ctx, i.MazeRequest{Width: 3, Height: 3, Seed: seed(1)})
		assert.Error(t, err)
		assert.Empty(t, f.runs.runs)
	})

	t.Run("Unknown run", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.solver.Run(ctx, uuid.New())
		assert.ErrorIs(t, err, dmn.ErrRunNotFound)
	})
}
