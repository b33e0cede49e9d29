package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	dmn "github.com/beka-birhanu/vinom-maze/domain"
	"github.com/beka-birhanu/vinom-maze/explorer"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	mazeKeyFmt      = "maze:%dx%d:%d"
	defaultCacheTTL = time.Hour
)

var (
	ErrNoRobot = errors.New("robot factory is required")
)

var _ i.Solver = &Solver{}

// RobotFactory returns a robot placed in the world described by g.
type RobotFactory func(g *maze.Grid) i.Robot

// Config wires a Solver. Cache, Encoder, Runs and Locker are optional.
type Config struct {
	Cache        i.MazeCache
	CacheTTL     time.Duration
	Encoder      i.MazeEncoder
	Runs         i.RunRepo
	Locker       i.RunLocker
	RobotFactory RobotFactory
	Navigation   explorer.Config
	MaxReplans   int
	Logger       *logrus.Entry
}

// Solver generates mazes, validates the scene and runs the exploration
// engine against a robot.
type Solver struct {
	cache        i.MazeCache
	cacheTTL     time.Duration
	encoder      i.MazeEncoder
	runs         i.RunRepo
	locker       i.RunLocker
	robotFactory RobotFactory
	navigation   explorer.Config
	maxReplans   int
	logger       *logrus.Entry
}

func NewSolver(c *Config) (*Solver, error) {
	if c.RobotFactory == nil {
		return nil, ErrNoRobot
	}
	if err := c.Navigation.Validate(); err != nil {
		return nil, err
	}

	logger := c.Logger
	if logger == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		logger = logrus.NewEntry(silent)
	}
	ttl := c.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &Solver{
		cache:        c.Cache,
		cacheTTL:     ttl,
		encoder:      c.Encoder,
		runs:         c.Runs,
		locker:       c.Locker,
		robotFactory: c.RobotFactory,
		navigation:   c.Navigation,
		maxReplans:   c.MaxReplans,
		logger:       logger,
	}, nil
}

// Generate implements i.Solver. Seeded mazes are cached before obstacles are
// placed; obstacles are drawn from the same seed so the scene is reproducible.
func (s *Solver) Generate(ctx context.Context, req i.MazeRequest) (*i.Scene, error) {
	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	g, err := s.grid(ctx, req, seed)
	if err != nil {
		return nil, err
	}

	placement, err := maze.PlaceObstacles(g, req.Obstacles, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}
	if placement.Clamped {
		s.logger.WithFields(logrus.Fields{
			"requested": placement.Requested,
			"placed":    placement.Placed,
		}).Warn("Not enough free cells, obstacle count clamped")
	}
	s.logger.WithFields(logrus.Fields{
		"width":     g.Width(),
		"height":    g.Height(),
		"seed":      seed,
		"obstacles": placement.Placed,
	}).Info("Maze generated")

	return &i.Scene{Grid: g, Seed: seed, Placement: placement}, nil
}

// grid returns the bare maze for seed, from the cache when possible.
func (s *Solver) grid(ctx context.Context, req i.MazeRequest, seed int64) (*maze.Grid, error) {
	cacheable := req.Seed != nil && s.cache != nil && s.encoder != nil
	key := fmt.Sprintf(mazeKeyFmt, req.Width, req.Height, seed)

	if cacheable {
		payload, found, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.WithError(err).Warn("Maze cache unavailable")
		case found:
			g, _, err := s.encoder.UnmarshalMaze(payload)
			if err == nil && g.Width() == req.Width && g.Height() == req.Height {
				return g, nil
			}
			s.logger.WithField("key", key).Warn("Discarding bad cached maze")
		}
	}

	g, err := maze.Generate(req.Width, req.Height, maze.WithSeed(seed))
	if err != nil {
		return nil, err
	}

	if cacheable {
		payload, err := s.encoder.MarshalMaze(g, seed)
		if err == nil {
			err = s.cache.Set(ctx, key, payload, s.cacheTTL)
		}
		if err != nil {
			s.logger.WithError(err).Warn("Caching maze failed")
		}
	}
	return g, nil
}

// Solve implements i.Solver.
func (s *Solver) Solve(ctx context.Context, req i.MazeRequest) (*dmn.Run, error) {
	scene, err := s.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.SolveScene(ctx, scene, nil)
}

// SolveScene explores an already generated scene. onVisit, when set, is
// called after every visited cell. The run is stored even when exploration
// stops early.
func (s *Solver) SolveScene(ctx context.Context, scene *i.Scene, onVisit func(maze.CellPosition, *explorer.DiscoveredMap)) (*dmn.Run, error) {
	g := scene.Grid
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, fmt.Sprintf(mazeKeyFmt, g.Width(), g.Height(), scene.Seed))
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := unlock(); err != nil {
				s.logger.WithError(err).Warn("Releasing run lock failed")
			}
		}()
	}

	robot := s.robotFactory(g)
	if err := s.checkScene(ctx, robot, scene); err != nil {
		return nil, err
	}

	nav, err := explorer.NewNavigator(robot, explorer.NewDiscoveredMap(g.Width(), g.Height()), s.navigation, s.logger)
	if err != nil {
		return nil, err
	}
	if err := nav.TeleportTo(ctx, maze.Entrance()); err != nil {
		return nil, fmt.Errorf("placing robot at entrance: %w", err)
	}

	opts := []explorer.EngineOption{explorer.WithLogger(s.logger)}
	if s.maxReplans > 0 {
		opts = append(opts, explorer.WithMaxReplans(s.maxReplans))
	}
	if onVisit != nil {
		opts = append(opts, explorer.WithVisitHook(onVisit))
	}

	startedAt := time.Now().UTC()
	report, exploreErr := explorer.NewEngine(nav, opts...).Explore(ctx, maze.Entrance())
	run := newRun(scene, report, startedAt)

	if s.runs != nil {
		if err := s.runs.Save(context.WithoutCancel(ctx), run); err != nil {
			return run, errors.Join(exploreErr, err)
		}
	}
	return run, exploreErr
}

// checkScene walks the canonical path with teleports only, on a throwaway
// map, to confirm the robot can stand in every cell of it.
func (s *Solver) checkScene(ctx context.Context, robot i.Robot, scene *i.Scene) error {
	path := scene.Placement.Path
	if len(path) == 0 {
		return fmt.Errorf("scene check: %w", maze.ErrUnreachable)
	}

	g := scene.Grid
	nav, err := explorer.NewNavigator(robot, explorer.NewDiscoveredMap(g.Width(), g.Height()), s.navigation, s.logger)
	if err != nil {
		return err
	}
	for _, pos := range path {
		if err := nav.TeleportTo(ctx, pos); err != nil {
			return fmt.Errorf("scene check at %s: %w", pos, err)
		}
	}
	return nil
}

// Run implements i.Solver.
func (s *Solver) Run(ctx context.Context, id uuid.UUID) (*dmn.Run, error) {
	if s.runs == nil {
		return nil, dmn.ErrRunNotFound
	}
	return s.runs.ByID(ctx, id)
}

func newRun(scene *i.Scene, report *explorer.Report, startedAt time.Time) *dmn.Run {
	run := &dmn.Run{
		ID:             uuid.New(),
		Width:          scene.Grid.Width(),
		Height:         scene.Grid.Height(),
		Seed:           scene.Seed,
		Obstacles:      toCells(scene.Grid.Obstacles()),
		PathLength:     len(scene.Placement.Path),
		Visited:        report.Visited(),
		Order:          toCells(report.Order),
		Skipped:        toCells(report.Skipped),
		Moves:          report.Stats.Moves,
		BlockedMoves:   report.Stats.BlockedMoves,
		SensorFailures: report.Stats.SensorFailures,
		Completed:      report.Completed,
		Aborted:        report.Aborted,
		StartedAt:      startedAt,
		FinishedAt:     time.Now().UTC(),
	}
	if report.Map != nil {
		run.Map = report.Map.String()
	}
	return run
}

func toCells(positions []maze.CellPosition) []dmn.Cell {
	cells := make([]dmn.Cell, 0, len(positions))
	for _, p := range positions {
		cells = append(cells, dmn.Cell{Row: p.Row, Col: p.Col})
	}
	return cells
}
