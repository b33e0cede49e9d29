package explorer

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-maze/infrastruture/simbot"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky robot")

type side struct {
	pos maze.CellPosition
	dir maze.Direction
}

// truthRobot reads distances straight from a ground truth grid.
type truthRobot struct {
	grid      *maze.Grid
	cellSize  float64
	pending   i.Pose
	pose      i.Pose
	overrides map[side]i.Reading
	stepErrAt map[maze.CellPosition]error // Step commits, then returns this error in the cell

	readFailures int
	poseFailures int
	reads        int
	poses        int
}

func newTruthRobot(g *maze.Grid) *truthRobot {
	return &truthRobot{grid: g, cellSize: 2.0, overrides: map[side]i.Reading{}}
}

func (r *truthRobot) SetPose(_ context.Context, pose i.Pose) error {
	r.poses++
	if r.poseFailures > 0 {
		r.poseFailures--
		return errFlaky
	}
	r.pending = pose
	return nil
}

func (r *truthRobot) Step(context.Context) error {
	r.pose = r.pending
	return r.stepErrAt[r.cell()]
}

func (r *truthRobot) ReadDistance(context.Context) (i.Reading, error) {
	r.reads++
	if r.readFailures > 0 {
		r.readFailures--
		return i.Reading{}, errFlaky
	}

	s := r.facing()
	if reading, ok := r.overrides[s]; ok {
		return reading, nil
	}
	if r.grid.Cell(s.pos).HasWall(s.dir) {
		return i.Reading{Detected: true, Distance: 0.5}, nil
	}
	if r.grid.HasObstacle(s.pos.Step(s.dir)) {
		return i.Reading{Detected: true, Distance: 1.0}, nil
	}
	return i.Reading{}, nil
}

func (r *truthRobot) cell() maze.CellPosition {
	return maze.CellPosition{
		Row: int(math.Floor(r.pose.Y / r.cellSize)),
		Col: int(math.Floor(r.pose.X / r.cellSize)),
	}
}

func (r *truthRobot) facing() side {
	cos, sin := math.Cos(r.pose.Yaw), math.Sin(r.pose.Yaw)
	dir := maze.North
	switch {
	case math.Abs(cos) >= math.Abs(sin) && cos > 0:
		dir = maze.East
	case math.Abs(cos) >= math.Abs(sin):
		dir = maze.West
	case sin > 0:
		dir = maze.South
	}
	return side{pos: r.cell(), dir: dir}
}

func pos(row, col int) maze.CellPosition {
	return maze.CellPosition{Row: row, Col: col}
}

// gridFrom builds a fully walled grid with the given passages opened plus
// the entrance and exit.
func gridFrom(t *testing.T, width, height int, edges ...[2]maze.CellPosition) *maze.Grid {
	t.Helper()

	cells := map[maze.CellPosition]*maze.Cell{}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			cells[pos(row, col)] = &maze.Cell{NorthWall: true, SouthWall: true, EastWall: true, WestWall: true}
		}
	}
	open := func(c *maze.Cell, d maze.Direction) {
		switch d {
		case maze.North:
			c.NorthWall = false
		case maze.South:
			c.SouthWall = false
		case maze.East:
			c.EastWall = false
		case maze.West:
			c.WestWall = false
		}
	}
	for _, e := range edges {
		d, ok := maze.Between(e[0], e[1])
		require.True(t, ok, "%s and %s are not adjacent", e[0], e[1])
		open(cells[e[0]], d)
		open(cells[e[1]], d.Opposite())
	}
	open(cells[maze.Entrance()], maze.North)
	open(cells[pos(height-1, width-1)], maze.South)

	g, err := maze.Build(width, height, func(p maze.CellPosition) maze.Cell { return *cells[p] })
	require.NoError(t, err)
	return g
}

// fourByFour is a fixed perfect maze:
//
//	+   +---+---+---+
//	|               |
//	+   +---+---+   +
//	|       |       |
//	+---+   +---+   +
//	|       |       |
//	+   +---+---+---+
//	|               |
//	+---+---+---+   +
func fourByFour(t *testing.T) *maze.Grid {
	return gridFrom(t, 4, 4,
		[2]maze.CellPosition{pos(0, 0), pos(0, 1)},
		[2]maze.CellPosition{pos(0, 1), pos(0, 2)},
		[2]maze.CellPosition{pos(0, 2), pos(0, 3)},
		[2]maze.CellPosition{pos(0, 0), pos(1, 0)},
		[2]maze.CellPosition{pos(1, 0), pos(1, 1)},
		[2]maze.CellPosition{pos(1, 1), pos(2, 1)},
		[2]maze.CellPosition{pos(2, 1), pos(2, 0)},
		[2]maze.CellPosition{pos(2, 0), pos(3, 0)},
		[2]maze.CellPosition{pos(3, 0), pos(3, 1)},
		[2]maze.CellPosition{pos(3, 1), pos(3, 2)},
		[2]maze.CellPosition{pos(3, 2), pos(3, 3)},
		[2]maze.CellPosition{pos(0, 3), pos(1, 3)},
		[2]maze.CellPosition{pos(1, 3), pos(1, 2)},
		[2]maze.CellPosition{pos(1, 3), pos(2, 3)},
		[2]maze.CellPosition{pos(2, 3), pos(2, 2)},
	)
}

func newTestNavigator(t *testing.T, g *maze.Grid) (*Navigator, *truthRobot) {
	t.Helper()

	robot := newTruthRobot(g)
	nav, err := NewNavigator(robot, NewDiscoveredMap(g.Width(), g.Height()), DefaultConfig(), nil)
	require.NoError(t, err)
	return nav, robot
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cases := map[string]Config{
		"Zero cell size":          {CellSize: 0, WallThreshold: 1.1},
		"Threshold above cell":    {CellSize: 2, WallThreshold: 2},
		"Zero threshold":          {CellSize: 2, WallThreshold: 0},
		"Negative sensor retry":   {CellSize: 2, WallThreshold: 1.1, SensorRetries: -1},
		"Negative actuator retry": {CellSize: 2, WallThreshold: 1.1, ActuatorRetries: -1},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)

			_, err = NewNavigator(nil, NewDiscoveredMap(1, 1), cfg, nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestHeading(t *testing.T) {
	assert.Equal(t, 0.0, Heading(maze.East))
	assert.Equal(t, math.Pi/2, Heading(maze.South))
	assert.Equal(t, math.Pi, Heading(maze.West))
	assert.Equal(t, -math.Pi/2, Heading(maze.North))
}

func TestDiscoveredMap(t *testing.T) {
	t.Run("Starts unknown", func(t *testing.T) {
		m := NewDiscoveredMap(3, 2)
		for _, d := range maze.Directions {
			assert.Equal(t, WallUnknown, m.Wall(pos(1, 1), d))
			assert.False(t, m.IsOpen(pos(1, 1), d))
		}
		assert.Equal(t, CellUnknown, m.State(pos(0, 0)))
		assert.Equal(t, 0, m.VisitedCount())
	})

	t.Run("Record updates both sides", func(t *testing.T) {
		m := NewDiscoveredMap(3, 2)
		m.Record(pos(0, 0), maze.East, false)

		assert.Equal(t, WallOpen, m.Wall(pos(0, 0), maze.East))
		assert.Equal(t, WallOpen, m.Wall(pos(0, 1), maze.West))
		assert.True(t, m.IsOpen(pos(0, 1), maze.West))
		assert.Equal(t, CellSensed, m.State(pos(0, 0)))
		assert.Equal(t, CellUnknown, m.State(pos(0, 1)))
	})

	t.Run("Live reading overrides", func(t *testing.T) {
		m := NewDiscoveredMap(3, 2)
		m.Record(pos(0, 0), maze.South, false)
		m.Record(pos(0, 0), maze.South, true)

		assert.Equal(t, WallPresent, m.Wall(pos(0, 0), maze.South))
		assert.Equal(t, WallPresent, m.Wall(pos(1, 0), maze.North))
	})

	t.Run("Boundary opening is not traversable", func(t *testing.T) {
		m := NewDiscoveredMap(3, 2)
		m.Record(pos(0, 0), maze.North, false)

		assert.Equal(t, WallOpen, m.Wall(pos(0, 0), maze.North))
		assert.False(t, m.IsOpen(pos(0, 0), maze.North))
	})

	t.Run("Out of bounds is ignored", func(t *testing.T) {
		m := NewDiscoveredMap(3, 2)
		m.Record(pos(5, 5), maze.North, false)
		m.MarkVisited(pos(-1, 0))

		assert.Equal(t, WallUnknown, m.Wall(pos(5, 5), maze.North))
		assert.Equal(t, 0, m.VisitedCount())
	})

	t.Run("Render", func(t *testing.T) {
		m := NewDiscoveredMap(2, 1)
		m.Record(pos(0, 0), maze.East, false)
		m.MarkVisited(pos(0, 0))

		out := m.Render(pos(0, 0))
		assert.Contains(t, out, "Y/X")
		assert.Contains(t, out, "R→")
		assert.Contains(t, out, "?←")
	})
}

func TestNavigatorMove(t *testing.T) {
	t.Run("Open side moves", func(t *testing.T) {
		g := gridFrom(t, 2, 1, [2]maze.CellPosition{pos(0, 0), pos(0, 1)})
		nav, robot := newTestNavigator(t, g)

		outcome, err := nav.Move(context.Background(), maze.East)
		require.NoError(t, err)
		assert.Equal(t, Moved, outcome)
		assert.Equal(t, pos(0, 1), nav.Position())
		assert.Equal(t, i.Pose{X: 3, Y: 1, Yaw: 0}, robot.pose)
		assert.Equal(t, WallOpen, nav.Map().Wall(pos(0, 0), maze.East))
		assert.Equal(t, 1, nav.Stats().Moves)
	})

	t.Run("Live wall refuses a move the map allows", func(t *testing.T) {
		g := gridFrom(t, 2, 1, [2]maze.CellPosition{pos(0, 0), pos(0, 1)})
		nav, robot := newTestNavigator(t, g)
		nav.Map().Record(pos(0, 0), maze.East, false)
		robot.overrides[side{pos(0, 0), maze.East}] = i.Reading{Detected: true, Distance: 0.3}

		outcome, err := nav.Move(context.Background(), maze.East)
		require.NoError(t, err)
		assert.Equal(t, Blocked, outcome)
		assert.Equal(t, pos(0, 0), nav.Position())
		assert.Equal(t, 1.0, robot.pose.X)
		assert.Equal(t, WallPresent, nav.Map().Wall(pos(0, 0), maze.East))
		assert.Equal(t, 1, nav.Stats().BlockedMoves)
		assert.Equal(t, 0, nav.Stats().Moves)
	})

	t.Run("Far detection is not a wall", func(t *testing.T) {
		g := gridFrom(t, 2, 1, [2]maze.CellPosition{pos(0, 0), pos(0, 1)})
		nav, robot := newTestNavigator(t, g)
		robot.overrides[side{pos(0, 0), maze.East}] = i.Reading{Detected: true, Distance: 2.5}

		outcome, err := nav.Move(context.Background(), maze.East)
		require.NoError(t, err)
		assert.Equal(t, Moved, outcome)
	})

	t.Run("Leaving the grid is a bounds error", func(t *testing.T) {
		g := gridFrom(t, 2, 1, [2]maze.CellPosition{pos(0, 0), pos(0, 1)})
		nav, robot := newTestNavigator(t, g)

		_, err := nav.Move(context.Background(), maze.North)
		var boundsErr *BoundsError
		require.ErrorAs(t, err, &boundsErr)
		assert.Equal(t, pos(-1, 0), boundsErr.Target)
		assert.Equal(t, 0, robot.poses)
		assert.Equal(t, pos(0, 0), nav.Position())
	})

	t.Run("Invalid direction", func(t *testing.T) {
		g := gridFrom(t, 2, 1, [2]maze.CellPosition{pos(0, 0), pos(0, 1)})
		nav, _ := newTestNavigator(t, g)

		_, err := nav.Move(context.Background(), maze.Direction(7))
		assert.Error(t, err)
	})
}

func TestNavigatorNavigateTo(t *testing.T) {
	g := gridFrom(t, 3, 1, [2]maze.CellPosition{pos(0, 0), pos(0, 1)})

	t.Run("Unknown map is unreachable", func(t *testing.T) {
		nav, robot := newTestNavigator(t, g)

		outcome, err := nav.NavigateTo(context.Background(), pos(0, 1))
		require.NoError(t, err)
		assert.Equal(t, Unreachable, outcome)
		assert.Equal(t, 0, robot.poses)
	})

	t.Run("Already there", func(t *testing.T) {
		nav, robot := newTestNavigator(t, g)

		outcome, err := nav.NavigateTo(context.Background(), maze.Entrance())
		require.NoError(t, err)
		assert.Equal(t, Moved, outcome)
		assert.Equal(t, 0, robot.poses)
	})

	t.Run("Stale map stops midway", func(t *testing.T) {
		nav, _ := newTestNavigator(t, g)
		nav.Map().Record(pos(0, 0), maze.East, false)
		nav.Map().Record(pos(0, 1), maze.East, false)

		outcome, err := nav.NavigateTo(context.Background(), pos(0, 2))
		require.NoError(t, err)
		assert.Equal(t, Blocked, outcome)
		assert.Equal(t, pos(0, 1), nav.Position())
		assert.Equal(t, WallPresent, nav.Map().Wall(pos(0, 1), maze.East))
	})

	t.Run("Out of bounds target", func(t *testing.T) {
		nav, _ := newTestNavigator(t, g)

		_, err := nav.NavigateTo(context.Background(), pos(0, 3))
		var boundsErr *BoundsError
		assert.ErrorAs(t, err, &boundsErr)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		nav, _ := newTestNavigator(t, g)
		nav.Map().Record(pos(0, 0), maze.East, false)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := nav.NavigateTo(ctx, pos(0, 1))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, maze.Entrance(), nav.Position())
	})
}

func TestNavigatorTeleportTo(t *testing.T) {
	g := fourByFour(t)

	t.Run("Idempotent and map untouched", func(t *testing.T) {
		nav, robot := newTestNavigator(t, g)

		for range 2 {
			require.NoError(t, nav.TeleportTo(context.Background(), pos(2, 3)))
			assert.Equal(t, pos(2, 3), nav.Position())
			assert.Equal(t, i.Pose{X: 7, Y: 5, Yaw: 0}, robot.pose)
		}

		assert.Equal(t, 2, nav.Stats().Teleports)
		assert.Equal(t, 0, nav.Stats().Probes)
		for row := 0; row < 4; row++ {
			for col := 0; col < 4; col++ {
				assert.Equal(t, CellUnknown, nav.Map().State(pos(row, col)))
				for _, d := range maze.Directions {
					assert.Equal(t, WallUnknown, nav.Map().Wall(pos(row, col), d))
				}
			}
		}
	})

	t.Run("Out of bounds", func(t *testing.T) {
		nav, _ := newTestNavigator(t, g)

		err := nav.TeleportTo(context.Background(), pos(4, 0))
		var boundsErr *BoundsError
		assert.ErrorAs(t, err, &boundsErr)
		assert.Equal(t, maze.Entrance(), nav.Position())
	})
}

func TestNavigatorInterruptedCommit(t *testing.T) {
	t.Run("Move cut short after the commit", func(t *testing.T) {
		g := gridFrom(t, 2, 1, [2]maze.CellPosition{pos(0, 0), pos(0, 1)})
		nav, robot := newTestNavigator(t, g)
		robot.stepErrAt = map[maze.CellPosition]error{pos(0, 1): context.Canceled}

		outcome, err := nav.Move(context.Background(), maze.East)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, Moved, outcome)
		assert.Equal(t, robot.cell(), nav.Position())
		assert.Equal(t, pos(0, 1), nav.Position())
		assert.Equal(t, 1, nav.Stats().Moves)
		assert.Equal(t, 0, nav.Stats().BlockedMoves)
		assert.Equal(t, 0, nav.Stats().ActuatorFailures)
	})

	t.Run("Path cut short midway", func(t *testing.T) {
		g := gridFrom(t, 3, 1,
			[2]maze.CellPosition{pos(0, 0), pos(0, 1)},
			[2]maze.CellPosition{pos(0, 1), pos(0, 2)},
		)
		nav, robot := newTestNavigator(t, g)
		nav.Map().Record(pos(0, 0), maze.East, false)
		nav.Map().Record(pos(0, 1), maze.East, false)
		robot.stepErrAt = map[maze.CellPosition]error{pos(0, 1): context.DeadlineExceeded}

		outcome, err := nav.NavigateTo(context.Background(), pos(0, 2))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, Interrupted, outcome)
		assert.Equal(t, robot.cell(), nav.Position())
		assert.Equal(t, pos(0, 1), nav.Position())
	})

	t.Run("Teleport cut short after the commit", func(t *testing.T) {
		nav, robot := newTestNavigator(t, fourByFour(t))
		robot.stepErrAt = map[maze.CellPosition]error{pos(2, 3): context.Canceled}

		err := nav.TeleportTo(context.Background(), pos(2, 3))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, pos(2, 3), nav.Position())
		assert.Equal(t, 1, nav.Stats().Teleports)
	})

	t.Run("Cancelled while the simulated robot settles", func(t *testing.T) {
		g := gridFrom(t, 2, 1, [2]maze.CellPosition{pos(0, 0), pos(0, 1)})
		cfg := simbot.DefaultConfig()
		cfg.SettleDelay = 100 * time.Millisecond
		robot := simbot.New(g, cfg, nil)
		nav, err := NewNavigator(robot, NewDiscoveredMap(2, 1), DefaultConfig(), nil)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()

		outcome, err := nav.Move(ctx, maze.East)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.NotEqual(t, Blocked, outcome)

		physical := robot.Pose()
		cell := pos(int(math.Floor(physical.Y/cfg.CellSize)), int(math.Floor(physical.X/cfg.CellSize)))
		assert.Equal(t, cell, nav.Position())
	})
}

func TestNavigatorRetries(t *testing.T) {
	g := fourByFour(t)

	t.Run("Transient sensor failure recovers", func(t *testing.T) {
		nav, robot := newTestNavigator(t, g)
		robot.readFailures = 2

		wall, err := nav.Sense(context.Background(), maze.West)
		require.NoError(t, err)
		assert.True(t, wall)
		assert.Equal(t, 2, nav.Stats().SensorFailures)
	})

	t.Run("Persistent sensor failure is bounded", func(t *testing.T) {
		nav, robot := newTestNavigator(t, g)
		robot.readFailures = 100

		_, err := nav.Sense(context.Background(), maze.East)
		assert.ErrorIs(t, err, ErrRobotUnavailable)
		assert.ErrorIs(t, err, errFlaky)
		assert.Equal(t, DefaultConfig().SensorRetries+1, robot.reads)
		assert.Equal(t, WallUnknown, nav.Map().Wall(maze.Entrance(), maze.East))
	})

	t.Run("Persistent actuator failure is bounded", func(t *testing.T) {
		nav, robot := newTestNavigator(t, g)
		robot.poseFailures = 100

		_, err := nav.Move(context.Background(), maze.East)
		assert.ErrorIs(t, err, ErrRobotUnavailable)
		assert.Equal(t, DefaultConfig().ActuatorRetries+1, robot.poses)
		assert.Equal(t, 0, robot.reads)
		assert.Equal(t, maze.Entrance(), nav.Position())
	})
}

func TestEngineExplore(t *testing.T) {
	t.Run("Visits every cell of a fixed maze", func(t *testing.T) {
		g := fourByFour(t)
		require.NoError(t, g.CheckPerfect())
		nav, _ := newTestNavigator(t, g)

		report, err := NewEngine(nav).Explore(context.Background(), maze.Entrance())
		require.NoError(t, err)
		assert.True(t, report.Completed)
		assert.Empty(t, report.Aborted)
		assert.Empty(t, report.Skipped)
		assert.Equal(t, 16, report.Visited())
		assert.Equal(t, 16, report.Map.VisitedCount())
		assert.Equal(t, 0, report.Stats.BlockedMoves)

		seen := map[maze.CellPosition]bool{}
		for _, p := range report.Order {
			assert.False(t, seen[p], "%s visited twice", p)
			seen[p] = true
		}

		// Depth first: the south branch is queued last and taken first.
		assert.Equal(t, pos(0, 0), report.Order[0])
		assert.Equal(t, pos(1, 0), report.Order[1])

		for row := 0; row < 4; row++ {
			for col := 0; col < 4; col++ {
				p := pos(row, col)
				for _, d := range maze.Directions {
					assert.Equal(t, g.IsOpen(p, d), report.Map.IsOpen(p, d), "%s %s", p, d)
					assert.NotEqual(t, WallUnknown, report.Map.Wall(p, d), "%s %s", p, d)
				}
			}
		}
	})

	t.Run("Teleports to a different start", func(t *testing.T) {
		g := fourByFour(t)
		nav, _ := newTestNavigator(t, g)

		report, err := NewEngine(nav).Explore(context.Background(), pos(3, 3))
		require.NoError(t, err)
		assert.Equal(t, pos(3, 3), report.Order[0])
		assert.Equal(t, 16, report.Visited())
		assert.Equal(t, 1, report.Stats.Teleports)
	})

	t.Run("Generated mazes with obstacles", func(t *testing.T) {
		for seed := int64(0); seed < 5; seed++ {
			g, err := maze.Generate(6, 5, maze.WithSeed(seed))
			require.NoError(t, err)
			placement, err := maze.PlaceObstacles(g, 4, rand.New(rand.NewSource(seed)))
			require.NoError(t, err)
			nav, _ := newTestNavigator(t, g)

			report, err := NewEngine(nav).Explore(context.Background(), maze.Entrance())
			require.NoError(t, err)
			assert.True(t, report.Completed)

			for _, p := range report.Order {
				assert.False(t, g.HasObstacle(p), "seed %d visited obstacle %s", seed, p)
			}
			for _, p := range placement.Path {
				assert.Equal(t, CellVisited, report.Map.State(p), "seed %d missed path cell %s", seed, p)
			}
		}
	})

	t.Run("Cancellation returns partial report", func(t *testing.T) {
		g := fourByFour(t)
		nav, _ := newTestNavigator(t, g)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		visits := 0
		engine := NewEngine(nav, WithVisitHook(func(maze.CellPosition, *DiscoveredMap) {
			visits++
			if visits == 3 {
				cancel()
			}
		}))

		report, err := engine.Explore(ctx, maze.Entrance())
		assert.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, report)
		assert.False(t, report.Completed)
		assert.NotEmpty(t, report.Aborted)
		assert.Equal(t, 3, report.Visited())
		assert.Equal(t, 3, report.Map.VisitedCount())
	})

	t.Run("Robot failure stops the run", func(t *testing.T) {
		g := fourByFour(t)
		nav, robot := newTestNavigator(t, g)
		robot.readFailures = 100

		report, err := NewEngine(nav).Explore(context.Background(), maze.Entrance())
		assert.ErrorIs(t, err, ErrRobotUnavailable)
		require.NotNil(t, report)
		assert.Equal(t, 0, report.Visited())
		assert.False(t, report.Completed)
	})

	t.Run("Start out of bounds", func(t *testing.T) {
		g := fourByFour(t)
		nav, _ := newTestNavigator(t, g)

		report, err := NewEngine(nav).Explore(context.Background(), pos(9, 9))
		var boundsErr *BoundsError
		assert.ErrorAs(t, err, &boundsErr)
		require.NotNil(t, report)
	})

	t.Run("Blocked neighbour is skipped after re-planning", func(t *testing.T) {
		g := gridFrom(t, 3, 1,
			[2]maze.CellPosition{pos(0, 0), pos(0, 1)},
			[2]maze.CellPosition{pos(0, 1), pos(0, 2)},
		)
		nav, robot := newTestNavigator(t, g)
		nav.Map().Record(pos(0, 0), maze.East, false)

		report, err := NewEngine(nav, WithMaxReplans(1)).Explore(context.Background(), pos(0, 0))
		require.NoError(t, err)
		assert.Equal(t, 3, report.Visited())
		assert.Empty(t, report.Skipped)

		// A wall that appears only after a cell was queued makes it unreachable.
		nav, robot = newTestNavigator(t, g)
		engine := NewEngine(nav, WithVisitHook(func(p maze.CellPosition, _ *DiscoveredMap) {
			if p == pos(0, 1) {
				robot.overrides[side{pos(0, 1), maze.East}] = i.Reading{Detected: true, Distance: 0.4}
			}
		}))
		report, err = engine.Explore(context.Background(), pos(0, 0))
		require.NoError(t, err)
		assert.True(t, report.Completed)
		assert.Equal(t, []maze.CellPosition{pos(0, 2)}, report.Skipped)
		assert.Equal(t, 2, report.Visited())
		assert.Equal(t, 1, report.Stats.BlockedMoves)
	})
}
