package explorer

import (
	"context"
	"fmt"
	"io"

	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"
)

const defaultMaxReplans = 3

// Report summarises an exploration run. A cancelled or failed run still
// returns a Report describing everything done up to that point.
type Report struct {
	Start     maze.CellPosition
	Order     []maze.CellPosition // Cells in the order they were visited
	Skipped   []maze.CellPosition // Queued cells that could not be reached
	Completed bool                // The stack ran empty
	Aborted   string              // Why the run stopped early, empty when completed
	Stats     Stats
	Map       *DiscoveredMap
}

// Visited returns the number of cells the robot stood in.
func (r *Report) Visited() int {
	return len(r.Order)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMaxReplans bounds how many times a blocked path to a queued cell is
// re-planned before the cell is skipped.
func WithMaxReplans(n int) EngineOption {
	return func(e *Engine) {
		if n >= 0 {
			e.maxReplans = n
		}
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(logger *logrus.Entry) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithVisitHook registers fn to be called after every visited cell.
func WithVisitHook(fn func(pos maze.CellPosition, m *DiscoveredMap)) EngineOption {
	return func(e *Engine) {
		e.onVisit = fn
	}
}

// Engine explores a maze depth first, driving a Navigator from cell to cell
// until every cell reachable through confirmed passages has been visited.
type Engine struct {
	nav        *Navigator
	maxReplans int
	logger     *logrus.Entry
	onVisit    func(pos maze.CellPosition, m *DiscoveredMap)
}

// NewEngine creates an Engine driving nav.
func NewEngine(nav *Navigator, opts ...EngineOption) *Engine {
	silent := logrus.New()
	silent.SetOutput(io.Discard)

	e := &Engine{
		nav:        nav,
		maxReplans: defaultMaxReplans,
		logger:     logrus.NewEntry(silent),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Explore visits every cell reachable from start. Cells are taken from a
// LIFO stack: the last queued neighbour is explored first and the robot
// backtracks along known passages when a branch ends. Neighbours are queued
// in N, E, S, W order, so West is tried first.
//
// When ctx is cancelled or the navigator fails, the partial report is
// returned together with the error.
func (e *Engine) Explore(ctx context.Context, start maze.CellPosition) (*Report, error) {
	discovered := e.nav.Map()
	report := &Report{Start: start, Map: discovered}

	if !discovered.InBound(start) {
		return e.abort(report, &BoundsError{From: e.nav.Position(), Target: start})
	}
	if e.nav.Position() != start {
		if err := e.nav.TeleportTo(ctx, start); err != nil {
			return e.abort(report, err)
		}
	}

	queued := mapset.New[maze.CellPosition]()
	stack := []maze.CellPosition{start}
	queued.Put(start)

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return e.abort(report, err)
		}

		cell := pop(&stack)
		reached, err := e.reach(ctx, cell)
		if err != nil {
			return e.abort(report, err)
		}
		if !reached {
			report.Skipped = append(report.Skipped, cell)
			e.logger.WithField("cell", cell).Warn("Queued cell unreachable, skipping")
			continue
		}

		for _, d := range maze.Directions {
			if _, err := e.nav.Sense(ctx, d); err != nil {
				return e.abort(report, err)
			}
		}
		discovered.MarkVisited(cell)
		report.Order = append(report.Order, cell)
		if e.onVisit != nil {
			e.onVisit(cell, discovered)
		}

		for _, d := range maze.Directions {
			next := cell.Step(d)
			if !discovered.IsOpen(cell, d) || queued.Has(next) {
				continue
			}
			queued.Put(next)
			stack = append(stack, next)
		}
	}

	report.Completed = true
	report.Stats = e.nav.Stats()
	e.logger.WithFields(logrus.Fields{
		"visited": report.Visited(),
		"skipped": len(report.Skipped),
		"moves":   report.Stats.Moves,
	}).Info("Exploration completed")
	return report, nil
}

// reach drives the robot to target, re-planning when a stale map blocks the
// way. It reports false when no known passage leads there.
func (e *Engine) reach(ctx context.Context, target maze.CellPosition) (bool, error) {
	for attempt := 0; attempt <= e.maxReplans; attempt++ {
		outcome, err := e.nav.NavigateTo(ctx, target)
		if err != nil {
			return false, err
		}
		switch outcome {
		case Moved:
			return true, nil
		case Unreachable:
			return false, nil
		}
		e.logger.WithFields(logrus.Fields{"target": target, "attempt": attempt + 1}).Debug("Re-planning")
	}
	return false, nil
}

func (e *Engine) abort(report *Report, err error) (*Report, error) {
	report.Aborted = err.Error()
	report.Stats = e.nav.Stats()

	entry := e.logger.WithFields(logrus.Fields{"visited": report.Visited(), "reason": err})
	if isCancellation(err) {
		entry.Warn("Exploration interrupted")
	} else {
		entry.Error("Exploration failed")
	}
	return report, fmt.Errorf("exploring from %s: %w", report.Start, err)
}

// pop removes and returns the last element of a stack of CellPositions.
func pop(s *[]maze.CellPosition) maze.CellPosition {
	lastIndex := len(*s) - 1
	popped := (*s)[lastIndex]
	*s = (*s)[:lastIndex]
	return popped
}
