package pb

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"google.golang.org/protobuf/encoding/protowire"
)

var _ i.MazeEncoder = &Protobuf{}

// ErrCorrupt is returned for payloads that are not a valid encoded maze.
var ErrCorrupt = errors.New("corrupt maze payload")

// Field numbers of the Maze message.
const (
	mazeWidth  protowire.Number = 1
	mazeHeight protowire.Number = 2
	mazeCells  protowire.Number = 3 // repeated Cell, row-major
	mazeSeed   protowire.Number = 4
)

// Field numbers of the Cell message.
const (
	cellNorth    protowire.Number = 1
	cellSouth    protowire.Number = 2
	cellEast     protowire.Number = 3
	cellWest     protowire.Number = 4
	cellObstacle protowire.Number = 5
)

// Protobuf encodes mazes in protobuf wire format.
type Protobuf struct{}

// MarshalMaze implements i.MazeEncoder.
func (p *Protobuf) MarshalMaze(g *maze.Grid, seed int64) ([]byte, error) {
	if g == nil {
		return nil, errors.New("nil maze")
	}

	var b []byte
	b = protowire.AppendTag(b, mazeWidth, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(g.Width()))
	b = protowire.AppendTag(b, mazeHeight, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(g.Height()))

	for row := 0; row < g.Height(); row++ {
		for col := 0; col < g.Width(); col++ {
			b = protowire.AppendTag(b, mazeCells, protowire.BytesType)
			b = protowire.AppendBytes(b, marshalCell(g.Cell(maze.CellPosition{Row: row, Col: col})))
		}
	}

	b = protowire.AppendTag(b, mazeSeed, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(seed))
	return b, nil
}

// UnmarshalMaze implements i.MazeEncoder.
func (p *Protobuf) UnmarshalMaze(data []byte) (*maze.Grid, int64, error) {
	var (
		width, height int
		seed          int64
		cells         []maze.Cell
	)

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, 0, fmt.Errorf("%w: %w", ErrCorrupt, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == mazeWidth && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, 0, fmt.Errorf("%w: width: %w", ErrCorrupt, protowire.ParseError(n))
			}
			width, data = int(v), data[n:]
		case num == mazeHeight && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, 0, fmt.Errorf("%w: height: %w", ErrCorrupt, protowire.ParseError(n))
			}
			height, data = int(v), data[n:]
		case num == mazeSeed && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, 0, fmt.Errorf("%w: seed: %w", ErrCorrupt, protowire.ParseError(n))
			}
			seed, data = protowire.DecodeZigZag(v), data[n:]
		case num == mazeCells && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, 0, fmt.Errorf("%w: cell: %w", ErrCorrupt, protowire.ParseError(n))
			}
			cell, err := unmarshalCell(v)
			if err != nil {
				return nil, 0, err
			}
			cells, data = append(cells, cell), data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, 0, fmt.Errorf("%w: field %d: %w", ErrCorrupt, num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	if width <= 0 || height <= 0 || width > maze.MaxDimension || height > maze.MaxDimension {
		return nil, 0, fmt.Errorf("%w: dimensions %dx%d", ErrCorrupt, width, height)
	}
	if len(cells) != width*height {
		return nil, 0, fmt.Errorf("%w: %d cells for a %dx%d maze", ErrCorrupt, len(cells), width, height)
	}

	g, err := maze.Build(width, height, func(pos maze.CellPosition) maze.Cell {
		return cells[pos.Row*width+pos.Col]
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := g.CheckPerfect(); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return g, seed, nil
}

func marshalCell(c maze.Cell) []byte {
	var b []byte
	for _, f := range []struct {
		num protowire.Number
		set bool
	}{
		{cellNorth, c.NorthWall},
		{cellSouth, c.SouthWall},
		{cellEast, c.EastWall},
		{cellWest, c.WestWall},
		{cellObstacle, c.Obstacle},
	} {
		if f.set {
			b = protowire.AppendTag(b, f.num, protowire.VarintType)
			b = protowire.AppendVarint(b, protowire.EncodeBool(true))
		}
	}
	return b
}

func unmarshalCell(data []byte) (maze.Cell, error) {
	var c maze.Cell
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return c, fmt.Errorf("%w: cell: %w", ErrCorrupt, protowire.ParseError(n))
		}
		data = data[n:]

		if typ != protowire.VarintType {
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return c, fmt.Errorf("%w: cell field %d: %w", ErrCorrupt, num, protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return c, fmt.Errorf("%w: cell field %d: %w", ErrCorrupt, num, protowire.ParseError(n))
		}
		data = data[n:]

		set := protowire.DecodeBool(v)
		switch num {
		case cellNorth:
			c.NorthWall = set
		case cellSouth:
			c.SouthWall = set
		case cellEast:
			c.EastWall = set
		case cellWest:
			c.WestWall = set
		case cellObstacle:
			c.Obstacle = set
		}
	}
	return c, nil
}
