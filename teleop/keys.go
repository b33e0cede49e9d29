package teleop

import "github.com/beka-birhanu/vinom-maze/maze"

// Command is what a key press asks for.
type Command uint8

const (
	CmdMove  Command = iota + 1 // Step one cell in Key.Dir
	CmdSense                    // Sense all four sides of the current cell
	CmdQuit                     // Leave the session
)

// Key is a decoded key press.
type Key struct {
	Cmd Command
	Dir maze.Direction
}

const (
	keyEscape = 0x1b
	keyCtrlC  = 0x03
	keyCtrlD  = 0x04
)

var arrows = map[byte]maze.Direction{
	'A': maze.North,
	'B': maze.South,
	'C': maze.East,
	'D': maze.West,
}

var letters = map[byte]Key{
	'k': {Cmd: CmdMove, Dir: maze.North},
	'j': {Cmd: CmdMove, Dir: maze.South},
	'l': {Cmd: CmdMove, Dir: maze.East},
	'h': {Cmd: CmdMove, Dir: maze.West},
	's': {Cmd: CmdSense},
	'q': {Cmd: CmdQuit},
	keyCtrlC: {Cmd: CmdQuit},
	keyCtrlD: {Cmd: CmdQuit},
}

// ParseKeys decodes raw terminal input. Arrow keys arrive as ESC [ A..D;
// unknown bytes and sequences are dropped.
func ParseKeys(input []byte) []Key {
	var keys []Key
	for idx := 0; idx < len(input); idx++ {
		b := input[idx]
		if b == keyEscape {
			if idx+2 < len(input) && (input[idx+1] == '[' || input[idx+1] == 'O') {
				if d, ok := arrows[input[idx+2]]; ok {
					keys = append(keys, Key{Cmd: CmdMove, Dir: d})
				}
				idx += 2
			}
			continue
		}
		if key, ok := letters[b]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}
