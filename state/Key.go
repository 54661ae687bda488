// Package state implements the discrete state keys used to index
// tabular value functions.
//
// A Key combines the signed offset from the agent to the goal with
// the pattern of walls surrounding the agent. Because the offset is
// relative, two different cells in (possibly different) mazes with
// the same offset and the same surrounding walls map to the same Key,
// and values learned in one are shared with the other.
package state

import (
	"fmt"
	"strconv"
	"strings"
)

// Wall bits of a Key, in the same order as the agent's actions
const (
	WallRight uint8 = 1 << iota
	WallDown
	WallLeft
	WallUp
)

// Directions is the number of wall flags encoded in a Key
const Directions int = 4

// Point is an (x, y) coordinate on a grid
type Point struct {
	X, Y int
}

// Manhattan returns the Manhattan distance between p and q
func (p Point) Manhattan(q Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

// String returns the Point as "x,y"
func (p Point) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Key is a discrete learning state
type Key struct {
	DX, DY int
	Walls  uint8
}

// Encode encodes the agent position, goal position, and the wall flags
// adjacent to the agent into a Key. The walls are ordered as right,
// down, left, up.
func Encode(agent, goal Point, walls [Directions]bool) Key {
	var mask uint8
	for i, wall := range walls {
		if wall {
			mask |= 1 << i
		}
	}
	return Key{DX: goal.X - agent.X, DY: goal.Y - agent.Y, Walls: mask}
}

// Wall returns whether the wall flag for direction i is set
func (k Key) Wall(i int) bool {
	return k.Walls&(1<<i) != 0
}

// String returns the Key as "dx,dy,wwww" where each w is 0 or 1 in
// the order right, down, left, up
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(k.DX))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(k.DY))
	b.WriteByte(',')
	for i := 0; i < Directions; i++ {
		if k.Wall(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Key) UnmarshalText(text []byte) error {
	key, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = key
	return nil
}

// ParseKey is the inverse of Key.String
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("parseKey: malformed key %q", s)
	}

	dx, err := strconv.Atoi(parts[0])
	if err != nil {
		return Key{}, fmt.Errorf("parseKey: malformed x offset in %q: %v", s,
			err)
	}
	dy, err := strconv.Atoi(parts[1])
	if err != nil {
		return Key{}, fmt.Errorf("parseKey: malformed y offset in %q: %v", s,
			err)
	}

	pattern := parts[2]
	if len(pattern) != Directions {
		return Key{}, fmt.Errorf("parseKey: wall pattern %q must have %d "+
			"flags", pattern, Directions)
	}
	var mask uint8
	for i, c := range pattern {
		switch c {
		case '1':
			mask |= 1 << i
		case '0':
		default:
			return Key{}, fmt.Errorf("parseKey: illegal wall flag %q in %q",
				c, s)
		}
	}

	return Key{DX: dx, DY: dy, Walls: mask}, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
