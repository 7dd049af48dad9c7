// Package spatial provides a uniform grid for creature radius queries.
//
// The grid stores integer indices into a caller-owned slice together with
// their positions, so queries can answer exact distances without touching
// the caller's entities.
package spatial

import (
	"math"
)

// point is one indexed entry in a cell
type point struct {
	id   uint32
	x, y float64
}

// Grid buckets points into fixed-size cells.
//
// Melee reach is under one cell at the default 100-unit cell size; a full
// charge kinetic strike (radius 250) spans a 6x6 block of cells.
//
// Cells are stored in row-major order (cells[row*cols+col]).
type Grid struct {
	invCellSize float64
	cols, rows  int
	cells       [][]point
	scratch     []uint32 // reused by Within
}

// NewGrid creates a grid covering an arena of the given size. capacity is
// the expected number of points and only sizes the cell buffers.
func NewGrid(width, height, cellSize float64, capacity int) *Grid {
	cols := max(int(math.Ceil(width/cellSize)), 1)
	rows := max(int(math.Ceil(height/cellSize)), 1)

	cells := make([][]point, cols*rows)
	perCell := max(capacity/len(cells), 4)
	for i := range cells {
		cells[i] = make([]point, 0, perCell)
	}

	return &Grid{
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 16),
	}
}

// Clear empties every cell, keeping capacity.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds id at (x, y). Positions outside the arena land in the nearest
// edge cell.
func (g *Grid) Insert(id uint32, x, y float64) {
	col, row := g.cellOf(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], point{id: id, x: x, y: y})
}

func (g *Grid) cellOf(x, y float64) (col, row int) {
	col = min(max(int(x*g.invCellSize), 0), g.cols-1)
	row = min(max(int(y*g.invCellSize), 0), g.rows-1)
	return col, row
}

// forEachInRadius calls fn with every point whose distance to (cx, cy) is at
// most radius.
func (g *Grid) forEachInRadius(cx, cy, radius float64, fn func(p point, dist float64)) {
	minCol, minRow := g.cellOf(cx-radius, cy-radius)
	maxCol, maxRow := g.cellOf(cx+radius, cy+radius)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			for _, p := range g.cells[row*g.cols+col] {
				if d := math.Hypot(p.x-cx, p.y-cy); d <= radius {
					fn(p, d)
				}
			}
		}
	}
}

// Within returns the ids of points within radius of (cx, cy).
//
// The returned slice is reused by the next call; copy it to keep it.
func (g *Grid) Within(cx, cy, radius float64) []uint32 {
	g.scratch = g.scratch[:0]
	g.forEachInRadius(cx, cy, radius, func(p point, _ float64) {
		g.scratch = append(g.scratch, p.id)
	})
	return g.scratch
}

// Nearest returns the id of the closest point within radius of (cx, cy)
// accepted by keep. A nil keep accepts every point. Ties go to the point
// inserted first in its cell.
func (g *Grid) Nearest(cx, cy, radius float64, keep func(id uint32) bool) (uint32, bool) {
	var (
		best     uint32
		bestDist = math.Inf(1)
		found    bool
	)
	g.forEachInRadius(cx, cy, radius, func(p point, d float64) {
		if d < bestDist && (keep == nil || keep(p.id)) {
			best, bestDist, found = p.id, d, true
		}
	})
	return best, found
}
