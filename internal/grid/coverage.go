package grid

// Coverage summarises which part of the grid holds data.
type Coverage struct {
	Width  int `json:"width"`
	Cells  int `json:"cells"`
	MinCol int `json:"min_col"`
	MaxCol int `json:"max_col"`
	MinRow int `json:"min_row"`
	MaxRow int `json:"max_row"`

	// Holes counts absent cells inside the bounding box of present ones.
	Holes int `json:"holes"`
}

// Bounds returns the bounding box in metres of the present cells.
func (c Coverage) Bounds() (minX, minY, maxX, maxY float64) {
	return float64(c.MinCol) * CellSize, float64(c.MinRow) * CellSize,
		float64(c.MaxCol) * CellSize, float64(c.MaxRow) * CellSize
}

// Coverage scans the grid and reports its extent. An empty grid reports
// zero cells and a zero bounding box.
func (g *Grid) Coverage() Coverage {
	cov := Coverage{Width: g.width, Cells: g.count}
	if g.count == 0 {
		return cov
	}

	first := true
	for id, ok := range g.present {
		if !ok {
			continue
		}
		col, row := id%g.width, id/g.width
		if first {
			cov.MinCol, cov.MaxCol, cov.MinRow, cov.MaxRow = col, col, row, row
			first = false
			continue
		}
		cov.MinCol = min(cov.MinCol, col)
		cov.MaxCol = max(cov.MaxCol, col)
		cov.MinRow = min(cov.MinRow, row)
		cov.MaxRow = max(cov.MaxRow, row)
	}

	box := (cov.MaxCol - cov.MinCol + 1) * (cov.MaxRow - cov.MinRow + 1)
	cov.Holes = box - g.count
	return cov
}
