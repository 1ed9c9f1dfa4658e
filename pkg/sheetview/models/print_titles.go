package models

// PrintTitles are the rows and columns a sheet repeats on every printed
// page. Zero values mean "not configured".
type PrintTitles struct {
	// R1 is the first repeated row (1-based).
	R1 int `json:"r1,omitempty"`
	// R2 is the last repeated row (1-based, inclusive).
	R2 int `json:"r2,omitempty"`
	// C1 is the first repeated column (1-based).
	C1 int `json:"c1,omitempty"`
	// C2 is the last repeated column (1-based, inclusive).
	C2 int `json:"c2,omitempty"`
}

// HasRows reports whether header rows are configured.
func (p PrintTitles) HasRows() bool {
	return p.R1 > 0 && p.R2 >= p.R1
}
