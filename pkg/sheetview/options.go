// Package sheetview renders spreadsheet regions addressed by data source
// names into grids of cells with merge spans and CSS style buckets.
package sheetview

import "fmt"

// Mode selects which part of a sheet is rendered when the locator carries
// no explicit selection.
type Mode string

const (
	// ModeHead renders only the repeated header rows.
	ModeHead Mode = "head"
	// ModeBody renders the used range without the header rows.
	ModeBody Mode = "body"
	// ModeAll renders both.
	ModeAll Mode = "all"
)

// ParseMode maps a mode name to a Mode. An empty name means ModeAll.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAll:
		return ModeAll, nil
	case ModeHead, ModeBody:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid mode: %s (must be head, body, or all)", s)
}

// Options configures rendering.
type Options struct {
	// Mode specifies which rows are rendered (head, body, all).
	Mode Mode
	// ByRef keys rows by row number and cells by column name instead of
	// by position.
	ByRef bool
	// IgnoreStyles skips stylesheet generation.
	IgnoreStyles bool
	// AdditionalCSS is appended to the generated stylesheet.
	AdditionalCSS string
	// RootID scopes every generated selector under "#RootID".
	RootID string
	// Calculate shows formula results instead of formula text.
	// If nil, defaults to true.
	Calculate *bool
	// Format applies number formats to numeric values.
	// If nil, defaults to true.
	Format *bool
}

// DefaultOptions returns default render options.
func DefaultOptions() Options {
	return Options{
		Mode: ModeAll,
	}
}

// ShouldCalculate returns whether formulas are evaluated.
func (o Options) ShouldCalculate() bool {
	if o.Calculate != nil {
		return *o.Calculate
	}
	return true
}

// ShouldFormat returns whether number formats are applied.
func (o Options) ShouldFormat() bool {
	if o.Format != nil {
		return *o.Format
	}
	return true
}

func (o Options) includeHead() bool {
	return o.Mode == ModeHead || o.Mode == ModeAll || o.Mode == ""
}

func (o Options) includeBody() bool {
	return o.Mode != ModeHead
}
