// Package dsn parses and serializes spreadsheet data source names.
//
// Two grammars decode to the same Locator:
//
//	file:5|1!D2:G5!vertical                              (legacy)
//	spreadsheet://5?index=1&range=D2%3AG5&direction=vertical (URI)
//
// Encoding always produces the URI form.
package dsn

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ukaji3/sheetview-go/pkg/sheetview/address"
)

// Scheme is the URI scheme of the canonical form.
const Scheme = "spreadsheet"

const legacyPrefix = "file:"

// ErrInvalidLocator indicates an unusable data source name.
var ErrInvalidLocator = errors.New("invalid locator")

// LocatorError describes why a data source name was rejected. It matches
// ErrInvalidLocator and unwraps to the underlying cause, if any.
type LocatorError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *LocatorError) Error() string {
	msg := fmt.Sprintf("invalid locator %q: %s", e.Raw, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LocatorError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidLocator) hold for every LocatorError.
func (e *LocatorError) Is(target error) bool {
	return target == ErrInvalidLocator
}

func invalid(raw, reason string, err error) *LocatorError {
	return &LocatorError{Raw: raw, Reason: reason, Err: err}
}

// Direction is the reading direction of the rendered table.
type Direction string

const (
	DirectionNone       Direction = ""
	DirectionHorizontal Direction = "horizontal"
	DirectionVertical   Direction = "vertical"
)

func parseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToLower(s)) {
	case DirectionHorizontal:
		return DirectionHorizontal, true
	case DirectionVertical:
		return DirectionVertical, true
	}
	return DirectionNone, false
}

// Locator identifies a document, a sheet in it and an optional selection.
type Locator struct {
	DocumentID int       `json:"documentId"`
	SheetIndex int       `json:"sheetIndex"`
	Selection  string    `json:"selection,omitempty"`
	Direction  Direction `json:"direction,omitempty"`
}

// String returns the canonical URI form.
func (l Locator) String() string {
	return Encode(l)
}

// Resolver checks that the document behind a locator can be loaded.
type Resolver interface {
	Resolve(ctx context.Context, documentID int) error
}

// Codec decodes data source names and verifies their documents.
type Codec struct {
	Resolver Resolver
}

// NewCodec returns a Codec backed by r. A nil r skips document checks.
func NewCodec(r Resolver) *Codec {
	return &Codec{Resolver: r}
}

// Decode parses raw and confirms the referenced document resolves.
func (c *Codec) Decode(ctx context.Context, raw string) (Locator, error) {
	loc, err := Parse(raw)
	if err != nil {
		return Locator{}, err
	}
	if c == nil || c.Resolver == nil {
		return loc, nil
	}
	if err := c.Resolver.Resolve(ctx, loc.DocumentID); err != nil {
		return Locator{}, invalid(raw, fmt.Sprintf("document %d cannot be resolved", loc.DocumentID), err)
	}
	return loc, nil
}

// Parse decodes either grammar without touching the document.
func Parse(raw string) (Locator, error) {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return Locator{}, invalid(raw, "empty", nil)
	case strings.HasPrefix(strings.ToLower(s), Scheme+"://"):
		return parseURI(raw, s)
	default:
		return parseLegacy(raw, s)
	}
}

// parseLegacy reads ["file:"] DOCID "|" SHEET ["!" SEL] ["!" SEL] ["!" DIR].
func parseLegacy(raw, s string) (Locator, error) {
	if len(s) >= len(legacyPrefix) && strings.EqualFold(s[:len(legacyPrefix)], legacyPrefix) {
		s = s[len(legacyPrefix):]
	}

	docPart, rest, ok := strings.Cut(s, "|")
	if !ok {
		return Locator{}, invalid(raw, "missing sheet separator", nil)
	}
	docID, err := parseDocumentID(docPart)
	if err != nil {
		return Locator{}, invalid(raw, "bad document id", err)
	}

	parts := strings.Split(rest, "!")
	sheet, err := parseSheetIndex(parts[0])
	if err != nil {
		return Locator{}, invalid(raw, "bad sheet index", err)
	}
	loc := Locator{DocumentID: docID, SheetIndex: sheet}

	extra := parts[1:]
	if n := len(extra); n > 0 {
		if dir, ok := parseDirection(extra[n-1]); ok {
			loc.Direction = dir
			extra = extra[:n-1]
		}
	}
	if len(extra) > 2 {
		return Locator{}, invalid(raw, "too many selection parts", nil)
	}
	for _, sel := range extra {
		if sel == "" {
			return Locator{}, invalid(raw, "empty selection part", nil)
		}
	}
	loc.Selection = strings.Join(extra, ":")

	if err := validateSelection(loc.Selection); err != nil {
		return Locator{}, invalid(raw, "bad selection", err)
	}
	return loc, nil
}

func parseURI(raw, s string) (Locator, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Locator{}, invalid(raw, "malformed uri", err)
	}
	if u.User != nil || u.Port() != "" || (u.Path != "" && u.Path != "/") || u.Fragment != "" {
		return Locator{}, invalid(raw, "unexpected uri component", nil)
	}
	docID, err := parseDocumentID(u.Hostname())
	if err != nil {
		return Locator{}, invalid(raw, "bad document id", err)
	}
	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return Locator{}, invalid(raw, "malformed query", err)
	}

	loc := Locator{DocumentID: docID}
	if q.Has("index") {
		if loc.SheetIndex, err = parseSheetIndex(q.Get("index")); err != nil {
			return Locator{}, invalid(raw, "bad sheet index", err)
		}
	}
	if v := q.Get("range"); v != "" {
		if err := validateSelection(v); err != nil {
			return Locator{}, invalid(raw, "bad selection", err)
		}
		loc.Selection = strings.TrimSpace(v)
	}
	if v := q.Get("direction"); v != "" {
		dir, ok := parseDirection(v)
		if !ok {
			return Locator{}, invalid(raw, fmt.Sprintf("unknown direction %q", v), nil)
		}
		loc.Direction = dir
	}
	return loc, nil
}

// Encode serializes l in the URI grammar. Query keys are written in the
// order index, range, direction; empty range and direction are omitted.
func Encode(l Locator) string {
	var b strings.Builder
	b.WriteString(Scheme)
	b.WriteString("://")
	b.WriteString(strconv.Itoa(l.DocumentID))
	b.WriteString("?index=")
	b.WriteString(strconv.Itoa(l.SheetIndex))
	if l.Selection != "" {
		b.WriteString("&range=")
		b.WriteString(url.QueryEscape(l.Selection))
	}
	if l.Direction != DirectionNone {
		b.WriteString("&direction=")
		b.WriteString(url.QueryEscape(string(l.Direction)))
	}
	return b.String()
}

func parseDocumentID(s string) (int, error) {
	if !isDigits(s) {
		return 0, fmt.Errorf("%q is not a positive integer", s)
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if id < 1 {
		return 0, fmt.Errorf("%q is not a positive integer", s)
	}
	return id, nil
}

func parseSheetIndex(s string) (int, error) {
	digits := strings.TrimPrefix(s, "-")
	if !isDigits(digits) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if idx < 0 {
		return 0, fmt.Errorf("sheet index %d is negative", idx)
	}
	return idx, nil
}

func validateSelection(sel string) error {
	if sel == "" {
		return nil
	}
	_, err := address.Tokenize(sel)
	return err
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
