// Package duplicates looks up open issues at the location a student is
// reporting from, so an already-reported problem is not filed twice.
package duplicates

import (
	"context"
	"fmt"
	"strings"

	"campus-gms/catalog"
	"campus-gms/forms"
	"campus-gms/types"
)

// NoneOfTheAbove labels the sentinel choice that lets submission proceed.
const NoneOfTheAbove = "None of the Above"

// Fingerprint is the location key duplicates are matched on.
type Fingerprint struct {
	ActionItem string
	Block      string
	Floor      string
	UseFloor   bool
}

// FingerprintFor extracts the fingerprint from a form state. It reports
// false while the category does no duplicate checks or a location part is
// still empty.
func FingerprintFor(def *catalog.Category, st forms.State) (Fingerprint, bool) {
	if !def.DuplicateCheck || def.Location == catalog.LocationNone {
		return Fingerprint{}, false
	}
	fp := Fingerprint{
		ActionItem: def.ActionItem,
		Block:      strings.TrimSpace(st.Field(catalog.FieldBlock)),
		UseFloor:   def.UsesFloor(),
	}
	if fp.Block == "" {
		return Fingerprint{}, false
	}
	if fp.UseFloor {
		fp.Floor = strings.TrimSpace(st.Field(catalog.FieldFloor))
		if fp.Floor == "" {
			return Fingerprint{}, false
		}
	}
	return fp, true
}

// Query is the request sent to the similar-issues endpoint.
func (fp Fingerprint) Query() types.SimilarQuery {
	return types.SimilarQuery{ActionItem: fp.ActionItem, Block: fp.Block, Floor: fp.Floor}
}

// Matches applies the client-side filter: block compared ignoring case and
// surrounding space, floor and action item compared exactly.
func (fp Fingerprint) Matches(is types.IssueView) bool {
	if is.ActionItem != fp.ActionItem {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(is.Block), fp.Block) {
		return false
	}
	if fp.UseFloor && is.Floor != fp.Floor {
		return false
	}
	return true
}

// Filter keeps the issues matching fp, in server order.
func Filter(fp Fingerprint, issues []types.IssueView) []types.IssueView {
	var out []types.IssueView
	for _, is := range issues {
		if fp.Matches(is) {
			out = append(out, is)
		}
	}
	return out
}

// Candidate is one entry of the choice list. The sentinel has no issue.
type Candidate struct {
	Label string
	Issue *types.IssueView
}

// IsSentinel reports whether c is "None of the Above".
func (c Candidate) IsSentinel() bool {
	return c.Issue == nil
}

// Choices turns matches into a selectable list ending with the sentinel.
// No matches means nothing to choose from.
func Choices(matches []types.IssueView) []Candidate {
	if len(matches) == 0 {
		return nil
	}
	out := make([]Candidate, 0, len(matches)+1)
	for i := range matches {
		is := matches[i]
		out = append(out, Candidate{Label: label(is), Issue: &is})
	}
	return append(out, Candidate{Label: NoneOfTheAbove})
}

func label(is types.IssueView) string {
	where := is.Block
	if is.Floor != "" {
		where += "/" + is.Floor
	}
	desc := is.Comments
	if desc == "" {
		desc = is.IssueCat
	}
	if r := []rune(desc); len(r) > 60 {
		desc = string(r[:57]) + "..."
	}
	return fmt.Sprintf("[%s] %s %s: %s (%s)", is.Ticket, is.ActionItem, where, desc, is.Status)
}

// Result is the outcome of one lookup.
type Result struct {
	Fingerprint Fingerprint
	Candidates  []Candidate
	Generation  uint64
	Err         error
}

// HasMatches reports whether any real issue was found.
func (r Result) HasMatches() bool {
	return len(r.Candidates) > 0
}

// Source is the backend query the lookup relies on.
type Source interface {
	SimilarIssues(ctx context.Context, q types.SimilarQuery) ([]types.IssueView, error)
}

// Lookup queries a Source and filters what it returns.
type Lookup struct {
	src Source
}

// NewLookup returns a Lookup over src.
func NewLookup(src Source) *Lookup {
	return &Lookup{src: src}
}

// Find runs one lookup for fp.
func (l *Lookup) Find(ctx context.Context, fp Fingerprint) (Result, error) {
	issues, err := l.src.SimilarIssues(ctx, fp.Query())
	if err != nil {
		return Result{Fingerprint: fp}, fmt.Errorf("similar issues: %w", err)
	}
	return Result{Fingerprint: fp, Candidates: Choices(Filter(fp, issues))}, nil
}
