package source

import (
	"errors"
	"strings"
)

// Phase is the pagination phase of a single repository
type Phase int

// pagination phases
const (
	PhaseFetching Phase = iota // request for the current cursor is due
	PhaseHasMore               // page consumed, more pages reported
	PhaseDone                  // terminal
	PhaseError                 // page failed, goes to done
)

func (p Phase) String() string {
	switch p {
	case PhaseFetching:
		return "fetching"
	case PhaseHasMore:
		return "has-more"
	case PhaseDone:
		return "done"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// PageState is the paginator state of one repository
type PageState struct {
	Phase  Phase
	Cursor *string
	Pages  int   // pages consumed
	Err    error // set once pagination failed
}

// Page is one response of the repository query
type Page struct {
	Target     string          // owner/repo, for errors
	HasData    bool            // response carried a data object
	Repository *repositoryNode // nil if repository is absent or inaccessible
	Errors     []string        // graphql errors, if any
	Err        error           // transport or decode failure
}

// Next is the pure transition function of the paginator. The page is only
// looked at in PhaseFetching.
func Next(st PageState, page Page) PageState {
	switch st.Phase {
	case PhaseHasMore:
		return PageState{Phase: PhaseFetching, Cursor: st.Cursor, Pages: st.Pages}
	case PhaseError, PhaseDone:
		return PageState{Phase: PhaseDone, Cursor: st.Cursor, Pages: st.Pages, Err: st.Err}
	}

	switch {
	case page.Err != nil:
		return PageState{Phase: PhaseError, Cursor: st.Cursor, Pages: st.Pages, Err: page.Err}
	case !page.HasData:
		return PageState{Phase: PhaseError, Cursor: st.Cursor, Pages: st.Pages,
			Err: &UpstreamDataError{Service: "github", Target: page.Target, Reason: "no data in response", Err: gqlErrors(page.Errors)}}
	case page.Repository == nil:
		return PageState{Phase: PhaseError, Cursor: st.Cursor, Pages: st.Pages,
			Err: &UpstreamDataError{Service: "github", Target: page.Target, Reason: "repository not found or access denied", Err: gqlErrors(page.Errors)}}
	}

	pages := st.Pages + 1
	d := page.Repository.Discussions
	if d == nil || !d.PageInfo.HasNextPage || d.PageInfo.EndCursor == "" {
		return PageState{Phase: PhaseDone, Cursor: st.Cursor, Pages: pages}
	}
	if st.Cursor != nil && *st.Cursor == d.PageInfo.EndCursor {
		// same cursor again would loop forever
		return PageState{Phase: PhaseDone, Cursor: st.Cursor, Pages: pages}
	}
	cursor := d.PageInfo.EndCursor
	return PageState{Phase: PhaseHasMore, Cursor: &cursor, Pages: pages}
}

// Paginate drives the state machine until it is done. fetch is called with the
// current cursor, one page at a time; consume gets every successful page and
// a flag telling whether it is the first one.
func Paginate(fetch func(cursor *string) Page, consume func(page Page, first bool)) PageState {
	st := PageState{Phase: PhaseFetching}
	for st.Phase != PhaseDone {
		if st.Phase != PhaseFetching {
			st = Next(st, Page{})
			continue
		}
		page := fetch(st.Cursor)
		st = Next(st, page)
		if st.Phase == PhaseHasMore || st.Phase == PhaseDone {
			consume(page, st.Pages == 1)
		}
	}
	return st
}

func gqlErrors(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(msgs, "; "))
}
