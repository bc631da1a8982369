package source

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discussionsPage(hasNext bool, cursor string) Page {
	return Page{Target: "o/r", HasData: true, Repository: &repositoryNode{
		Discussions: &discussionConnection{PageInfo: pageInfo{HasNextPage: hasNext, EndCursor: cursor}},
	}}
}

func TestNext(t *testing.T) {
	c1 := "c1"
	tbl := []struct {
		name      string
		st        PageState
		page      Page
		wantPhase Phase
		wantPages int
		wantErr   string
		wantCur   *string
	}{
		{name: "has next", st: PageState{Phase: PhaseFetching}, page: discussionsPage(true, "c1"),
			wantPhase: PhaseHasMore, wantPages: 1, wantCur: &c1},
		{name: "last page", st: PageState{Phase: PhaseFetching, Cursor: &c1, Pages: 1}, page: discussionsPage(false, ""),
			wantPhase: PhaseDone, wantPages: 2, wantCur: &c1},
		{name: "next without cursor", st: PageState{Phase: PhaseFetching}, page: discussionsPage(true, ""),
			wantPhase: PhaseDone, wantPages: 1},
		{name: "repeated cursor", st: PageState{Phase: PhaseFetching, Cursor: &c1, Pages: 1}, page: discussionsPage(true, "c1"),
			wantPhase: PhaseDone, wantPages: 2, wantCur: &c1},
		{name: "discussions disabled", st: PageState{Phase: PhaseFetching},
			page:      Page{HasData: true, Repository: &repositoryNode{}},
			wantPhase: PhaseDone, wantPages: 1},
		{name: "transport error", st: PageState{Phase: PhaseFetching}, page: Page{Err: errors.New("boom")},
			wantPhase: PhaseError, wantErr: "boom"},
		{name: "no data", st: PageState{Phase: PhaseFetching}, page: Page{Target: "o/r", Errors: []string{"bad credentials"}},
			wantPhase: PhaseError, wantErr: "github o/r: no data in response: bad credentials"},
		{name: "no repository", st: PageState{Phase: PhaseFetching}, page: Page{Target: "o/r", HasData: true},
			wantPhase: PhaseError, wantErr: "github o/r: repository not found or access denied"},
		{name: "has more goes fetching", st: PageState{Phase: PhaseHasMore, Cursor: &c1, Pages: 1},
			wantPhase: PhaseFetching, wantPages: 1, wantCur: &c1},
		{name: "error goes done", st: PageState{Phase: PhaseError, Err: errors.New("boom")},
			wantPhase: PhaseDone, wantErr: "boom"},
		{name: "done stays done", st: PageState{Phase: PhaseDone, Pages: 3},
			wantPhase: PhaseDone, wantPages: 3},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			st := Next(tt.st, tt.page)
			assert.Equal(t, tt.wantPhase, st.Phase)
			assert.Equal(t, tt.wantPages, st.Pages)
			assert.Equal(t, tt.wantCur, st.Cursor)
			if tt.wantErr == "" {
				assert.NoError(t, st.Err)
				return
			}
			require.Error(t, st.Err)
			assert.Equal(t, tt.wantErr, st.Err.Error())
		})
	}
}

func TestNext_UpstreamErrorType(t *testing.T) {
	st := Next(PageState{Phase: PhaseFetching}, Page{Target: "o/r", HasData: true})
	var ue *UpstreamDataError
	require.ErrorAs(t, st.Err, &ue)
	assert.Equal(t, "o/r", ue.Target)
}

func TestPaginate(t *testing.T) {
	t.Run("three pages", func(t *testing.T) {
		var cursors []string
		var firsts []bool
		fetch := func(cursor *string) Page {
			c := "nil"
			if cursor != nil {
				c = *cursor
			}
			cursors = append(cursors, c)
			switch len(cursors) {
			case 1:
				return discussionsPage(true, "p2")
			case 2:
				return discussionsPage(true, "p3")
			}
			return discussionsPage(false, "")
		}
		st := Paginate(fetch, func(_ Page, first bool) { firsts = append(firsts, first) })
		assert.Equal(t, PhaseDone, st.Phase)
		assert.Equal(t, 3, st.Pages)
		assert.NoError(t, st.Err)
		assert.Equal(t, []string{"nil", "p2", "p3"}, cursors)
		assert.Equal(t, []bool{true, false, false}, firsts)
	})

	t.Run("error on second page keeps first", func(t *testing.T) {
		calls, consumed := 0, 0
		fetch := func(*string) Page {
			calls++
			if calls == 1 {
				return discussionsPage(true, "p2")
			}
			return Page{Err: errors.New("timeout")}
		}
		st := Paginate(fetch, func(Page, bool) { consumed++ })
		assert.Equal(t, PhaseDone, st.Phase)
		assert.Equal(t, 1, st.Pages)
		assert.Equal(t, 1, consumed)
		require.EqualError(t, st.Err, "timeout")
	})

	t.Run("cursor loop terminates", func(t *testing.T) {
		calls := 0
		fetch := func(*string) Page {
			calls++
			return discussionsPage(true, "same")
		}
		st := Paginate(fetch, func(Page, bool) {})
		assert.Equal(t, PhaseDone, st.Phase)
		assert.Equal(t, 2, calls)
	})
}

func TestPhase_String(t *testing.T) {
	for p, want := range map[Phase]string{PhaseFetching: "fetching", PhaseHasMore: "has-more",
		PhaseDone: "done", PhaseError: "error", Phase(42): "unknown"} {
		assert.Equal(t, want, fmt.Sprint(p))
	}
}
