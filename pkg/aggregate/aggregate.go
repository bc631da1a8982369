// Package aggregate runs all fetchers concurrently and merges their results
// into a single ordered snapshot.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/lifestream/pkg/domain"
	"github.com/umputun/lifestream/pkg/source"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports ../source Fetcher

// Snapshot is the merged outcome of one aggregation run
type Snapshot struct {
	Items    []domain.Item     // valid items, newest first
	TagNames map[string]string // display names provided by services
	Status   *domain.Status
	Now      *domain.NowPost
	Reports  []SourceReport // one per fetcher, in registration order
}

// SourceReport summarizes one fetcher run
type SourceReport struct {
	Name     string
	Items    int
	Err      error
	Duration time.Duration
}

// Aggregator fans out to fetchers and joins their results
type Aggregator struct {
	fetchers []source.Fetcher
}

// New makes Aggregator for fetchers. Registration order is used as a tie-breaker
// in ordering, so the same configuration always gives the same output.
func New(fetchers ...source.Fetcher) *Aggregator {
	return &Aggregator{fetchers: fetchers}
}

// Run starts every fetcher concurrently and waits for all of them. A failing or
// panicking fetcher doesn't cancel others, its result is just empty.
func (a *Aggregator) Run(ctx context.Context) Snapshot {
	results := make([]source.Result, len(a.fetchers))
	durations := make([]time.Duration, len(a.fetchers))

	var g errgroup.Group
	for i, f := range a.fetchers {
		g.Go(func() error {
			st := time.Now()
			results[i] = safeFetch(ctx, f)
			durations[i] = time.Since(st)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	snap := merge(results)
	for i, r := range results {
		rep := SourceReport{Name: r.Source, Items: len(r.Items), Err: r.Err, Duration: durations[i]}
		snap.Reports = append(snap.Reports, rep)
		switch {
		case r.Err == nil:
			lgr.Printf("[INFO] %s: %d items in %v", rep.Name, rep.Items, rep.Duration.Round(time.Millisecond))
		case r.Partial():
			lgr.Printf("[WARN] %s: %d items in %v, partial: %v", rep.Name, rep.Items, rep.Duration.Round(time.Millisecond), r.Err)
		default:
			lgr.Printf("[WARN] %s: failed: %v", rep.Name, r.Err)
		}
	}
	lgr.Printf("[INFO] aggregated %d items from %d sources", len(snap.Items), len(a.fetchers))
	return snap
}

// safeFetch calls fetcher, turning a panic into a failed result
func safeFetch(ctx context.Context, f source.Fetcher) (res source.Result) {
	name := f.Name()
	defer func() {
		if r := recover(); r != nil {
			lgr.Printf("[ERROR] fetcher %s panicked: %v", name, r)
			res = source.Result{Source: name, Err: fmt.Errorf("fetcher %s panicked: %v", name, r)}
		}
	}()
	res = f.Fetch(ctx)
	if res.Source == "" {
		res.Source = name
	}
	return res
}

// ranked is an item with its position, used for deterministic ordering
type ranked struct {
	item    domain.Item
	fetcher int
	index   int
}

// merge joins results in registration order. Items breaking invariants are dropped,
// the rest is ordered by date descending, then service name, then fetcher
// registration order, then position within the fetcher.
func merge(results []source.Result) Snapshot {
	snap := Snapshot{TagNames: map[string]string{}}
	var all []ranked
	for fi, r := range results {
		for ii, item := range r.Items {
			if err := validate(item); err != nil {
				lgr.Printf("[WARN] %s: dropping item %q: %v", r.Source, item.URL, err)
				continue
			}
			item.Tags = domain.UniqueTags(item.Tags...)
			all = append(all, ranked{item: item, fetcher: fi, index: ii})
		}
		for tag, name := range r.TagNames {
			if _, ok := snap.TagNames[tag]; !ok {
				snap.TagNames[tag] = name
			}
		}
		if r.Status != nil && snap.Status == nil {
			snap.Status = r.Status
		}
		if r.Now != nil && (snap.Now == nil || r.Now.Date.After(snap.Now.Date)) {
			if snap.Now != nil {
				lgr.Printf("[DEBUG] now post from %s replaced by newer one from %s", snap.Now.Date.Format(time.DateOnly), r.Source)
			}
			snap.Now = r.Now
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.item.Date.Equal(b.item.Date) {
			return a.item.Date.After(b.item.Date)
		}
		if a.item.Service != b.item.Service {
			return a.item.Service < b.item.Service
		}
		if a.fetcher != b.fetcher {
			return a.fetcher < b.fetcher
		}
		return a.index < b.index
	})

	snap.Items = make([]domain.Item, 0, len(all))
	for _, r := range all {
		snap.Items = append(snap.Items, r.item)
	}
	return snap
}

// validate checks item invariants
func validate(item domain.Item) error {
	switch {
	case item.Date.IsZero():
		return fmt.Errorf("no date")
	case !item.Type.Valid():
		return fmt.Errorf("unknown type %q", item.Type)
	case !item.Service.Valid():
		return fmt.Errorf("unknown service %q", item.Service)
	}
	return nil
}
