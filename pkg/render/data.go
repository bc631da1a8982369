package render

import (
	"fmt"
	"time"

	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/domain"
)

const defaultStatusEmoji = "💭"

// Input is what the page is made of
type Input struct {
	Profile   domain.Profile
	Analytics map[string]string
	Feeds     map[string]config.FeedDef
	Tags      []string // distinct tags in first-seen order
	Sections  []domain.TagSection
	Timeline  []domain.YearBucket
	Status    *domain.Status
	Now       *domain.NowPost
	BuildTime time.Time
}

// Data prepares render data. Status emoji shortcode is rendered to html here.
func (r *Renderer) Data(in Input) domain.RenderData {
	res := domain.RenderData{
		Profile:        in.Profile,
		Analytics:      in.Analytics,
		Feeds:          FeedLinks(in.Feeds),
		YearRange:      YearRange(in.Profile.CopyrightStart, in.BuildTime),
		Filters:        append([]string{}, in.Tags...),
		FilterSections: in.Sections,
		Timeline:       in.Timeline,
		Now:            in.Now,
		GeneratedAt:    in.BuildTime,
	}
	if res.Timeline == nil {
		res.Timeline = []domain.YearBucket{}
	}

	if in.Status != nil {
		emoji := in.Status.Emoji
		if emoji == "" {
			emoji = defaultStatusEmoji
		}
		res.Status = &domain.StatusView{Emoji: r.MarkdownInline(emoji), Message: in.Status.Message}
		if in.Status.LimitedAvailability {
			res.Status.BusyClass = "status-busy"
		}
	}
	return res
}

// FeedLinks lists configured feeds for the page head, ordered by file name
func FeedLinks(defs map[string]config.FeedDef) []domain.FeedLink {
	cfg := config.Config{Feeds: defs}
	res := make([]domain.FeedLink, 0, len(defs))
	for _, file := range cfg.FeedNames() {
		def := defs[file]
		res = append(res, domain.FeedLink{File: file, Title: def.Title, Type: def.Type, Mime: def.Mime()})
	}
	return res
}

// YearRange is "start–now", or a single year if start is not set or is the current year
func YearRange(start int, now time.Time) string {
	year := now.Year()
	if start == 0 || start >= year {
		return fmt.Sprintf("%d", year)
	}
	return fmt.Sprintf("%d–%d", start, year)
}
