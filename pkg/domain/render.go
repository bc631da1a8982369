package domain

import "time"

// Status is the profile status reported by the forge
type Status struct {
	Emoji               string `json:"emoji"`
	Message             string `json:"message"`
	LimitedAvailability bool   `json:"limitedAvailability"`
}

// NowPost is the latest "now" discussion, shown outside of the timeline
type NowPost struct {
	Body string    `json:"body"`
	Date time.Time `json:"date"`
}

// Entry is an item decorated with display fields by the timeline assembler
type Entry struct {
	Item
	ID          string `json:"id"`
	TagClasses  string `json:"tag_classes"`
	SourceLabel string `json:"sourceLabel"`
	Summary     string `json:"summary,omitempty"`
}

// YearBucket holds timeline entries of a single calendar year
type YearBucket struct {
	Year  int     `json:"year"`
	Items []Entry `json:"items"`
}

// StatusView is the status prepared for the page
type StatusView struct {
	Emoji     string `json:"emoji"`
	Message   string `json:"message"`
	BusyClass string `json:"busyClass"`
}

// RenderData is everything the page template needs
type RenderData struct {
	Profile        Profile           `json:"profile"`
	Analytics      map[string]string `json:"analytics,omitempty"`
	Feeds          []FeedLink        `json:"feeds"`
	YearRange      string            `json:"year_range"`
	Filters        []string          `json:"filters"`
	FilterSections []TagSection      `json:"filter_sections"`
	Timeline       []YearBucket      `json:"timeline"`
	Status         *StatusView       `json:"status"`
	Now            *NowPost          `json:"now"`
	GeneratedAt    time.Time         `json:"generated_at"`
}
