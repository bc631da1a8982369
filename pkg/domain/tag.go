package domain

// TagCategory is the filter group a tag is classified into
type TagCategory string

const (
	CategoryType  TagCategory = "type"
	CategoryGroup TagCategory = "group"
	CategoryRepo  TagCategory = "repo"
	CategoryTopic TagCategory = "topic"
)

// Tag is a classified tag with its display name
type Tag struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Category TagCategory `json:"category"`
	Color    string      `json:"color,omitempty"`
}

// TagSection is one group of filter tags on the page
type TagSection struct {
	Category TagCategory `json:"category"`
	Tags     []Tag       `json:"tags"`
}
