package domain

import "time"

// FeedItem is an item selected for an output feed, with the fields a feed
// serializer needs
type FeedItem struct {
	Title string    `json:"title"`
	Body  string    `json:"body"`
	URL   string    `json:"url"`
	Date  time.Time `json:"date"`
	GUID  string    `json:"guid"`
}

// FeedLink describes a published feed for the page head
type FeedLink struct {
	File  string `json:"file"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Mime  string `json:"mime"`
}
