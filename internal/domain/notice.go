package domain

import "time"

// NoticeSummary is the lightweight listing-page view of a notice, produced by a
// board scanner and consumed by the dedup filter and the detail fetch.
type NoticeSummary struct {
	URL       string
	PostID    string
	Category  string
	Important bool
}

// Deduplicable reports whether the summary carries enough identity to be
// checked against storage. List entries without a recognizable link produce
// summaries with an empty PostID; those are tolerated noise and get dropped.
func (s NoticeSummary) Deduplicable() bool {
	return s.PostID != "" && s.URL != ""
}

// NoticeRecord is the fully parsed notice persisted to storage. Created once
// after a successful detail fetch; never updated or deleted by this system.
type NoticeRecord struct {
	PostID     string
	Title      string
	Department string
	Author     string
	Text       string
	Date       time.Time
	FindAt     time.Time
	URL        string
	Category   string
	Important  bool
}
