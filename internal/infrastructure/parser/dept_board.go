package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NoticeScanner/internal/board"
	"NoticeScanner/internal/clock"
	"NoticeScanner/internal/domain"
)

// Selector defaults for the department board markup. The exact element and
// class names are an external contract of the source site; per-source
// overrides come in through board.Source.Options.
const (
	optListTable      = "listTable"
	optListLink       = "listLink"
	optImportantClass = "importantClass"
	optIDParam        = "idParam"
	optDetailTitle    = "detailTitle"
	optDetailInfoRow  = "detailInfoRow"
	optDetailContent  = "detailContent"

	defaultListTable      = "table.board-list"
	defaultListLink       = "td.b-title a"
	defaultImportantClass = "b-notice"
	defaultIDParam        = "no"
	defaultDetailTitle    = "div.board-view h4.b-title"
	defaultDetailInfoRow  = "div.board-view table.b-info tr"
	defaultDetailContent  = "div.board-view div.b-content"
)

// DeptBoardScanner crawls a department announcement board: the notice list
// page and, per notice, its detail page.
type DeptBoardScanner struct {
	client *http.Client
	logger *slog.Logger
}

var _ board.Scanner = (*DeptBoardScanner)(nil)

// NewDeptBoardScanner wires an HTTP client; a nil client gets a 20s timeout default.
func NewDeptBoardScanner(client *http.Client, logger *slog.Logger) *DeptBoardScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &DeptBoardScanner{client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (d *DeptBoardScanner) Name() string {
	return "deptboard"
}

// FetchList retrieves the list page and yields one summary per listed entry,
// in display order. Entries without a recognizable link still produce a
// summary with empty PostID/URL so that one malformed row never aborts the
// batch; callers drop those.
func (d *DeptBoardScanner) FetchList(ctx context.Context, src board.Source) ([]domain.NoticeSummary, error) {
	doc, err := d.fetchDocument(ctx, src.ListURL)
	if err != nil {
		return nil, err
	}

	table := doc.Find(option(src, optListTable, defaultListTable))
	if table.Length() == 0 {
		return nil, &domain.ParseError{URL: src.ListURL, Element: option(src, optListTable, defaultListTable)}
	}

	linkSel := option(src, optListLink, defaultListLink)
	importantClass := option(src, optImportantClass, defaultImportantClass)
	idParam := option(src, optIDParam, defaultIDParam)

	base, err := url.Parse(src.ListURL)
	if err != nil {
		return nil, &domain.ParseError{URL: src.ListURL, Element: "list url", Err: err}
	}

	var summaries []domain.NoticeSummary
	table.Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		summary := domain.NoticeSummary{
			Category:  src.Category,
			Important: row.HasClass(importantClass),
		}

		href, ok := row.Find(linkSel).First().Attr("href")
		if ok {
			if link, perr := base.Parse(strings.TrimSpace(href)); perr == nil {
				summary.URL = link.String()
				summary.PostID = link.Query().Get(idParam)
			}
		}

		if !summary.Deduplicable() {
			d.debug("list entry without usable link", "source", src.Name, "row", i)
		}
		summaries = append(summaries, summary)
	})

	return summaries, nil
}

// FetchDetail retrieves one notice's detail page and extracts the full
// record. The page carries a title heading, an info row with date,
// department and author in that fixed column order, and a content region.
func (d *DeptBoardScanner) FetchDetail(ctx context.Context, src board.Source, summary domain.NoticeSummary) (domain.NoticeRecord, error) {
	doc, err := d.fetchDocument(ctx, summary.URL)
	if err != nil {
		return domain.NoticeRecord{}, err
	}

	titleSel := option(src, optDetailTitle, defaultDetailTitle)
	title := doc.Find(titleSel)
	if title.Length() == 0 {
		return domain.NoticeRecord{}, &domain.ParseError{URL: summary.URL, Element: titleSel}
	}

	infoSel := option(src, optDetailInfoRow, defaultDetailInfoRow)
	cells := doc.Find(infoSel).First().Find("td")
	if cells.Length() < 3 {
		return domain.NoticeRecord{}, &domain.ParseError{URL: summary.URL, Element: infoSel}
	}

	date, err := clock.ParseBoardDate(strings.TrimSpace(cells.Eq(0).Text()))
	if err != nil {
		return domain.NoticeRecord{}, fmt.Errorf("notice %s date: %w", summary.PostID, err)
	}

	contentSel := option(src, optDetailContent, defaultDetailContent)
	content := doc.Find(contentSel)
	if content.Length() == 0 {
		return domain.NoticeRecord{}, &domain.ParseError{URL: summary.URL, Element: contentSel}
	}

	record := domain.NoticeRecord{
		PostID:     summary.PostID,
		Title:      strings.TrimSpace(title.First().Text()),
		Date:       date,
		Department: strings.TrimSpace(cells.Eq(1).Text()),
		Author:     strings.TrimSpace(cells.Eq(2).Text()),
		Text:       normalizeBody(content.First().Text()),
		URL:        summary.URL,
		Category:   summary.Category,
		Important:  summary.Important,
		FindAt:     clock.Now(false),
	}

	return record, nil
}

func (d *DeptBoardScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &domain.NetworkError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", "NoticeScanner/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.NetworkError{URL: pageURL, Err: fmt.Errorf("board returned %s", resp.Status)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &domain.ParseError{URL: pageURL, Element: "document", Err: err}
	}

	return doc, nil
}

// normalizeBody replaces non-breaking spaces with ordinary spaces and trims
// surrounding whitespace.
func normalizeBody(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))
}

func option(src board.Source, key, fallback string) string {
	if v, ok := src.Options[key]; ok && v != "" {
		return v
	}
	return fallback
}

func (d *DeptBoardScanner) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
