package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NoticeScanner/internal/board"
	"NoticeScanner/internal/clock"
	"NoticeScanner/internal/domain"
)

const listPage = `
<table class="board-list">
  <tbody>
    <tr class="b-notice">
      <td class="b-num">*</td>
      <td class="b-title"><a href="view.php?no=123">Pinned notice</a></td>
    </tr>
    <tr>
      <td class="b-num">42</td>
      <td class="b-title"><a href="view.php?no=124">Regular notice</a></td>
    </tr>
    <tr>
      <td class="b-num">41</td>
      <td class="b-title">Entry without a link</td>
    </tr>
  </tbody>
</table>`

const detailPage = `
<div class="board-view">
  <h4 class="b-title">  Midterm schedule  </h4>
  <table class="b-info">
    <tr><td>25.08.30</td><td>Computer Science</td><td>Office Staff</td></tr>
  </table>
  <div class="b-content">
    Exam starts at 9am.` + "\u00a0\u00a0" + `Bring your ID.
  </div>
</div>`

func testSource(listURL string) board.Source {
	return board.Source{
		Name:     "cse-notices",
		Category: "cse",
		ListURL:  listURL,
	}
}

func TestFetchList(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listPage))
	}))
	defer server.Close()

	sc := NewDeptBoardScanner(server.Client(), nil)
	summaries, err := sc.FetchList(context.Background(), testSource(server.URL+"/board/list.php"))
	if err != nil {
		t.Fatalf("FetchList error: %v", err)
	}

	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}

	pinned := summaries[0]
	if pinned.PostID != "123" || !pinned.Important {
		t.Fatalf("unexpected pinned summary: %+v", pinned)
	}
	if pinned.URL != server.URL+"/board/view.php?no=123" {
		t.Fatalf("relative link not resolved: %s", pinned.URL)
	}
	if pinned.Category != "cse" {
		t.Fatalf("unexpected category: %s", pinned.Category)
	}

	regular := summaries[1]
	if regular.PostID != "124" || regular.Important {
		t.Fatalf("unexpected regular summary: %+v", regular)
	}

	malformed := summaries[2]
	if malformed.PostID != "" || malformed.URL != "" {
		t.Fatalf("entry without link should have empty identity: %+v", malformed)
	}
	if malformed.Deduplicable() {
		t.Fatal("entry without link must not be deduplicable")
	}
}

func TestFetchListMissingTable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>maintenance</body></html>`))
	}))
	defer server.Close()

	sc := NewDeptBoardScanner(server.Client(), nil)
	_, err := sc.FetchList(context.Background(), testSource(server.URL))
	var perr *domain.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestFetchListNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sc := NewDeptBoardScanner(server.Client(), nil)
	_, err := sc.FetchList(context.Background(), testSource(server.URL))
	var nerr *domain.NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestFetchDetail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(detailPage))
	}))
	defer server.Close()

	summary := domain.NoticeSummary{
		URL:       server.URL + "/board/view.php?no=124",
		PostID:    "124",
		Category:  "cse",
		Important: true,
	}

	sc := NewDeptBoardScanner(server.Client(), nil)
	before := clock.Now(false)
	record, err := sc.FetchDetail(context.Background(), testSource(server.URL), summary)
	if err != nil {
		t.Fatalf("FetchDetail error: %v", err)
	}
	after := clock.Now(false)

	if record.Title != "Midterm schedule" {
		t.Fatalf("unexpected title: %q", record.Title)
	}
	if record.Department != "Computer Science" || record.Author != "Office Staff" {
		t.Fatalf("unexpected info row: %q / %q", record.Department, record.Author)
	}
	if record.Text != "Exam starts at 9am.  Bring your ID." {
		t.Fatalf("body not normalized: %q", record.Text)
	}

	wantDate := time.Date(2025, time.August, 30, 0, 0, 0, 0, clock.Regional)
	if !record.Date.Equal(wantDate) {
		t.Fatalf("unexpected date: %v", record.Date)
	}

	if record.FindAt.Before(before) || record.FindAt.After(after) {
		t.Fatalf("find_at %v not stamped at extraction time", record.FindAt)
	}
	if _, offset := record.FindAt.Zone(); offset != 9*60*60 {
		t.Fatalf("find_at not regional: %v", record.FindAt)
	}

	if record.PostID != "124" || record.Category != "cse" || !record.Important {
		t.Fatalf("summary identity not carried: %+v", record)
	}
}

func TestFetchDetailMalformed(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"missing title":    `<div class="board-view"><table class="b-info"><tr><td>25.01.01</td><td>d</td><td>a</td></tr></table><div class="b-content">x</div></div>`,
		"short info row":   `<div class="board-view"><h4 class="b-title">t</h4><table class="b-info"><tr><td>25.01.01</td></tr></table><div class="b-content">x</div></div>`,
		"missing content":  `<div class="board-view"><h4 class="b-title">t</h4><table class="b-info"><tr><td>25.01.01</td><td>d</td><td>a</td></tr></table></div>`,
		"unparseable date": `<div class="board-view"><h4 class="b-title">t</h4><table class="b-info"><tr><td>someday</td><td>d</td><td>a</td></tr></table><div class="b-content">x</div></div>`,
	}

	for name, page := range pages {
		page := page
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(page))
			}))
			defer server.Close()

			summary := domain.NoticeSummary{URL: server.URL, PostID: "7", Category: "cse"}
			sc := NewDeptBoardScanner(server.Client(), nil)
			_, err := sc.FetchDetail(context.Background(), testSource(server.URL), summary)
			if err == nil {
				t.Fatal("expected extraction failure")
			}

			var perr *domain.ParseError
			var ferr *clock.FormatError
			if !errors.As(err, &perr) && !errors.As(err, &ferr) {
				t.Fatalf("unexpected error type: %v", err)
			}
		})
	}
}

func TestSelectorOverrides(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<table class="notices">
		  <tbody>
		    <tr class="pinned"><td><a class="go" href="/v?id=9">hi</a></td></tr>
		  </tbody>
		</table>`))
	}))
	defer server.Close()

	src := board.Source{
		Name:     "alt",
		Category: "alt",
		ListURL:  server.URL + "/list",
		Options: map[string]string{
			"listTable":      "table.notices",
			"listLink":       "a.go",
			"importantClass": "pinned",
			"idParam":        "id",
		},
	}

	sc := NewDeptBoardScanner(server.Client(), nil)
	summaries, err := sc.FetchList(context.Background(), src)
	if err != nil {
		t.Fatalf("FetchList error: %v", err)
	}

	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].PostID != "9" || !summaries[0].Important {
		t.Fatalf("overrides not applied: %+v", summaries[0])
	}
}
