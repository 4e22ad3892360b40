package storage

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NoticeScanner/internal/domain"
)

func TestClassifyUniqueViolation(t *testing.T) {
	t.Parallel()

	raced := &pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "post_post_id_category_key"`}
	if !errors.Is(classify(raced), domain.ErrDuplicate) {
		t.Fatal("unique violation should map to ErrDuplicate")
	}

	wrapped := fmt.Errorf("exec: %w", raced)
	if !errors.Is(classify(wrapped), domain.ErrDuplicate) {
		t.Fatal("wrapped unique violation should map to ErrDuplicate")
	}

	other := &pq.Error{Code: "53300", Message: "too many connections"}
	if errors.Is(classify(other), domain.ErrDuplicate) {
		t.Fatal("unrelated pq error must not map to ErrDuplicate")
	}

	plain := errors.New("connection reset")
	if classify(plain) != plain {
		t.Fatal("non-pq errors must pass through unchanged")
	}
}

func TestExistsQueryShape(t *testing.T) {
	t.Parallel()

	query, args, err := psql.
		Select("1").
		From("post").
		Where(sq.Eq{"post_id": "123", "category": "cse"}).
		Limit(1).
		ToSql()
	if err != nil {
		t.Fatalf("build query: %v", err)
	}

	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	if !strings.Contains(query, "$1") || !strings.Contains(query, "$2") {
		t.Fatalf("query %q should use dollar placeholders", query)
	}
	if !strings.Contains(query, "FROM post") {
		t.Fatalf("unexpected query: %q", query)
	}
}
