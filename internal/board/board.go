package board

import (
	"context"
	"fmt"

	"NoticeScanner/internal/domain"
)

// Source describes one configured announcement board to poll. Scanner names
// the registered layout strategy that understands this board's markup.
type Source struct {
	Name     string
	Scanner  string
	Category string
	ListURL  string
	Options  map[string]string
}

// Scanner captures a single board-layout strategy: how to list the board's
// notices and how to pull one notice's full content.
type Scanner interface {
	Name() string
	FetchList(ctx context.Context, src Source) ([]domain.NoticeSummary, error)
	FetchDetail(ctx context.Context, src Source, summary domain.NoticeSummary) (domain.NoticeRecord, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("board scanner %s is not registered", name)
}
