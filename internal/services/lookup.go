package services

import (
	"context"
	"errors"
	"strings"
)

// ErrNoMatch is returned by a LookupService when nothing answers the
// query.
var ErrNoMatch = errors.New("lookup: no match")

// LookupService is the out-of-scope data-retrieval collaborator, seen
// only at its boundary: structured values (bank/account info, ministry
// contact, event details) keyed by free-text search. Used solely to
// populate template slots.
type LookupService interface {
	Lookup(ctx context.Context, category, query string) (map[string]string, error)
}

// StaticLookup serves fixed values from configuration. It stands in
// for the real data service in development and tests.
type StaticLookup struct {
	entries map[string]map[string]string // category -> slot values
}

func NewStaticLookup(entries map[string]map[string]string) *StaticLookup {
	if entries == nil {
		entries = map[string]map[string]string{}
	}
	return &StaticLookup{entries: entries}
}

func (s *StaticLookup) Lookup(ctx context.Context, category, query string) (map[string]string, error) {
	vals, ok := s.entries[strings.ToLower(strings.TrimSpace(category))]
	if !ok || len(vals) == 0 {
		return nil, ErrNoMatch
	}
	out := make(map[string]string, len(vals))
	for k, v := range vals {
		out[k] = v
	}
	return out, nil
}
