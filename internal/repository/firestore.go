// Package repository contains the Firestore data access layer. Services
// depend on the interfaces declared here, not on the concrete Firestore
// implementations, enabling clean unit testing via in-memory stubs.
package repository

import (
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"stallsync/internal/scope"
)

// ErrNotFound is returned when a referenced document does not exist.
var ErrNotFound = errors.New("document not found")

// maxInOperands is Firestore's cap on values in a single `in` clause.
const maxInOperands = 30

// mapErr translates gRPC status codes into repository-level errors.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

// applyScope narrows a query to the caller's visibility. A manager scope
// wider than maxInOperands sites fans out into several queries whose
// results the caller merges. The returned bool is false when the scope
// matches nothing (e.g. a manager with no sites), in which case no query
// must be executed at all.
func applyScope(q firestore.Query, sc scope.Scope) ([]firestore.Query, bool) {
	if sc.All {
		return []firestore.Query{q}, true
	}
	if sc.SiteID != "" {
		scoped := q.Where("siteId", "==", sc.SiteID)
		if sc.StallID != "" {
			scoped = scoped.Where("stallId", "==", sc.StallID)
		}
		return []firestore.Query{scoped}, true
	}
	if len(sc.SiteIDs) > 0 {
		chunks := chunkStrings(sc.SiteIDs, maxInOperands)
		qs := make([]firestore.Query, len(chunks))
		for i, chunk := range chunks {
			qs[i] = q.Where("siteId", "in", chunk)
		}
		return qs, true
	}
	return nil, false
}

// chunkStrings splits vals into slices of at most size elements.
func chunkStrings(vals []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(vals); start += size {
		end := start + size
		if end > len(vals) {
			end = len(vals)
		}
		chunks = append(chunks, vals[start:end])
	}
	return chunks
}

// paginate applies offset/limit pagination, capping unset limits.
func paginate(q firestore.Query, page, limit int) firestore.Query {
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	return q.Offset((page - 1) * limit).Limit(limit)
}

// pageSlice paginates an already-merged in-memory result set. Used when a
// fanned-out scope forces merging across queries, where Firestore-side
// offset/limit would apply per chunk instead of to the whole.
func pageSlice[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
