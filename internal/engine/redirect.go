package engine

import (
	"context"
	"fmt"

	"github.com/amenk/import-product/internal/ir"
)

// DefaultMaxHops bounds redirect chain resolution. The engine retargets old
// redirects on every slug change, so chains longer than one hop only come
// from manual rewrites.
const DefaultMaxHops = 16

// PathLookup finds the rewrite serving a request path in a store.
// It returns (nil, nil) when no rewrite exists.
type PathLookup interface {
	RewriteByRequestPath(ctx context.Context, storeID int64, requestPath string) (*ir.RewriteRecord, error)
}

// Resolution is the result of following a request path to its final target.
type Resolution struct {
	RequestPath string             `json:"request_path"`
	Target      string             `json:"target"`
	Hops        []ir.RewriteRecord `json:"hops"`
}

// ResolveRedirect follows permanent redirects starting at requestPath until
// it reaches a direct rewrite or a path with no rewrite (an external or
// unmanaged target). Revisiting a path is a REDIRECT_LOOP error.
func ResolveRedirect(ctx context.Context, lookup PathLookup, storeID int64, requestPath string, maxHops int) (*Resolution, error) {
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}
	res := &Resolution{RequestPath: requestPath}
	visited := map[string]bool{}
	path := requestPath

	for {
		if visited[path] {
			return res, NewRedirectLoopError(storeID, requestPath, path)
		}
		visited[path] = true

		rec, err := lookup.RewriteByRequestPath(ctx, storeID, path)
		if err != nil {
			return res, NewStoreError(EntityKey{StoreID: storeID}, "lookup request path", err)
		}
		if rec == nil {
			if len(res.Hops) == 0 {
				return nil, &RuntimeError{
					Code:    ErrCodeNotFound,
					Message: fmt.Sprintf("no rewrite for %q in store %d", requestPath, storeID),
				}
			}
			res.Target = path
			return res, nil
		}

		res.Hops = append(res.Hops, *rec)
		if rec.RedirectType == ir.RedirectNone {
			res.Target = rec.TargetPath
			return res, nil
		}
		if len(res.Hops) >= maxHops {
			return res, &RuntimeError{
				Code:    ErrCodeRedirectLoop,
				Message: fmt.Sprintf("redirect chain from %q exceeds %d hops", requestPath, maxHops),
			}
		}
		path = rec.TargetPath
	}
}
