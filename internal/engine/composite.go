package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/fragmentgrid/internal/fragment"
	"github.com/specialistvlad/fragmentgrid/internal/metadata"
	"github.com/specialistvlad/fragmentgrid/internal/node"
)

type branchOutcome struct {
	fragment *fragment.Fragment
	status   Status
}

// composite runs every nested branch on its own clone of the fragment and
// joins them. A fatal error in one branch cancels the others.
func (x *execution) composite(ctx context.Context, n *node.Node, fctx fragment.Context) (fragment.Result, error) {
	x.collector.Started(n.ID, x.millis())

	outcomes := make([]branchOutcome, len(n.Nested))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range n.Nested {
		child, ok := x.task.Node(id)
		if !ok {
			outcomes[i] = branchOutcome{status: StatusFailure}
			continue
		}
		g.Go(func() error {
			final, status, err := x.walk(gctx, child, fctx.WithFragment(fctx.Fragment.Clone()))
			if err != nil {
				return err
			}
			outcomes[i] = branchOutcome{fragment: final.Fragment, status: status}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		at := x.millis()
		x.collector.Finished(n.ID, at, fragment.Error, metadata.StatusError, map[string]any{"error": err.Error()})
		x.record(n, EntryError, fragment.Error, at, map[string]any{"error": err.Error()})
		return fragment.Result{}, err
	}

	merged := fctx.Fragment
	body := merged.Body
	transition := fragment.Success
	for _, o := range outcomes {
		if o.status == StatusFailure {
			transition = fragment.Error
		}
		if o.fragment == nil {
			continue
		}
		merged.MergeInPayload(o.fragment.Payload)
		if o.fragment.Body != body {
			merged.Body = o.fragment.Body
		}
	}

	at := x.millis()
	entry := EntrySuccess
	if transition == fragment.Error {
		entry = EntryError
	}
	x.collector.Finished(n.ID, at, transition, metadata.StatusFor(transition), nil)
	x.record(n, entry, transition, at, nil)
	return fragment.NewResult(merged, transition, nil), nil
}
