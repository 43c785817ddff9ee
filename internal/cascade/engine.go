// Package cascade removes a message subtree and prunes every owned-set
// referencing the removed ids. Deletion and pruning are both idempotent,
// so an interrupted run is completed by retrying; if pruning fails after
// the bulk delete succeeded, the system holds dangling owned-set entries
// rather than dangling message records, and the failure is surfaced as a
// partial failure instead of being swallowed.
package cascade

import (
	"context"
	"errors"
	"fmt"

	"threadloom/internal/models"
	"threadloom/internal/observability"
	"threadloom/internal/refs"
	"threadloom/internal/store"
	"threadloom/internal/tree"

	"go.opentelemetry.io/otel/attribute"
)

// Engine deletes subtrees.
type Engine struct {
	messages   store.MessageStore
	resolver   *tree.Resolver
	maintainer *refs.Maintainer
}

// NewEngine wires a deletion engine over the resolver and maintainer.
func NewEngine(messages store.MessageStore, resolver *tree.Resolver, maintainer *refs.Maintainer) *Engine {
	return &Engine{messages: messages, resolver: resolver, maintainer: maintainer}
}

// DeleteSubtree removes the message, its full descendant set, and every
// back-reference to any removed id. Returns NotFound when the root is
// absent and *models.PartialFailureError when entity removal succeeded
// but one or more prunes did not. Not safe to run concurrently on
// overlapping subtrees; the double bulk-delete and double unlink a race
// can produce are both harmless because every step is idempotent.
func (e *Engine) DeleteSubtree(ctx context.Context, rootID string) error {
	span, ctx := observability.NewSpan(ctx, "cascade.DeleteSubtree")
	defer span.End()
	span.AddAttributes(attribute.String("message.id", rootID))

	root, err := e.messages.GetByMsgID(ctx, rootID)
	if err != nil {
		span.SetError(err)
		observability.CascadeDeletions.WithLabelValues("not_found").Inc()
		return err
	}

	descendants, err := e.resolver.ResolveDescendantIDs(ctx, rootID)
	if err != nil {
		span.SetError(err)
		observability.CascadeDeletions.WithLabelValues("traversal_error").Inc()
		return err
	}
	allIDs := append([]string{rootID}, descendants...)

	// Distinct author and community ids across the subtree. A descendant
	// whose record is already gone, or whose author/community reference
	// is empty, is skipped for that side.
	msgs, err := e.messages.GetMany(ctx, allIDs)
	if err != nil {
		return err
	}
	authorIDs := make(map[string]struct{})
	communityIDs := make(map[string]struct{})
	for _, m := range msgs {
		if m.AuthorID != "" {
			authorIDs[m.AuthorID] = struct{}{}
		}
		if m.CommunityID != "" {
			communityIDs[m.CommunityID] = struct{}{}
		}
	}

	removed, err := e.messages.DeleteMany(ctx, allIDs)
	if err != nil {
		span.SetError(err)
		observability.CascadeDeletions.WithLabelValues("delete_error").Inc()
		return err
	}
	observability.CascadeSubtreeSize.Observe(float64(removed))

	// If the root was itself a reply, its parent may survive the cascade
	// and must not keep a dangling child reference.
	var failed []string
	var pruneErr error
	if root.ParentID != "" {
		if err := e.maintainer.UnlinkMany(ctx, refs.KindMessage, root.ParentID, []string{rootID}); err != nil && !models.IsNotFound(err) {
			failed = append(failed, fmt.Sprintf("message/%s", root.ParentID))
			pruneErr = errors.Join(pruneErr, err)
		}
	}
	for authorID := range authorIDs {
		if err := e.maintainer.UnlinkMany(ctx, refs.KindUser, authorID, allIDs); err != nil {
			failed = append(failed, fmt.Sprintf("user/%s", authorID))
			pruneErr = errors.Join(pruneErr, err)
		}
	}
	for communityID := range communityIDs {
		if err := e.maintainer.UnlinkMany(ctx, refs.KindCommunity, communityID, allIDs); err != nil {
			failed = append(failed, fmt.Sprintf("community/%s", communityID))
			pruneErr = errors.Join(pruneErr, err)
		}
	}

	if len(failed) > 0 {
		span.SetError(pruneErr)
		observability.CascadeDeletions.WithLabelValues("partial_failure").Inc()
		return &models.PartialFailureError{FailedPrunes: failed, Err: pruneErr}
	}

	observability.CascadeDeletions.WithLabelValues("success").Inc()
	return nil
}
