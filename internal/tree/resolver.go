// Package tree resolves reply trees: the paginated root feed with one
// level of hydrated replies, full-depth hydration for thread detail
// views, and the exhaustive descendant-id traversal the cascade engine
// relies on. Traversals never trust the store to be well formed: a
// visited-set guard turns cycles into structural-integrity errors
// instead of unbounded work.
package tree

import (
	"context"
	"fmt"

	"threadloom/internal/models"
	"threadloom/internal/observability"
	"threadloom/internal/store"

	"go.opentelemetry.io/otel/attribute"
)

// Resolver hydrates messages with author/community joins.
type Resolver struct {
	users       store.UserStore
	communities store.CommunityStore
	messages    store.MessageStore
}

// NewResolver wires a resolver over the given stores.
func NewResolver(users store.UserStore, communities store.CommunityStore, messages store.MessageStore) *Resolver {
	return &Resolver{users: users, communities: communities, messages: messages}
}

// ResolveRoots returns the requested window of root messages joined with
// author and community summaries, each carrying its direct replies joined
// with the reply authors. Grandchildren stay unhydrated: they are
// represented by the child id list and reply count only.
func (r *Resolver) ResolveRoots(ctx context.Context, skip, limit int) ([]*models.MessageNode, error) {
	roots, err := r.messages.ListRoots(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	return r.hydrateOneLevel(ctx, roots)
}

// ResolveMany hydrates the listed messages one level deep, preserving the
// input id order. Dangling ids are skipped.
func (r *Resolver) ResolveMany(ctx context.Context, msgIDs []string) ([]*models.MessageNode, error) {
	msgs, err := r.messages.GetMany(ctx, msgIDs)
	if err != nil {
		return nil, err
	}
	byID := indexByMsgID(msgs)
	ordered := make([]*models.Message, 0, len(msgs))
	for _, id := range msgIDs {
		if m, ok := byID[id]; ok {
			ordered = append(ordered, m)
		}
	}
	return r.hydrateOneLevel(ctx, ordered)
}

// hydrateOneLevel joins author/community summaries onto msgs and attaches
// their direct replies with reply-author summaries.
func (r *Resolver) hydrateOneLevel(ctx context.Context, msgs []*models.Message) ([]*models.MessageNode, error) {
	if len(msgs) == 0 {
		return []*models.MessageNode{}, nil
	}

	childIDs := make([]string, 0)
	for _, m := range msgs {
		childIDs = append(childIDs, m.ChildIDs...)
	}
	children, err := r.messages.GetMany(ctx, childIDs)
	if err != nil {
		return nil, err
	}

	authors, err := r.authorIndex(ctx, append(append([]*models.Message{}, msgs...), children...))
	if err != nil {
		return nil, err
	}
	communities, err := r.communityIndex(ctx, msgs)
	if err != nil {
		return nil, err
	}

	childByID := indexByMsgID(children)
	nodes := make([]*models.MessageNode, 0, len(msgs))
	for _, m := range msgs {
		node := buildNode(m, authors, communities)
		attachChildren(node, m, childByID, authors, communities)
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// ResolveFull returns the message joined with its author and community,
// with its entire descendant tree hydrated level by level to unbounded
// depth. This is the expensive path, only used for thread detail views.
func (r *Resolver) ResolveFull(ctx context.Context, msgID string) (*models.MessageNode, error) {
	span, ctx := observability.NewSpan(ctx, "tree.ResolveFull")
	defer span.End()
	span.AddAttributes(attribute.String("message.id", msgID))

	root, err := r.messages.GetByMsgID(ctx, msgID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	authors, err := r.authorIndex(ctx, []*models.Message{root})
	if err != nil {
		return nil, err
	}
	communities, err := r.communityIndex(ctx, []*models.Message{root})
	if err != nil {
		return nil, err
	}
	rootNode := buildNode(root, authors, communities)

	visited := map[string]struct{}{root.MsgID: {}}
	frontier := []*levelEntry{{node: rootNode, childIDs: root.ChildIDs}}
	depth := 0

	for len(frontier) > 0 {
		wanted := make([]string, 0)
		for _, e := range frontier {
			for _, id := range e.childIDs {
				if _, seen := visited[id]; seen {
					err := models.NewStructuralIntegrityError(
						fmt.Sprintf("cycle detected: message %s reached twice while resolving %s", id, msgID))
					span.SetError(err)
					return nil, err
				}
				visited[id] = struct{}{}
				wanted = append(wanted, id)
			}
		}
		if len(wanted) == 0 {
			break
		}

		msgs, err := r.messages.GetMany(ctx, wanted)
		if err != nil {
			return nil, err
		}
		levelAuthors, err := r.authorIndex(ctx, msgs)
		if err != nil {
			return nil, err
		}
		levelCommunities, err := r.communityIndex(ctx, msgs)
		if err != nil {
			return nil, err
		}

		byID := indexByMsgID(msgs)
		next := make([]*levelEntry, 0)
		for _, e := range frontier {
			for _, id := range e.childIDs {
				child, ok := byID[id]
				if !ok {
					// dangling child reference, skip rather than fail
					continue
				}
				childNode := buildNode(child, levelAuthors, levelCommunities)
				e.node.Replies = append(e.node.Replies, childNode)
				next = append(next, &levelEntry{node: childNode, childIDs: child.ChildIDs})
			}
		}
		frontier = next
		depth++
	}

	observability.TreeResolveDepth.Observe(float64(depth))
	return rootNode, nil
}

// ResolveDescendantIDs returns every message id reachable from msgID by
// following child-set references transitively, excluding msgID itself.
// Order is breadth-first but not part of the contract. A repeated id means
// the store is corrupted with a cycle and raises a structural-integrity
// error instead of looping.
func (r *Resolver) ResolveDescendantIDs(ctx context.Context, msgID string) ([]string, error) {
	root, err := r.messages.GetByMsgID(ctx, msgID)
	if err != nil {
		return nil, err
	}

	visited := map[string]struct{}{root.MsgID: {}}
	descendants := make([]string, 0)
	frontier := append([]string{}, root.ChildIDs...)

	for len(frontier) > 0 {
		wanted := make([]string, 0, len(frontier))
		for _, id := range frontier {
			if _, seen := visited[id]; seen {
				return nil, models.NewStructuralIntegrityError(
					fmt.Sprintf("cycle detected: message %s reached twice while traversing %s", id, msgID))
			}
			visited[id] = struct{}{}
			descendants = append(descendants, id)
			wanted = append(wanted, id)
		}

		msgs, err := r.messages.GetMany(ctx, wanted)
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, m := range msgs {
			frontier = append(frontier, m.ChildIDs...)
		}
	}
	return descendants, nil
}

type levelEntry struct {
	node     *models.MessageNode
	childIDs models.IDList
}

func indexByMsgID(msgs []*models.Message) map[string]*models.Message {
	out := make(map[string]*models.Message, len(msgs))
	for _, m := range msgs {
		out[m.MsgID] = m
	}
	return out
}

// authorIndex loads the authors referenced by msgs. Messages whose author
// record is missing simply stay without a summary; callers render them
// with a zero-value author rather than failing.
func (r *Resolver) authorIndex(ctx context.Context, msgs []*models.Message) (map[string]models.AuthorSummary, error) {
	idSet := make(map[string]struct{})
	for _, m := range msgs {
		if m.AuthorID != "" {
			idSet[m.AuthorID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	users, err := r.users.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.AuthorSummary, len(users))
	for _, u := range users {
		out[u.UserID] = u.Summary()
	}
	return out, nil
}

func (r *Resolver) communityIndex(ctx context.Context, msgs []*models.Message) (map[string]models.CommunitySummary, error) {
	idSet := make(map[string]struct{})
	for _, m := range msgs {
		if m.CommunityID != "" {
			idSet[m.CommunityID] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return map[string]models.CommunitySummary{}, nil
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	communities, err := r.communities.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.CommunitySummary, len(communities))
	for _, c := range communities {
		out[c.CommunityID] = c.Summary()
	}
	return out, nil
}

func buildNode(m *models.Message, authors map[string]models.AuthorSummary, communities map[string]models.CommunitySummary) *models.MessageNode {
	node := &models.MessageNode{
		MsgID:      m.MsgID,
		Body:       m.Body,
		ParentID:   m.ParentID,
		Author:     authors[m.AuthorID],
		ChildIDs:   append([]string{}, m.ChildIDs...),
		ReplyCount: len(m.ChildIDs),
		CreatedAt:  m.CreatedAt,
	}
	if m.CommunityID != "" {
		if summary, ok := communities[m.CommunityID]; ok {
			node.Community = &summary
		}
	}
	return node
}

// attachChildren hydrates one level of replies in child-set order,
// skipping dangling ids.
func attachChildren(node *models.MessageNode, m *models.Message, byID map[string]*models.Message,
	authors map[string]models.AuthorSummary, communities map[string]models.CommunitySummary) {
	for _, id := range m.ChildIDs {
		child, ok := byID[id]
		if !ok {
			continue
		}
		node.Replies = append(node.Replies, buildNode(child, authors, communities))
	}
}
