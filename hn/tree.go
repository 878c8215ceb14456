package hn

import (
	"context"
	"sync"
)

// idChain is an immutable linked list of ancestor ids shared by sibling
// goroutines; recursing into a child extends the chain without mutation.
type idChain struct {
	id   int
	prev *idChain
}

func (c *idChain) contains(id int) bool {
	for n := c; n != nil; n = n.prev {
		if n.id == id {
			return true
		}
	}
	return false
}

// Assemble fetches rootID and recursively resolves its comment tree down to
// maxDepth levels of children. The root fetch failing fails the whole call;
// any failure below the root becomes a placeholder node at its original slot.
// Child order always matches the source kids order regardless of which
// concurrent fetch completes first. The client's semaphore bounds in-flight
// requests across the whole tree.
func (c *Client) Assemble(ctx context.Context, rootID, maxDepth int) (*Node, error) {
	item, err := c.GetItem(ctx, rootID)
	if err != nil {
		return nil, err
	}

	node := &Node{Item: item}
	if item.Deleted || item.Dead {
		node.Failure = FailureDeleted
		return node, nil
	}
	switch {
	case len(item.Kids) == 0:
	case maxDepth <= 0:
		node.Truncated = true
	default:
		node.Children = c.resolveKids(ctx, item.Kids, maxDepth-1, &idChain{id: rootID})
	}
	return node, nil
}

// resolveKids resolves each kid concurrently, filling an index-addressed
// slice so output order is the source order, not completion order.
func (c *Client) resolveKids(ctx context.Context, kids []int, depth int, chain *idChain) []*Node {
	nodes := make([]*Node, len(kids))
	var wg sync.WaitGroup
	for i, id := range kids {
		wg.Add(1)
		go func(slot, itemID int) {
			defer wg.Done()
			nodes[slot] = c.resolve(ctx, itemID, depth, chain)
		}(i, id)
	}
	wg.Wait()
	return nodes
}

func (c *Client) resolve(ctx context.Context, id, depth int, chain *idChain) *Node {
	if chain.contains(id) {
		return &Node{Item: &Item{ID: id}, Failure: FailureKind(&CycleError{ID: id})}
	}

	item, err := c.GetItem(ctx, id)
	if err != nil {
		return &Node{Item: &Item{ID: id}, Failure: FailureKind(err)}
	}

	node := &Node{Item: item}
	if item.Deleted || item.Dead {
		node.Failure = FailureDeleted
		return node
	}
	switch {
	case len(item.Kids) == 0:
	case depth <= 0:
		node.Truncated = true
	default:
		node.Children = c.resolveKids(ctx, item.Kids, depth-1, &idChain{id: id, prev: chain})
	}
	return node
}
