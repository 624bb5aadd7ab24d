// Package network expands a local neighborhood around a seed profile over
// high-strength linkages, producing the node and edge set used for
// visualization.
package network

import (
	"context"
	"fmt"

	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/store"
)

// minEdgeStrength is the traversal cutoff: weaker linkages are not followed
// and do not appear in the explored network.
const minEdgeStrength = 50

// Explorer walks the persisted linkage graph.
type Explorer struct {
	profiles store.ProfileStore
	linkages store.LinkageStore
}

// NewExplorer creates an Explorer over the given stores.
func NewExplorer(profiles store.ProfileStore, linkages store.LinkageStore) *Explorer {
	return &Explorer{profiles: profiles, linkages: linkages}
}

type queueItem struct {
	id    string
	depth int
}

// Explore performs a breadth-first expansion from the seed profile, bounded
// by maxDepth. Every visited node contributes its strong edges (deduplicated
// by unordered pair, keeping the stored canonical orientation); neighbors
// are only expanded while the current depth is below maxDepth.
func (e *Explorer) Explore(ctx context.Context, seedID string, maxDepth int) (*common.Network, error) {
	network := &common.Network{
		Nodes: []common.NetworkNode{},
		Edges: []common.NetworkEdge{},
	}
	visited := make(map[string]bool)
	edgeSeen := make(map[string]bool)

	queue := []queueItem{{id: seedID, depth: 0}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		if visited[item.id] {
			continue
		}
		visited[item.id] = true

		profile, err := e.profiles.GetByID(ctx, item.id)
		if err != nil {
			return nil, fmt.Errorf("explore network at %s: %w", item.id, err)
		}
		network.Nodes = append(network.Nodes, common.NetworkNode{
			ID:             profile.ID,
			Name:           profile.FullName,
			SuspicionScore: profile.SuspicionScore,
			LinkageCount:   profile.LinkageCount,
		})

		edges, err := e.linkages.FindStrongByProfile(ctx, item.id, minEdgeStrength)
		if err != nil {
			return nil, fmt.Errorf("load linkages at %s: %w", item.id, err)
		}

		for _, edge := range edges {
			p1, p2 := common.CanonicalPair(edge.Profile1, edge.Profile2)
			pairKey := p1 + "|" + p2
			if !edgeSeen[pairKey] {
				edgeSeen[pairKey] = true
				network.Edges = append(network.Edges, common.NetworkEdge{
					Source:    edge.Profile1,
					Target:    edge.Profile2,
					Strength:  edge.Strength,
					Type:      edge.ConnectionType,
					Suspicion: edge.SuspicionScore,
				})
			}

			other := edge.Profile1
			if other == item.id {
				other = edge.Profile2
			}
			if item.depth < maxDepth && !visited[other] {
				queue = append(queue, queueItem{id: other, depth: item.depth + 1})
			}
		}
	}

	return network, nil
}
