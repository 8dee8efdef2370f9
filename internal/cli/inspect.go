package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/constelviz/constel/pkg/graph"
)

// inspectCommand creates the inspect command for examining graph documents.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [graph.json]",
		Short: "Print structural statistics for a graph document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.ReadFile(args[0])
			if err != nil {
				return err
			}

			adj := graph.BuildAdjacency(g.Nodes, g.Edges)

			byKind := map[string]int{}
			locked := 0
			for i := range g.Nodes {
				n := &g.Nodes[i]
				byKind[n.Kind]++
				if n.IsLocked() {
					locked++
				}
			}

			fmt.Println(StyleTitle.Render(args[0]))
			printKeyValue("nodes", fmt.Sprintf("%d", len(g.Nodes)))
			printKeyValue("edges", fmt.Sprintf("%d", len(g.Edges)))

			kinds := make([]string, 0, len(byKind))
			for k := range byKind {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)
			for _, k := range kinds {
				printKeyValue("  "+k, fmt.Sprintf("%d", byKind[k]))
			}

			if locked > 0 {
				printWarning("%d locked categories (no connected nodes)", locked)
			}

			if hub := adj.MostConnected(g.Nodes); hub != "" {
				printKeyValue("hub", fmt.Sprintf("%s (%d connections)", hub, adj.Degree(hub)))
			}

			dangling := danglingEdges(g)
			if dangling > 0 {
				printWarning("%d dangling edges will be skipped at render time", dangling)
			}
			return nil
		},
	}
}

// danglingEdges counts edges with a missing endpoint.
func danglingEdges(g graph.Graph) int {
	ids := make(map[string]struct{}, len(g.Nodes))
	for i := range g.Nodes {
		ids[g.Nodes[i].ID] = struct{}{}
	}
	count := 0
	for _, e := range g.Edges {
		if _, ok := ids[e.Source]; !ok {
			count++
			continue
		}
		if _, ok := ids[e.Target]; !ok {
			count++
		}
	}
	return count
}
