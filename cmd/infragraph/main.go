// infragraph is the command-line client for the infragraph server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

func main() {
	root := &cobra.Command{
		Use:   "infragraph",
		Short: "Query the infrastructure dependency graph",
		Long: "infragraph queries a running infragraph server: ownership,\n" +
			"dependencies, blast radius and paths between resources.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&serverURL, "server", "s",
		envOr("INFRAGRAPH_SERVER", "http://localhost:8080"),
		"Base URL of the infragraph server")

	root.AddCommand(
		nodeCmd(),
		listCmd(),
		upstreamCmd(),
		downstreamCmd(),
		ownerCmd(),
		blastCmd(),
		pathCmd(),
		statsCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func nodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "node <id>",
		Short: "Show one node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result nodeResult
			if err := getJSON("/api/v1/nodes/"+args[0], nil, &result); err != nil {
				return err
			}
			if !result.OK {
				return fmt.Errorf("%s", result.Reason)
			}
			printNode(result.Node)
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <type>",
		Short: "List all nodes of a type (service, database, cache, team, ...)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result nodesResult
			if err := getJSON("/api/v1/nodes", map[string]string{"type": args[0]}, &result); err != nil {
				return err
			}
			if !result.OK {
				return fmt.Errorf("%s", result.Reason)
			}
			for _, node := range result.Nodes {
				fmt.Printf("%-40s %s\n", node.ID, node.Name)
			}
			fmt.Printf("%d node(s)\n", result.Count)
			return nil
		},
	}
}

func upstreamCmd() *cobra.Command {
	var depth int
	var kind string
	cmd := &cobra.Command{
		Use:   "upstream <id>",
		Short: "Show everything that depends on a node, transitively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalk("/upstream", args[0], kind, depth)
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 0, "Maximum hop distance (0 = unbounded)")
	cmd.Flags().StringVar(&kind, "kind", "", "Edge kind (default DEPENDS_ON)")
	return cmd
}

func downstreamCmd() *cobra.Command {
	var depth int
	var kind string
	cmd := &cobra.Command{
		Use:   "downstream <id>",
		Short: "Show everything a node depends on, transitively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalk("/downstream", args[0], kind, depth)
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 0, "Maximum hop distance (0 = unbounded)")
	cmd.Flags().StringVar(&kind, "kind", "", "Edge kind (default DEPENDS_ON)")
	return cmd
}

func runWalk(suffix, id, kind string, depth int) error {
	params := map[string]string{}
	if kind != "" {
		params["kind"] = kind
	}
	if depth > 0 {
		params["depth"] = fmt.Sprint(depth)
	}
	var result nodesResult
	if err := getJSON("/api/v1/nodes/"+id+suffix, params, &result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("%s", result.Reason)
	}
	for _, node := range result.Nodes {
		fmt.Printf("%-40s hop %d\n", node.ID, result.Depth[node.ID])
	}
	fmt.Printf("%d node(s)\n", result.Count)
	return nil
}

func ownerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "owner <id>",
		Short: "Show the team that owns a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result nodeResult
			if err := getJSON("/api/v1/nodes/"+args[0]+"/owner", nil, &result); err != nil {
				return err
			}
			switch result.Reason {
			case "OK":
				printNode(result.Node)
			case "NO_OWNER":
				fmt.Println("no owner recorded")
			default:
				return fmt.Errorf("%s", result.Reason)
			}
			return nil
		},
	}
}

func blastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blast <id>",
		Short: "Show the blast radius of a node failing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result blastResult
			if err := getJSON("/api/v1/nodes/"+args[0]+"/blast-radius", nil, &result); err != nil {
				return err
			}
			if !result.OK {
				return fmt.Errorf("%s", result.Reason)
			}
			fmt.Printf("root: %s\n", result.Root.ID)
			fmt.Printf("impacted (%d):\n", len(result.Impacted))
			for _, node := range result.Impacted {
				fmt.Printf("  %s\n", node.ID)
			}
			fmt.Printf("teams to notify (%d):\n", len(result.Teams))
			for _, team := range result.Teams {
				fmt.Printf("  %s\n", team.ID)
			}
			return nil
		},
	}
}

func pathCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "path <from> <to>",
		Short: "Show the shortest dependency path between two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]string{"from": args[0], "to": args[1]}
			if kind != "" {
				params["kind"] = kind
			}
			var result pathResult
			if err := getJSON("/api/v1/path", params, &result); err != nil {
				return err
			}
			switch result.Reason {
			case "OK":
				for i, node := range result.Path {
					if i > 0 {
						fmt.Print(" -> ")
					}
					fmt.Print(node.ID)
				}
				fmt.Printf("\n%d hop(s)\n", result.Hops)
			case "NO_PATH":
				fmt.Println("no path")
			default:
				return fmt.Errorf("%s", result.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Edge kind (default DEPENDS_ON)")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show graph statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats map[string]any
			if err := getJSON("/api/v1/statistics", nil, &stats); err != nil {
				return err
			}
			fmt.Printf("nodes:  %v\n", stats["nodes"])
			fmt.Printf("edges:  %v\n", stats["edges"])
			fmt.Printf("merges: %v\n", stats["total_merges"])
			return nil
		},
	}
}

func printNode(node *nodeJSON) {
	fmt.Printf("id:     %s\n", node.ID)
	fmt.Printf("type:   %s\n", node.Type)
	fmt.Printf("name:   %s\n", node.Name)
	if node.Source != "" {
		fmt.Printf("source: %s\n", node.Source)
	}
	for key, value := range node.Attrs {
		fmt.Printf("  %s: %s\n", key, value)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
