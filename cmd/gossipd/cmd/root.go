package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const usage = `gossipd runs a peer-to-peer epidemic membership and message
dissemination node.

EXAMPLES:
  Start a node and join an existing cluster:
    gossipd serve --bind 0.0.0.0:42069 --seed 10.0.0.5:42069

  Compute the NodeId a given name would derive to:
    gossipd id edge-node-3`

var rootCmd = &cobra.Command{
	Use:   "gossipd",
	Short: "A peer-to-peer gossip dissemination node",
	Long:  usage,
}

func init() {
	rootCmd.AddCommand(serveCmd, idCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
