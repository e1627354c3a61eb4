package cmd

import (
	"fmt"

	"github.com/mcastellin/gossipd/pkg/gossip"
	"github.com/spf13/cobra"
)

var idCmd = &cobra.Command{
	Use:   "id [name]",
	Short: "print the NodeId a given name derives to",
	Long:  `id is a diagnostic helper for matching a human-readable node name against the NodeId entries seen in peer-table logs and metrics.`,
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		fmt.Println(uint32(gossip.HashNodeName(args[0])))
	},
}
