// Command gossipd runs a gossip protocol node over UDP.
package main

import "github.com/mcastellin/gossipd/cmd/gossipd/cmd"

func main() {
	cmd.Execute()
}
