package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/codepr/tritedb/internal/cluster"
)

// newJoinCmd implements `tritedb-server join HOST PORT`: send a JOIN
// announcement to HOST on PORT+cluster.BusPortOffset.
func newJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join HOST PORT",
		Short: "Send a JOIN announcement to a seed node's bus port",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := args[0]
			port, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", args[1], err)
			}

			if err := cluster.SendJoin("0.0.0.0", "0", host, port); err != nil {
				return err
			}
			fmt.Printf("JOIN sent to %s:%d\n", host, port+cluster.BusPortOffset)
			return nil
		},
	}
}
