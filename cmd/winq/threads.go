package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noelhorvath/safewin/toolhelp"
)

var threadsPID uint32

func init() {
	cmd := newThreadsCmd()
	cmd.Flags().Uint32Var(&threadsPID, "pid", 0, "Only list threads of this process")
	rootCmd.AddCommand(cmd)
}

func newThreadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "threads",
		Short: "List the thread table",
		Long: `The threads command lists every thread in the system thread table,
optionally filtered to one process.

Example:
  winq threads
  winq threads --pid 4
  winq threads --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runThreads()
		},
	}
}

type threadRow struct {
	TID      uint32 `json:"tid"`
	OwnerPID uint32 `json:"pid"`
}

func runThreads() error {
	// The snapshot always covers every process; the pid filter is applied
	// while walking it.
	snap, err := toolhelp.CreateThreadSnapshot()
	if err != nil {
		return err
	}
	defer snap.Close()

	var rows []threadRow
	for snap.Next() {
		e := snap.Entry()
		if threadsPID != 0 && e.OwnerPID != threadsPID {
			continue
		}
		rows = append(rows, threadRow{TID: e.TID, OwnerPID: e.OwnerPID})
	}
	if err := snap.Err(); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"threads": rows,
			"count":   len(rows),
		})
	}

	fmt.Printf("%8s %8s\n", "TID", "PID")
	for _, r := range rows {
		fmt.Printf("%8d %8d\n", r.TID, r.OwnerPID)
	}
	return nil
}
