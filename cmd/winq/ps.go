package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noelhorvath/safewin/process"
)

var psOwner bool

func init() {
	cmd := newPsCmd()
	cmd.Flags().BoolVar(&psOwner, "owner", false, "Resolve each process's token owner")
	rootCmd.AddCommand(cmd)
}

func newPsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ps",
		Short: "List the process table",
		Long: `The ps command lists every process in the system process table.

Example:
  winq ps
  winq ps --owner
  winq ps --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPs()
		},
	}
}

type psRow struct {
	PID       uint32 `json:"pid"`
	ParentPID uint32 `json:"ppid"`
	Name      string `json:"name"`
	Owner     string `json:"owner,omitempty"`
}

func runPs() error {
	procs, err := process.Processes()
	if err != nil {
		return err
	}

	rows := make([]psRow, 0, len(procs))
	for i := range procs {
		p := &procs[i]
		row := psRow{PID: p.ID, ParentPID: p.ParentID, Name: p.Name}
		if psOwner {
			// Access to another session's token is routinely denied; show
			// what we can instead of failing the listing.
			if owner, err := p.Owner(); err == nil {
				row.Owner = owner
			}
		}
		rows = append(rows, row)
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"processes": rows,
			"count":     len(rows),
		})
	}

	fmt.Printf("%8s %8s  %s\n", "PID", "PPID", "NAME")
	for _, r := range rows {
		if r.Owner != "" {
			fmt.Printf("%8d %8d  %s  (%s)\n", r.PID, r.ParentPID, r.Name, r.Owner)
			continue
		}
		fmt.Printf("%8d %8d  %s\n", r.PID, r.ParentPID, r.Name)
	}
	return nil
}
