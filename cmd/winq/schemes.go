package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noelhorvath/safewin/power"
)

func init() {
	rootCmd.AddCommand(newSchemesCmd())
}

func newSchemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemes",
		Short: "List power schemes",
		Long: `The schemes command lists the installed power schemes and marks the
active one.

Example:
  winq schemes
  winq schemes --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemes()
		},
	}
}

type schemeRow struct {
	GUID   string `json:"guid"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func runSchemes() error {
	active, err := power.ActiveScheme()
	if err != nil {
		return err
	}

	schemes, err := power.Schemes().Collect()
	if err != nil {
		return err
	}

	rows := make([]schemeRow, 0, len(schemes))
	for _, s := range schemes {
		name, err := s.FriendlyName()
		if err != nil {
			return err
		}
		rows = append(rows, schemeRow{
			GUID:   s.GUID.String(),
			Name:   name,
			Active: s.GUID == active.GUID,
		})
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"schemes": rows,
			"count":   len(rows),
		})
	}

	for _, r := range rows {
		marker := " "
		if r.Active {
			marker = "*"
		}
		fmt.Printf("%s %s  %s\n", marker, r.GUID, r.Name)
	}
	return nil
}
