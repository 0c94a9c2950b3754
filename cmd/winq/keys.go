package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newKeysCmd())
}

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys <root> [path]",
		Short: "List subkeys of a registry key",
		Long: `The keys command lists the subkeys of a registry key on the live
system. The root is a hive name such as HKLM or HKEY_CURRENT_USER.

Example:
  winq keys HKCU
  winq keys HKLM "SOFTWARE\\Microsoft"
  winq keys HKCU Environment --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(args)
		},
	}
}

type keyRow struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Class string `json:"class,omitempty"`
}

func runKeys(args []string) error {
	key, err := keyArg(args)
	if err != nil {
		return err
	}

	enum, err := key.SubKeys()
	if err != nil {
		return err
	}
	defer enum.Close()

	var rows []keyRow
	for enum.Next() {
		sub := enum.Key()
		rows = append(rows, keyRow{Name: sub.Name(), Path: sub.Path(), Class: sub.CachedClass()})
	}
	if err := enum.Err(); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"root":  key.Root().Name(),
			"path":  key.Path(),
			"keys":  rows,
			"count": len(rows),
		})
	}

	for _, r := range rows {
		if r.Class != "" {
			fmt.Printf("%s  [%s]\n", r.Name, r.Class)
			continue
		}
		fmt.Println(r.Name)
	}
	fmt.Printf("\n%d key(s)\n", len(rows))
	return nil
}
