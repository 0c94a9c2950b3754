package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noelhorvath/safewin/registry"
)

func init() {
	rootCmd.AddCommand(newValuesCmd())
}

func newValuesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "values <root> [path]",
		Short: "List values of a registry key",
		Long: `The values command lists the named values of a registry key on the
live system, decoded by type where possible.

Example:
  winq values HKCU Environment
  winq values HKLM "SYSTEM\\CurrentControlSet\\Control" --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValues(args)
		},
	}
}

type valueRow struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// renderValue decodes a value for display. Types without a text decoding
// fall back to hex.
func renderValue(v *registry.Value) string {
	switch v.Type() {
	case registry.String, registry.ExpandString, registry.Link:
		if s, err := v.Text(); err == nil {
			return s
		}
	case registry.MultiString:
		if parts, err := v.Texts(); err == nil {
			return strings.Join(parts, "; ")
		}
	case registry.DWord, registry.DWordBigEndian:
		if n, err := v.Uint32(); err == nil {
			return fmt.Sprintf("%d", n)
		}
	case registry.QWord:
		if n, err := v.Uint64(); err == nil {
			return fmt.Sprintf("%d", n)
		}
	}
	return hex.EncodeToString(v.Raw())
}

func runValues(args []string) error {
	key, err := keyArg(args)
	if err != nil {
		return err
	}

	enum, err := key.Values()
	if err != nil {
		return err
	}
	defer enum.Close()

	rows := make([]valueRow, 0, enum.Count())
	for enum.Next() {
		vi := enum.Value()
		name := vi.Name
		if name == "" {
			name = "(Default)"
		}
		rows = append(rows, valueRow{
			Name: name,
			Type: vi.Value.Type().String(),
			Data: renderValue(vi.Value),
		})
	}
	if err := enum.Err(); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"root":   key.Root().Name(),
			"path":   key.Path(),
			"values": rows,
			"count":  len(rows),
		})
	}

	for _, r := range rows {
		fmt.Printf("%-30s  %-14s  %s\n", r.Name, r.Type, r.Data)
	}
	fmt.Printf("\n%d value(s)\n", len(rows))
	return nil
}
