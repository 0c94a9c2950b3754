package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noelhorvath/safewin/registry"
)

var jsonOut bool

var rootCmd = &cobra.Command{
	Use:   "winq",
	Short: "Query live Windows system state",
	Long: `winq inspects the running system: the process and thread tables,
registry keys and values, and power schemes.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// rootKeyByName resolves a hive name given either in full ("HKEY_CURRENT_USER")
// or in the usual abbreviation ("HKCU").
func rootKeyByName(name string) (registry.RootKey, error) {
	switch strings.ToUpper(name) {
	case "HKCR", "HKEY_CLASSES_ROOT":
		return registry.ClassesRoot, nil
	case "HKCC", "HKEY_CURRENT_CONFIG":
		return registry.CurrentConfig, nil
	case "HKCU", "HKEY_CURRENT_USER":
		return registry.CurrentUser, nil
	case "HKLM", "HKEY_LOCAL_MACHINE":
		return registry.LocalMachine, nil
	case "HKU", "HKEY_USERS":
		return registry.Users, nil
	default:
		return 0, fmt.Errorf("unknown registry root %q", name)
	}
}

// keyArg builds the key descriptor for a <root> [path] argument pair.
func keyArg(args []string) (*registry.Key, error) {
	root, err := rootKeyByName(args[0])
	if err != nil {
		return nil, err
	}
	if len(args) < 2 || args[1] == "" {
		return root.Key(), nil
	}
	return root.SubKey(args[1])
}
