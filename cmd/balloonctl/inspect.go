// Inspection commands: types, names, show.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"balloons/internal/blob"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the types with stored objects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := store.ListTypes(cmd.Context())
		if err != nil {
			return fmt.Errorf("list types: %w", err)
		}
		for _, t := range types {
			fmt.Println(t)
		}
		return nil
	},
}

var namesCmd = &cobra.Command{
	Use:   "names <type>",
	Short: "List the object names stored under a type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := store.ListNames(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("list names: %w", err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <type> <name>",
	Short: "Print the stored document for one object",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := store.Read(cmd.Context(), blob.Key{Type: args[0], Name: args[1]})
		if err != nil {
			return fmt.Errorf("read %s:%s: %w", args[0], args[1], err)
		}
		out, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal document: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}
