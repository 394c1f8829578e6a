package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/RAVINE/internal/optimization/objectives"
)

var objectivesCmd = &cobra.Command{
	Use:   "objectives",
	Short: "List the available objective functions",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range objectives.Names() {
			obj, _ := objectives.Get(name)
			fmt.Printf("%-16s %s (minimum %g)\n", obj.Name, obj.Description, obj.Minimum)
		}
	},
}

func init() {
	rootCmd.AddCommand(objectivesCmd)
}
