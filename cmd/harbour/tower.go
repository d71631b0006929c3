package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/harbour/internal/tower"
)

func newTowerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tower",
		Short: "Print the identity of the ivory tower",
		Long: `The ivory tower is built once, when the process starts. Every caller
in the process sees the same tower, so its ID is stable until exit.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			t := tower.GetInstance()
			fmt.Fprintf(cmd.OutOrStdout(), "id:       %s\nbuilt_at: %s\n",
				t.ID(), t.BuiltAt().Format(time.RFC3339Nano))
		},
	}
}
