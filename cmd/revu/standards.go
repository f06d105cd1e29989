package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/revu/domain"
	"github.com/ludo-technologies/revu/internal/rules"
	"github.com/ludo-technologies/revu/service"
)

func standardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standards",
		Short: "List the available standards and methodologies",
		Long: `List every standard and methodology that can be selected for review,
with the number of rules each one carries.

Examples:
  revu standards
  revu standards --json`,
		RunE: runStandards,
	}

	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

// standardInfo is the machine-readable row for one registered standard
type standardInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Rules int    `json:"rules"`
}

func runStandards(cmd *cobra.Command, args []string) error {
	engine := rules.NewEngine()
	available, err := engine.Available()
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		infos := make([]standardInfo, 0, len(available))
		for _, std := range available {
			infos = append(infos, standardInfo{
				ID:    std.ID,
				Name:  std.Name,
				Kind:  string(std.Kind),
				Rules: len(std.Rules),
			})
		}
		return service.WriteJSON(os.Stdout, infos)
	}

	fmt.Println("Available standards:")
	for _, std := range available {
		if std.Kind != domain.StandardKindStandard {
			continue
		}
		fmt.Printf("  %-16s %s (%d rules)\n", std.ID, std.Name, len(std.Rules))
	}
	fmt.Println("\nAvailable methodologies:")
	for _, std := range available {
		if std.Kind != domain.StandardKindMethodology {
			continue
		}
		fmt.Printf("  %-16s %s (%d rules)\n", std.ID, std.Name, len(std.Rules))
	}
	fmt.Println("\nSelect with: revu review --standards <id,...> --methodologies <id,...>")
	return nil
}
