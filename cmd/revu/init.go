package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/revu/domain"
	"github.com/ludo-technologies/revu/internal/config"
	"github.com/ludo-technologies/revu/internal/rules"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a revu configuration file",
		Long: `Generate a revu configuration file with sensible defaults.

By default, creates revu.config.json in the current directory. Use
--interactive for a guided setup wizard that picks the standards and
methodologies for this project.

Examples:
  # Create revu.config.json in current directory
  revu init

  # Custom output path
  revu init --config custom.json

  # Overwrite existing file
  revu init --force

  # Interactive setup wizard
  revu init --interactive
  revu init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", "revu.config.json",
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	interactive, _ := cmd.Flags().GetBool("interactive")

	var selected, methodologies []string

	if interactive {
		var err error
		selected, methodologies, configPath, err = runInteractiveSetup(configPath)
		if err != nil {
			return err
		}
	}

	// Check if file exists
	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	// Check if parent directory exists
	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	content := config.ConfigTemplate(selected, methodologies)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	fmt.Printf("Created %s\n", displayPath)
	fmt.Println("\nRun 'revu review .' to review your project.")

	return nil
}

func runInteractiveSetup(defaultConfigPath string) ([]string, []string, string, error) {
	fmt.Println()
	fmt.Println("revu Configuration Setup")
	fmt.Println("========================")
	fmt.Println()

	engine := rules.NewEngine()
	available, err := engine.Available()
	if err != nil {
		return nil, nil, "", err
	}

	var standards, methodologies []domain.Standard
	for _, std := range available {
		if std.Kind == domain.StandardKindMethodology {
			methodologies = append(methodologies, std)
		} else {
			standards = append(standards, std)
		}
	}

	selected, err := selectStandards("Which coding standards should apply?", standards)
	if err != nil {
		return nil, nil, "", err
	}

	fmt.Println()

	selectedMethodologies, err := selectStandards("Which methodology should apply? (optional)", methodologies)
	if err != nil {
		return nil, nil, "", err
	}

	fmt.Println()

	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}
	outputPath, err := outputPrompt.Run()
	if err != nil {
		return nil, nil, "", fmt.Errorf("output path input cancelled: %w", err)
	}
	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	fmt.Println()
	fmt.Printf("Creating %s... ", outputPath)

	return selected, selectedMethodologies, outputPath, nil
}

// selectStandards runs a repeated select prompt until the user picks Done.
// promptui has no multi-select, so picked entries drop out of the list.
func selectStandards(label string, candidates []domain.Standard) ([]string, error) {
	type row struct {
		Label string
		ID    string
	}

	remaining := make([]row, 0, len(candidates)+1)
	for _, std := range candidates {
		remaining = append(remaining, row{
			Label: fmt.Sprintf("%s (%d rules)", std.Name, len(std.Rules)),
			ID:    std.ID,
		})
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }}",
		Inactive: "   {{ .Label | white }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	var selected []string
	for len(remaining) > 0 {
		items := append([]row{{Label: "Done", ID: ""}}, remaining...)
		prompt := promptui.Select{
			Label:     label,
			Items:     items,
			Templates: templates,
		}
		idx, _, err := prompt.Run()
		if err != nil {
			return nil, fmt.Errorf("selection cancelled: %w", err)
		}
		if idx == 0 {
			break
		}
		selected = append(selected, items[idx].ID)
		remaining = append(remaining[:idx-1], remaining[idx:]...)
	}
	return selected, nil
}
