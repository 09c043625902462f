package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/sqgate/internal/config"
	"github.com/ludo-technologies/sqgate/internal/constants"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// initChoices holds the answers that shape the generated config
type initChoices struct {
	serverType config.ServerType
	profile    config.OutputProfile
	projectKey string
	configPath string
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate an sqgate configuration file",
		Long: `Generate a documented sqgate configuration file with sensible defaults.

By default, creates sqgate.yaml in the current directory with full
documentation. Use --interactive for a guided setup wizard.

Examples:
  # Create sqgate.yaml in current directory
  sqgate init --project my-project

  # SonarCloud preset with report files for CI
  sqgate init --server-type sonarcloud --profile ci

  # Overwrite existing file
  sqgate init --force

  # Generate smaller config with essential options only
  sqgate init --minimal

  # Interactive setup wizard
  sqgate init --interactive
  sqgate init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with essential options only")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")
	cmd.Flags().StringP("project", "p", "",
		"Project key to write into the config")
	cmd.Flags().String("server-type", string(config.ServerTypeSonarQube),
		"Server preset: sonarqube, sonarcloud")
	cmd.Flags().String("profile", string(config.OutputProfileConsole),
		"Output preset: console, ci, full")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")
	projectKey, _ := cmd.Flags().GetString("project")
	serverType, _ := cmd.Flags().GetString("server-type")
	profile, _ := cmd.Flags().GetString("profile")

	choices := initChoices{
		serverType: config.ServerType(strings.ToLower(serverType)),
		profile:    config.OutputProfile(strings.ToLower(profile)),
		projectKey: projectKey,
		configPath: configPath,
	}
	if _, ok := config.GetServerPresets()[choices.serverType]; !ok {
		return fmt.Errorf("unknown server type: %s", serverType)
	}
	if _, ok := config.GetOutputPresets()[choices.profile]; !ok {
		return fmt.Errorf("unknown output profile: %s", profile)
	}

	if interactive {
		answers, err := runInteractiveSetup(choices)
		if err != nil {
			return err
		}
		choices = answers
	}

	// Check if file exists
	if !force {
		if _, err := os.Stat(choices.configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", choices.configPath)
		}
	}

	// Check if parent directory exists
	dir := filepath.Dir(choices.configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	var content string
	if minimal {
		content = config.GetMinimalConfigTemplate(choices.projectKey)
	} else {
		content = config.GetFullConfigTemplate(choices.serverType, choices.profile, choices.projectKey)
	}

	if err := os.WriteFile(choices.configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := choices.configPath
	if absPath, err := filepath.Abs(choices.configPath); err == nil {
		displayPath = absPath
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", displayPath)
	fmt.Fprintf(out, "\nSet %s_SERVER_TOKEN and run 'sqgate check' to evaluate your project.\n", constants.EnvVarPrefix)

	return nil
}

func runInteractiveSetup(defaults initChoices) (initChoices, error) {
	fmt.Println()
	fmt.Println("sqgate Configuration Setup")
	fmt.Println("==========================")
	fmt.Println()

	serverTypes := []struct {
		Label       string
		Description string
		Value       config.ServerType
	}{
		{"SonarQube", "Self-hosted server", config.ServerTypeSonarQube},
		{"SonarCloud", "sonarcloud.io, paced to 5 requests per second", config.ServerTypeSonarCloud},
	}

	serverTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	serverPrompt := promptui.Select{
		Label:     "Which server does the project report to?",
		Items:     serverTypes,
		Templates: serverTemplates,
	}

	serverIdx, _, err := serverPrompt.Run()
	if err != nil {
		return initChoices{}, fmt.Errorf("server selection cancelled: %w", err)
	}

	fmt.Println()

	profiles := []struct {
		Label       string
		Description string
		Value       config.OutputProfile
	}{
		{"Console (recommended)", "Text report on stdout", config.OutputProfileConsole},
		{"CI", "JSON report file for pipelines", config.OutputProfileCI},
		{"Full", "Every format written to a report directory", config.OutputProfileFull},
	}

	profileTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	profilePrompt := promptui.Select{
		Label:     "How should reports be delivered?",
		Items:     profiles,
		Templates: profileTemplates,
	}

	profileIdx, _, err := profilePrompt.Run()
	if err != nil {
		return initChoices{}, fmt.Errorf("profile selection cancelled: %w", err)
	}

	fmt.Println()

	projectPrompt := promptui.Prompt{
		Label:    "Project key",
		Default:  defaults.projectKey,
		Validate: validateProjectKey,
	}

	projectKey, err := projectPrompt.Run()
	if err != nil {
		return initChoices{}, fmt.Errorf("project key input cancelled: %w", err)
	}

	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaults.configPath,
	}

	outputPath, err := outputPrompt.Run()
	if err != nil {
		return initChoices{}, fmt.Errorf("output path input cancelled: %w", err)
	}

	// Use default if empty
	if outputPath == "" {
		outputPath = defaults.configPath
	}

	fmt.Println()
	fmt.Printf("Creating %s... ", outputPath)

	return initChoices{
		serverType: serverTypes[serverIdx].Value,
		profile:    profiles[profileIdx].Value,
		projectKey: strings.TrimSpace(projectKey),
		configPath: outputPath,
	}, nil
}

func validateProjectKey(input string) error {
	key := strings.TrimSpace(input)
	if key == "" {
		return errors.New("project key cannot be empty")
	}
	if strings.ContainsAny(key, " \t") {
		return errors.New("project key cannot contain whitespace")
	}
	return nil
}
