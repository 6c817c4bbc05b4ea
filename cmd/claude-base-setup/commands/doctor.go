package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/claude-base-setup/internal/doctor"
	"github.com/thoreinstein/claude-base-setup/internal/errors"
	"github.com/thoreinstein/claude-base-setup/internal/paths"
)

var (
	doctorFix     bool
	doctorJSON    bool
	doctorYAML    bool
	doctorQuiet   bool
	doctorVerbose bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"repair fixable issues, then re-run the checks")
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorYAML, "yaml", false,
		"output results as YAML")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false,
		"suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false,
		"show detailed check-by-check output")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the project's .claude setup",
	Long: `Run diagnostic checks on the project's .claude directory.

Checks that the directory exists with every subtree, that hook scripts are
executable, which injection mode settings.json selects, whether .env holds
an API key that git would commit, and the state of the latest backup.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output
  --yaml      Machine-readable YAML output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  # Check the current project
  claude-base-setup doctor

  # Restore execute bits on hook scripts
  claude-base-setup doctor --fix

  # Check another project and print JSON
  claude-base-setup doctor -C ../app --json`,
	Args:    cobra.NoArgs,
	PreRunE: validateDoctorFlags,
	RunE:    runDoctor,
}

// doctorOutput is the structured form of a doctor run.
type doctorOutput struct {
	doctor.DoctorReport `yaml:",inline"`

	// Fixes lists the repairs attempted by --fix.
	Fixes []doctor.FixResult `json:"fixes,omitempty" yaml:"fixes,omitempty"`
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	for _, set := range []bool{doctorJSON, doctorYAML, doctorQuiet, doctorVerbose} {
		if set {
			count++
		}
	}

	if count > 1 {
		return errors.NewUserError(
			errors.New("flags --json, --yaml, --quiet, and --verbose are mutually exclusive"), "")
	}

	return nil
}

func runDoctor(c *cobra.Command, _ []string) error {
	dir, err := paths.ResolveProjectDir(projectDir)
	if err != nil {
		return errors.NewSystemError(err, "")
	}

	runner := doctor.NewRunner(doctor.DefaultChecks(dir, afero.NewOsFs(), newBackupManager())...)
	report := runner.Run()

	var fixes []doctor.FixResult
	if doctorFix {
		fixes = runner.Fix()
		if len(fixes) > 0 {
			report = runner.Run()
		}
	}

	if err := outputDoctorReport(c.OutOrStdout(), report, fixes); err != nil {
		return err
	}

	if code := report.ExitCode(); code != errors.ExitSuccess {
		return errors.NewExitError(nil, code)
	}
	return nil
}

func outputDoctorReport(w io.Writer, report *doctor.DoctorReport, fixes []doctor.FixResult) error {
	if doctorQuiet {
		return nil
	}

	out := doctorOutput{DoctorReport: *report, Fixes: fixes}
	switch {
	case doctorJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(out), "encoding JSON")
	case doctorYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "encoding YAML")
	}

	outputDoctorText(w, report, fixes)
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.DoctorReport, fixes []doctor.FixResult) {
	// In normal mode, show only errors and warnings
	// In verbose mode, show all checks
	showAll := doctorVerbose

	for _, fix := range fixes {
		if fix.Fixed {
			fmt.Fprintf(w, "%s fixed %s: %s\n", color.GreenString("✓"), fix.Path, fix.Description)
		} else {
			fmt.Fprintf(w, "%s could not fix %s: %s\n", color.RedString("✗"), fix.Path, fix.Description)
		}
	}
	if len(fixes) > 0 {
		fmt.Fprintln(w)
	}

	hasOutput := false
	for _, result := range report.Results {
		if !showAll && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}

		hasOutput = true
		icon := statusIcon(result.Status)
		fmt.Fprintf(w, "%s [%s] %s: %s\n", icon, result.Category, result.Name, result.Message)

		if result.FixHint != "" && (result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning) {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	// Print summary
	if hasOutput || showAll {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}
