package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/webpage/internal/application/port"
	"github.com/bnema/webpage/internal/application/usecase"
	"github.com/bnema/webpage/internal/cli/styles"
	"github.com/bnema/webpage/internal/infrastructure/deps"
)

var (
	doctorOnlyWebKit   bool
	doctorOnlyChromium bool

	newRuntimeSource  = func() port.RuntimeVersionSource { return deps.NewPkgConfigClient() }
	newBrowserLocator = func() port.BrowserLocator { return deps.NewChromiumLocator() }
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check runtime requirements and diagnose issues",
	Long: `Doctor checks the native runtimes webpage renders with.

By default it runs both:
- WebKit checks (GTK4, WebKitGTK 6.0 and GLib via pkg-config) for 'browse'
- Chromium checks (binary lookup and version) for 'capture'

The [runtime] prefix and [headless] exec_path/remote_url config values are
honored. Use flags to run only one category.

Examples:
  webpage doctor
  webpage doctor --webkit
  webpage doctor --chromium`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorOnlyWebKit, "webkit", false, "Only run GTK/WebKitGTK checks")
	doctorCmd.Flags().BoolVar(&doctorOnlyChromium, "chromium", false, "Only run Chromium checks")
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	if doctorOnlyWebKit && doctorOnlyChromium {
		return fmt.Errorf("--webkit and --chromium are mutually exclusive")
	}

	uc := usecase.NewCheckRuntimeDependenciesUseCase(newRuntimeSource(), newBrowserLocator())
	out, err := uc.Execute(app.Ctx(), usecase.CheckRuntimeDependenciesInput{
		Prefix:       app.Config.Runtime.Prefix,
		ExecPath:     app.Config.Headless.ExecPath,
		RemoteURL:    app.Config.Headless.RemoteURL,
		SkipWebKit:   doctorOnlyChromium,
		SkipChromium: doctorOnlyWebKit,
	})
	if err != nil {
		return err
	}

	report := styles.DoctorReport{
		OverallOK: out.OK,
		Prefix:    out.Prefix,
		Checks:    make([]styles.DoctorCheck, 0, len(out.Checks)),
	}
	for _, c := range out.Checks {
		report.Checks = append(report.Checks, styles.DoctorCheck{
			Name:            c.DisplayName,
			Source:          c.Source,
			Installed:       c.Installed,
			Version:         c.Version,
			RequiredVersion: c.RequiredVersion,
			OK:              c.MeetsRequirement,
			Error:           c.Error,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), styles.NewDoctorRenderer(app.Theme).Render(report))

	if !out.OK {
		return fmt.Errorf("runtime requirements not met")
	}
	return nil
}
