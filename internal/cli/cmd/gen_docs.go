package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

const dirPerm = 0o755

var (
	genDocsOutputDir string
	genDocsFormat    string
)

var genDocsCmd = &cobra.Command{
	Use:   "gen-docs",
	Short: "Generate documentation from CLI commands",
	Long: `Generate documentation (man pages or markdown) from CLI command definitions.

The documentation is auto-generated from the command structure, including:
- Command names and aliases
- Short and long descriptions
- Flags and their descriptions
- Usage examples

Supported formats:
  man       Unix manual pages (groff format)
  markdown  Markdown files (for websites/wikis)

By default, man pages are installed to ~/.local/share/man/man1/ so they
are immediately available via 'man webpage'. You may need to run 'mandb'
to update the man page index.

Examples:
  webpage gen-docs                          # Install man pages to ~/.local/share/man/man1/
  webpage gen-docs --format markdown        # Generate markdown docs
  webpage gen-docs --output ./man           # Generate to local directory`,
	RunE: runGenDocs,
}

func init() {
	rootCmd.AddCommand(genDocsCmd)
	genDocsCmd.Flags().StringVarP(&genDocsOutputDir, "output", "o", "", "Output directory for generated docs")
	genDocsCmd.Flags().StringVarP(&genDocsFormat, "format", "f", "man", "Output format: man, markdown")
}

func runGenDocs(cmd *cobra.Command, _ []string) error {
	var (
		ext      string
		generate func(dir string) error
	)
	switch genDocsFormat {
	case "man":
		ext = ".1"
		generate = func(dir string) error {
			now := time.Now()
			return doc.GenManTree(rootCmd, &doc.GenManHeader{
				Title:   "WEBPAGE",
				Section: "1",
				Source:  "webpage " + buildInfo.Version,
				Manual:  "webpage Manual",
				Date:    &now,
			}, dir)
		}
	case "markdown":
		ext = ".md"
		generate = func(dir string) error { return doc.GenMarkdownTree(rootCmd, dir) }
	default:
		return fmt.Errorf("unsupported format %q (use: man, markdown)", genDocsFormat)
	}

	outputDir := genDocsOutputDir
	if outputDir == "" {
		if genDocsFormat == "markdown" {
			outputDir = "./docs"
		} else {
			manDir, err := userManDir()
			if err != nil {
				return fmt.Errorf("resolve man directory: %w", err)
			}
			outputDir = manDir
		}
	}
	if err := os.MkdirAll(outputDir, dirPerm); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// No timestamp footer, for reproducible output.
	rootCmd.DisableAutoGenTag = true
	if err := generate(outputDir); err != nil {
		return fmt.Errorf("generate %s docs: %w", genDocsFormat, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generated %s docs in %s\n", genDocsFormat, outputDir)
	if genDocsFormat == "man" {
		fmt.Fprintln(out, "Run 'mandb' if 'man webpage' doesn't work immediately.")
	}
	listGenerated(out, outputDir, ext)
	return nil
}

func listGenerated(w io.Writer, dir, ext string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ext {
			fmt.Fprintf(w, "  - %s\n", e.Name())
		}
	}
}

// userManDir returns $XDG_DATA_HOME/man/man1 so 'man webpage' works without
// a custom MANPATH.
func userManDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "man", "man1"), nil
}
