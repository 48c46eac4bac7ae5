package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/protonpatch/protonpatch/internal/errors"
)

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate Markdown reference pages for the CLI",
	Hidden: true,
	RunE:   runGenDoc,
}

func init() {
	genDocCmd.Flags().StringP("dir", "d", "", "directory to write the Markdown files into")
	rootCmd.AddCommand(genDocCmd)
}

func runGenDoc(cmd *cobra.Command, _ []string) error {
	outputDir, _ := cmd.Flags().GetString("dir")
	if outputDir == "" {
		return errors.New("gen-doc needs --dir")
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", outputDir)
	}

	// Frontmatter keeps the pages usable from a static site generator;
	// plain Markdown viewers just skip it.
	if err := doc.GenMarkdownTreeCustom(rootCmd, outputDir, docFrontmatter, docLink); err != nil {
		return errors.Wrap(err, "generating command pages")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Documentation generated in %s\n", outputDir)
	return nil
}

// docFrontmatter derives a page title from the generated filename,
// e.g. protonpatch_config_set.md becomes "protonpatch config set".
func docFrontmatter(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), ".md")
	title := strings.ReplaceAll(base, "_", " ")
	return fmt.Sprintf("---\ntitle: %q\ndescription: \"Reference for the %s command\"\n---\n\n", title, title)
}

// docLink keeps cross-command links relative so the tree renders on
// GitHub as well as on a generated site.
func docLink(name string) string {
	return strings.ToLower(name)
}
