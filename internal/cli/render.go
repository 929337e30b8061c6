package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jobtimeline/pkg/pipeline"
)

// renderCommand creates the render command, which runs the whole pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		save    bool
		rf      renderFlags
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [workflow]",
		Short: "Render a workflow document to SVG, PNG, PDF, JSON or DOT",
		Long: `Render a workflow document in one step.

render is 'layout' followed by 'visualize'. PNG and PDF output need
rsvg-convert (librsvg) on the PATH.

Examples:
  jobtimeline render etl.json
  jobtimeline render etl.yaml -f svg,png -o out/etl
  jobtimeline render etl.json -t nodelink --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.finishRenderOptions(cmd, &opts, &rf); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache, save)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&save, "save", false, "keep the layout in the local layout store")
	addInputFlags(cmd, &opts)
	addLayoutFlags(cmd, &opts)
	addRenderFlags(cmd, &opts, &rf)

	return cmd
}

// runRender executes the full pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache, save bool) error {
	if err := setInput(&opts, input, os.Stdin); err != nil {
		return err
	}
	warnIfConverterMissing(opts.Formats)

	runner, err := c.newRunner(noCache, save)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", opts.VizType))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
	})
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Workflow.Stats(), result.Stats.Lanes, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	if save {
		printDetail("Saved as %s", result.Layout.Hash)
	}
	return nil
}
