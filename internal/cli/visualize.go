package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jobtimeline/pkg/graph"
	"github.com/matzehuels/jobtimeline/pkg/pipeline"
	"github.com/matzehuels/jobtimeline/pkg/render"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		rf      renderFlags
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render visualization from a computed layout",
		Long: `Render visualization from a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
renders it to SVG, PNG, PDF or JSON. The layout contains all positioning
information, so this step is purely about rendering. DOT output needs the
workflow and is only available from node-link layouts here.

Use 'render' as a shortcut to go directly from a workflow to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.finishRenderOptions(cmd, &opts, &rf); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addRenderFlags(cmd, &opts, &rf)

	return cmd
}

// runVisualize loads the layout and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	layout, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	opts.VizType = layout.VizType
	warnIfConverterMissing(opts.Formats)

	runner, err := c.newRunner(noCache, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", layout.VizType))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, layout, nil, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
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
	printSuccess("Visualization complete")
	for _, p := range paths {
		printFile(p)
	}
	printDetail("%d jobs · %d lanes · %s", len(layout.Nodes), lanesOf(layout), cacheStatus(cacheHit))
	return nil
}

// warnIfConverterMissing warns before a long run that PNG or PDF output
// will fail.
func warnIfConverterMissing(formats []string) {
	needs := slices.Contains(formats, pipeline.FormatPNG) || slices.Contains(formats, pipeline.FormatPDF)
	if needs && !render.Available() {
		printWarning("rsvg-convert not found; PNG and PDF output will fail")
	}
}

func cacheStatus(hit bool) string {
	if hit {
		return iconCached
	}
	return iconFresh
}
