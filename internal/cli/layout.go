package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jobtimeline/pkg/graph"
	"github.com/matzehuels/jobtimeline/pkg/pipeline"
	"github.com/matzehuels/jobtimeline/pkg/workflow"
)

// layoutCommand creates the layout command for computing timeline layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		save    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [workflow]",
		Short: "Compute a layout from a workflow document",
		Long: `Compute a layout from a workflow document.

The layout command reads a workflow (JSON, YAML or TOML; "-" reads stdin)
and packs its jobs into lanes. The output is a layout.json file (same format
as 'render -f json') that can be rendered with the 'visualize' command.

Supports both timeline (-t timeline) and node-link (-t nodelink) layouts.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyConfig(cmd, &opts)
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache, save)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, stdout for stdin input)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&save, "save", false, "keep the layout in the local layout store")
	addInputFlags(cmd, &opts)
	addLayoutFlags(cmd, &opts)

	return cmd
}

// runLayout loads the workflow, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache, save bool) error {
	if err := setInput(&opts, input, os.Stdin); err != nil {
		return err
	}

	runner, err := c.newRunner(noCache, save)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinner(ctx, os.Stderr, "Loading workflow...")
	spinner.Start()

	wf, err := runner.Load(ctx, opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return err
	}

	spinner.SetMessage(fmt.Sprintf("Computing %s layout for %d jobs...", opts.VizType, len(wf.Jobs)))
	layout, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, wf, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	c.Logger.Debug("layout ready", "took", spinner.Stop(), "cached", cacheHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" && input != stdinArg {
		outputPath = basePath("", input) + ".layout.json"
	}
	if outputPath == "" {
		data, err := graph.MarshalLayout(layout)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}

	if err := graph.WriteLayoutFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(wf.Stats(), lanesOf(layout), cacheHit)
	if save {
		printDetail("Saved as %s", layout.Hash)
	}
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}

// setInput points opts at the workflow named by arg. For stdin the document
// is read up front, as JSON unless --input-format says otherwise.
func setInput(opts *pipeline.Options, arg string, stdin io.Reader) error {
	if arg != stdinArg {
		opts.Input = arg
		return nil
	}
	format := workflow.FormatJSON
	if opts.InputFormat != "" {
		f, err := workflow.ParseFormat(opts.InputFormat)
		if err != nil {
			return err
		}
		format = f
	}
	wf, err := workflow.Read(stdin, format)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	opts.Workflow = wf
	return nil
}

// lanesOf returns the lane count of a timeline layout, or 0.
func lanesOf(l graph.Layout) int {
	if !l.IsTimeline() {
		return 0
	}
	return l.MaxLane + 1
}
