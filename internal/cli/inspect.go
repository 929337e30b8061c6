package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jobtimeline/pkg/graph"
	"github.com/matzehuels/jobtimeline/pkg/pipeline"
)

// inspectCommand creates the inspect command, an interactive lane browser.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "inspect [workflow | layout.json]",
		Short: "Browse the lanes of a timeline interactively",
		Long: `Browse the lanes of a timeline interactively.

The argument is either a workflow document, which is laid out first, or a
file ending in .layout.json produced by 'layout'. With --plain the lanes are
printed as a table instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyConfig(cmd, &opts)
			opts.VizType = graph.VizTypeTimeline
			return c.runInspect(cmd.Context(), args[0], opts, plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print a lane table instead of starting the browser")
	addInputFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string, opts pipeline.Options, plain bool) error {
	layout, err := c.inspectLayout(ctx, input, opts)
	if err != nil {
		return err
	}
	if !layout.IsTimeline() {
		return fmt.Errorf("inspect needs a timeline layout, got %s", layout.VizType)
	}

	if plain {
		fmt.Println(laneTable(layout))
		return nil
	}

	p := tea.NewProgram(NewLaneModel(layout), tea.WithContext(ctx), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// inspectLayout reads a stored layout or computes one from a workflow.
func (c *CLI) inspectLayout(ctx context.Context, input string, opts pipeline.Options) (graph.Layout, error) {
	if strings.HasSuffix(input, ".layout.json") {
		return graph.ReadLayoutFile(input)
	}
	if err := setInput(&opts, input, os.Stdin); err != nil {
		return graph.Layout{}, err
	}

	runner, err := c.newRunner(false, false)
	if err != nil {
		return graph.Layout{}, err
	}
	defer runner.Close()
	opts.Logger = c.Logger

	prog := newProgress(loggerFromContext(ctx))
	wf, err := runner.Load(ctx, opts)
	if err != nil {
		return graph.Layout{}, err
	}
	layout, err := runner.ComputeLayout(ctx, wf, opts)
	if err != nil {
		return graph.Layout{}, err
	}
	prog.done("layout ready", "jobs", len(layout.Nodes), "lanes", lanesOf(layout))
	return layout, nil
}
