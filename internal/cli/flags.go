package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/jobtimeline/pkg/pipeline"
)

// renderFlags holds render flags that need post-processing before they
// become pipeline options.
type renderFlags struct {
	formats    string
	stylesheet string
}

// addInputFlags registers flags for reading a workflow document.
func addInputFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "", "workflow format: json, yaml, toml (default: from extension)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
}

// addLayoutFlags registers the drawing parameters shared by layout and render.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.VizType, "type", "t", pipeline.DefaultVizType, "visualization type: timeline, nodelink")
	cmd.Flags().Float64Var(&opts.Width, "width", pipeline.DefaultWidth, "outer width in pixels")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "viewport height in pixels (0: fit the chart)")
	cmd.Flags().Float64Var(&opts.NodeHeight, "node-height", pipeline.DefaultNodeHeight, "job bar height")
	cmd.Flags().Float64Var(&opts.LabelFontSize, "font-size", pipeline.DefaultLabelFontSize, "label font size")
	cmd.Flags().Float64Var(&opts.MaxLabelWidth, "label-width", pipeline.DefaultMaxLabelWidth, "label width reserved around narrow jobs")
	cmd.Flags().Float64Var(&opts.AxisPadding, "axis-padding", 0, "space between lanes and axes (0: default)")
	cmd.Flags().Float64Var(&opts.Padding, "padding", 0, "scrollbar padding around the frame (0: default)")
	cmd.Flags().IntVar(&opts.TickCount, "ticks", 0, "target number of axis ticks (0: default, at most 100)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show timings in node-link labels")
}

// addRenderFlags registers output flags shared by render and visualize.
func addRenderFlags(cmd *cobra.Command, opts *pipeline.Options, rf *renderFlags) {
	cmd.Flags().StringVarP(&rf.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "chart title (default: workflow name)")
	cmd.Flags().StringVar(&rf.stylesheet, "stylesheet", "", "CSS file replacing the default stylesheet")
	cmd.Flags().BoolVar(&opts.NoAxes, "no-axes", false, "omit the time axes")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG scale factor")
}

// finishRenderOptions merges the config file and turns render flags into
// options.
func (c *CLI) finishRenderOptions(cmd *cobra.Command, opts *pipeline.Options, rf *renderFlags) error {
	if rf.formats != "" {
		opts.Formats = parseFormats(rf.formats)
	}
	opts.Stylesheet = rf.stylesheet
	c.applyConfig(cmd, opts)
	if len(opts.Formats) == 0 {
		opts.Formats = parseFormats("")
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	css, err := readStylesheet(opts.Stylesheet)
	if err != nil {
		return err
	}
	opts.Stylesheet = css
	return nil
}
