// Package pipeline runs the load → layout → render chain for job timelines.
//
// The CLI and the HTTP server both go through a [Runner] so that defaults,
// cache keys and error codes stay identical across entry points.
//
// # Stages
//
//  1. Load: read a workflow document (JSON, YAML or TOML)
//  2. Layout: pack jobs into lanes and route edges, or build a DOT graph
//  3. Render: produce SVG, PNG, PDF, JSON or DOT output
//
// Each stage can be run on its own or through [Runner.Execute].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "etl.json",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jobtimeline/pkg/cache"
	"github.com/matzehuels/jobtimeline/pkg/graph"
	"github.com/matzehuels/jobtimeline/pkg/timeline"
	"github.com/matzehuels/jobtimeline/pkg/workflow"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default outer width in pixels.
	DefaultWidth = timeline.DefaultWidth

	// DefaultNodeHeight is the default job bar height in pixels.
	DefaultNodeHeight = timeline.DefaultNodeHeight

	// DefaultLabelFontSize is the default label font size in pixels.
	DefaultLabelFontSize = timeline.DefaultLabelFontSize

	// DefaultMaxLabelWidth is the label width reserved around narrow jobs.
	DefaultMaxLabelWidth = timeline.DefaultMaxLabelWidth

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0

	// DefaultEngine is the Graphviz engine recorded on node-link layouts.
	DefaultEngine = "dot"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = graph.VizTypeTimeline

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	graph.VizTypeTimeline: true,
	graph.VizTypeNodelink: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// It decodes from JSON request bodies and from the TOML config file.
// Zero numeric values mean "use the default".
type Options struct {
	// Load options
	Input       string             `json:"input,omitempty" toml:"input"`
	InputFormat string             `json:"input_format,omitempty" toml:"input_format"`
	Workflow    *workflow.Workflow `json:"workflow,omitempty" toml:"-"` // Preloaded document; skips Input
	Refresh     bool               `json:"refresh,omitempty" toml:"refresh"`

	// Layout options
	VizType       string            `json:"viz_type,omitempty" toml:"viz_type"`
	Width         float64           `json:"width,omitempty" toml:"width"`
	Height        float64           `json:"height,omitempty" toml:"height"`
	NodeHeight    float64           `json:"node_height,omitempty" toml:"node_height"`
	LabelFontSize float64           `json:"label_font_size,omitempty" toml:"label_font_size"`
	MaxLabelWidth float64           `json:"max_label_width,omitempty" toml:"max_label_width"`
	AxisPadding   float64           `json:"axis_padding,omitempty" toml:"axis_padding"`
	Padding       float64           `json:"padding,omitempty" toml:"padding"`
	Margins       *timeline.Margins `json:"margins,omitempty" toml:"margins"`
	TickCount     int               `json:"tick_count,omitempty" toml:"tick_count"`
	Detailed      bool              `json:"detailed,omitempty" toml:"detailed"` // Node-link labels with timings

	// Render options
	Formats    []string `json:"formats,omitempty" toml:"formats"`
	Title      string   `json:"title,omitempty" toml:"title"`
	Stylesheet string   `json:"stylesheet,omitempty" toml:"stylesheet"`
	NoAxes     bool     `json:"no_axes,omitempty" toml:"no_axes"`
	Scale      float64  `json:"scale,omitempty" toml:"scale"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Workflow is the loaded document.
	Workflow *workflow.Workflow

	// WorkflowHash is the content hash of the canonical workflow JSON.
	WorkflowHash string

	// Layout is the computed layout document. Layout.Hash identifies it.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Jobs       int
	Finished   int
	Sources    int
	Links      int
	Lanes      int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return fmt.Errorf("invalid viz_type: %q (must be one of: timeline, nodelink)", vizType)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that there is something to load.
func (o *Options) ValidateForLoad() error {
	if o.Workflow == nil && o.Input == "" {
		return fmt.Errorf("input or workflow is required")
	}
	if o.InputFormat != "" {
		if _, err := workflow.ParseFormat(o.InputFormat); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.LabelFontSize == 0 {
		o.LabelFontSize = DefaultLabelFontSize
	}
	if o.MaxLabelWidth == 0 {
		o.MaxLabelWidth = DefaultMaxLabelWidth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if o.IsNodelink() {
		return nil
	}
	return o.TimelineOptions().Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// IsTimeline returns true if this is a timeline visualization.
func (o *Options) IsTimeline() bool {
	return o.VizType == "" || o.VizType == graph.VizTypeTimeline
}

// IsNodelink returns true if this is a node-link visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == graph.VizTypeNodelink
}

// TimelineOptions returns the drawing parameters for a layout pass.
// Unset fields keep the timeline package defaults.
func (o *Options) TimelineOptions() timeline.Options {
	t := timeline.DefaultOptions()
	if o.Width != 0 {
		t.Width = o.Width
	}
	t.Height = o.Height
	if o.NodeHeight != 0 {
		t.NodeHeight = o.NodeHeight
	}
	if o.LabelFontSize != 0 {
		t.LabelFontSize = o.LabelFontSize
	}
	if o.MaxLabelWidth != 0 {
		t.MaxLabelWidth = o.MaxLabelWidth
	}
	if o.AxisPadding != 0 {
		t.AxisPadding = o.AxisPadding
	}
	if o.Padding != 0 {
		t.SVGPadding = o.Padding
	}
	if o.Margins != nil {
		t.Margins = *o.Margins
	}
	if o.TickCount != 0 {
		t.TickCount = o.TickCount
	}
	return t
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{VizType: o.VizType, Detailed: o.Detailed}
	if !o.IsNodelink() {
		k.Options = o.TimelineOptions()
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:     format,
		Title:      o.Title,
		Stylesheet: o.Stylesheet,
		NoAxes:     o.NoAxes,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

// LayoutHash returns the identifier of the layout computed for a workflow
// with these options. It is a 64-character hex string.
func LayoutHash(workflowHash string, opts Options) string {
	key := cache.NewDefaultKeyer().LayoutKey(workflowHash, opts.LayoutKeyOpts())
	_, hash, _ := strings.Cut(key, ":")
	return hash
}
