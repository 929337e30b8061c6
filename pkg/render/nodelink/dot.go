package nodelink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/jobtimeline/pkg/timeline"
	"github.com/matzehuels/jobtimeline/pkg/workflow"
)

// dotHeader lays jobs out left to right, matching the direction of the
// timeline chart.
const dotHeader = `digraph G {
  rankdir=LR;
  bgcolor="transparent";
  ranksep=0.5;
  nodesep=0.3;
  node [shape=box, style="rounded,filled", fillcolor=white, fontsize=14, margin="0.2,0.1"];

`

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds run duration and submit offset to job labels.
	// When false, only the job name is shown.
	Detailed bool
}

// ToDOT converts a workflow's dependency map to Graphviz DOT format.
// The result renders with a [Renderer].
//
// Observed jobs are emitted in document order, followed by unobserved
// names in the order the dag first mentions them.
func ToDOT(wf *workflow.Workflow, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString(dotHeader)

	start := int64(0)
	for i, j := range wf.Jobs {
		if i == 0 || j.SubmitTime < start {
			start = j.SubmitTime
		}
	}

	observed := make(map[string]workflow.Job, len(wf.Jobs))
	for _, j := range wf.Jobs {
		observed[j.EntityName] = j
		attrs := fmtAttrs(j, fmtLabel(j, start, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", j.EntityName, strings.Join(attrs, ", "))
	}

	ghosts := make(map[string]bool)
	ghost := func(name string) {
		if _, ok := observed[name]; ok || ghosts[name] {
			return
		}
		ghosts[name] = true
		fmt.Fprintf(&buf, "  %q [shape=ellipse, style=\"dashed\", color=grey, fontcolor=grey];\n", name)
	}
	for _, d := range wf.DAG {
		ghost(d.Source)
		for _, t := range d.Targets {
			ghost(t)
		}
	}

	buf.WriteString("\n")
	for _, d := range wf.DAG {
		for _, t := range d.Targets {
			src, srcOK := observed[d.Source]
			dst, dstOK := observed[t]
			if srcOK && dstOK && src.Status && dst.Status {
				fmt.Fprintf(&buf, "  %q -> %q;\n", d.Source, t)
			} else {
				fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", d.Source, t)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(j workflow.Job, start int64, detailed bool) string {
	if !detailed {
		return j.EntityName
	}
	return fmt.Sprintf("%s\nstart: +%s\nran: %s",
		j.EntityName, timeline.FormatDuration(j.SubmitTime-start), timeline.FormatDuration(j.ElapsedTime))
}

func fmtAttrs(j workflow.Job, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if j.Status {
		attrs = append(attrs, "fillcolor=\"#8fbf8f\"")
	}
	return attrs
}
