package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/jobtimeline/pkg/cache"
	apperr "github.com/matzehuels/jobtimeline/pkg/errors"
	"github.com/matzehuels/jobtimeline/pkg/observability"
	"github.com/matzehuels/jobtimeline/pkg/workflow"
)

// Load returns the workflow named by opts. A preloaded opts.Workflow is
// validated and returned as is; otherwise opts.Input is read from disk,
// using opts.InputFormat when set and the file extension when not.
func Load(ctx context.Context, opts Options) (*workflow.Workflow, error) {
	source := opts.Input
	if opts.Workflow != nil {
		source = "inline"
	}
	observability.Pipeline().OnLoadStart(ctx, source)
	start := time.Now()

	wf, err := load(opts)
	if err == nil {
		err = checkJobNames(wf)
	}
	jobs := 0
	if wf != nil {
		jobs = len(wf.Jobs)
	}
	observability.Pipeline().OnLoadComplete(ctx, source, jobs, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return wf, nil
}

func load(opts Options) (*workflow.Workflow, error) {
	if opts.Workflow != nil {
		if err := opts.Workflow.Validate(); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidWorkflow, err, "invalid workflow")
		}
		return opts.Workflow, nil
	}

	format, err := inputFormat(opts)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "cannot read %s", opts.Input)
	}
	f, err := os.Open(opts.Input)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "file not found: %s", opts.Input)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "cannot open %s", opts.Input)
	}
	defer f.Close()

	wf, err := workflow.Read(f, format)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidWorkflow, err, "invalid workflow in %s", opts.Input)
	}
	if wf.Name == "" {
		wf.Name = strings.TrimSuffix(filepath.Base(opts.Input), filepath.Ext(opts.Input))
	}
	return wf, nil
}

func inputFormat(opts Options) (workflow.Format, error) {
	if opts.InputFormat != "" {
		return workflow.ParseFormat(opts.InputFormat)
	}
	return workflow.FormatForPath(opts.Input)
}

// checkJobNames rejects names the renderers cannot carry as element IDs.
func checkJobNames(wf *workflow.Workflow) error {
	for _, j := range wf.Jobs {
		if err := apperr.ValidateJobName(j.EntityName); err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidWorkflow, err, "invalid job name %q", j.EntityName)
		}
	}
	return nil
}

// WorkflowHash returns the content hash of the canonical workflow JSON.
func WorkflowHash(wf *workflow.Workflow) (string, error) {
	data, err := workflow.Canonical(wf)
	if err != nil {
		return "", fmt.Errorf("canonical workflow: %w", err)
	}
	return cache.Hash(data), nil
}
