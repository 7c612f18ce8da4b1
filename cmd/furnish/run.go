package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"furniture-editor/core/executor"
	"furniture-editor/core/models"
	"furniture-editor/core/monitoring"
	"furniture-editor/core/scheduler"
	"furniture-editor/storage"

	"github.com/pkg/errors"
)

// run uploads, processes and exports one batch, writing a report to w
func run(ctx context.Context, opts options, w io.Writer) error {
	relay, err := executor.NewRelayClient(opts.Server, opts.Timeout)
	if err != nil {
		return err
	}

	uploads, skipped, err := scheduler.CollectUploads(opts.Paths, scheduler.MaxJobs)
	if err != nil {
		return err
	}

	queue := scheduler.NewJobQueue()
	added := queue.Add(uploads)
	skipped += len(uploads) - len(added)
	log.Printf("%d/%d photos uploaded", queue.Len(), scheduler.MaxJobs)
	if skipped > 0 {
		log.Printf("Ignored %d files (not images or over the limit)", skipped)
	}

	monitor := monitoring.NewProgressMonitor()
	result, err := scheduler.NewScheduler(queue, relay, monitor).Run(ctx, opts.Prompt)
	if err != nil && result == nil {
		return err
	}

	for _, job := range queue.List() {
		status := string(job.Status)
		if job.Status == models.JobStatusError {
			status = job.Error
		}
		fmt.Fprintf(w, "%-40s %s\n", job.Name, status)
	}
	fmt.Fprintln(w, monitoring.Summary(queue.Counts()))

	if err != nil {
		return errors.Wrap(err, "processing interrupted")
	}

	sink, err := storage.OpenSink(ctx, opts.Out, opts.Region)
	if err != nil {
		return err
	}

	export, err := storage.NewBundleExporter(relay).Export(ctx, queue.Completed(), sink)
	if errors.Is(err, storage.ErrNothingToExport) {
		fmt.Fprintln(w, "Nothing to download")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Saved %s\n", export.Location)
	for _, name := range export.Skipped {
		fmt.Fprintf(w, "Skipped %s: result unavailable\n", name)
	}
	return nil
}
