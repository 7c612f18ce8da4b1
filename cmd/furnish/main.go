// Command furnish uploads room photos to the relay, waits for each one to be
// processed in turn and saves the furnished results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"furniture-editor/config"
	"furniture-editor/core/spec"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var (
		server    = flag.String("server", cfg.RelayURL, "relay base URL")
		prompt    = flag.String("prompt", "", "furniture description")
		batchFile = flag.String("batch", "", "YAML batch file with prompt and images")
		out       = flag.String("out", ".", "output directory or s3://bucket/prefix")
		timeout   = flag.Duration("timeout", cfg.RequestTimeout, "per-request timeout")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: furnish [flags] image-or-dir...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	opts := options{
		Server:  *server,
		Prompt:  *prompt,
		Out:     *out,
		Timeout: *timeout,
		Region:  cfg.AWSRegion,
		Paths:   flag.Args(),
	}

	if *batchFile != "" {
		batch, err := spec.ParseBatchFile(*batchFile)
		if err != nil {
			log.Fatalf("Invalid batch file: %v", err)
		}
		opts.applyBatch(batch, flagSet("server"), flagSet("out"))
	}

	if len(opts.Paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Fatalf("furnish: %v", err)
	}
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// options is everything one furnish run needs
type options struct {
	Server  string
	Prompt  string
	Out     string
	Timeout time.Duration
	Region  string
	Paths   []string
}

// applyBatch merges a batch file into opts. Explicit flags win over the file.
func (o *options) applyBatch(batch *spec.Batch, serverSet, outSet bool) {
	o.Paths = append(append([]string{}, batch.Images...), o.Paths...)
	if o.Prompt == "" {
		o.Prompt = batch.Prompt
	}
	if batch.Server != "" && !serverSet {
		o.Server = batch.Server
	}
	if batch.Output != "" && !outSet {
		o.Out = batch.Output
	}
}
