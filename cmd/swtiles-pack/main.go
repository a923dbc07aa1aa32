package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DrToblo/swtiles/internal/swwriter"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		planPath    string
		outPath     string
		showVersion bool
		verbose     bool
		metricsAddr string
	)

	flag.StringVar(&planPath, "plan", "", "Path to the pack-plan YAML manifest")
	flag.StringVar(&outPath, "out", "", "Output archive path")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.BoolVar(&verbose, "verbose", false, "Show a per-level progress bar")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "If set, serve Prometheus metrics on this address while packing")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: swtiles-pack -plan plan.yaml -out archive.swtiles\n\n")
		fmt.Fprintf(os.Stderr, "Assemble a single-file tiled raster archive from a directory-backed tile source.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("swtiles-pack %s (commit %s, built %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	if planPath == "" || outPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(planPath, outPath, verbose, metricsAddr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(planPath, outPath string, verbose bool, metricsAddr string) error {
	manifest, err := swwriter.LoadManifest(planPath)
	if err != nil {
		return fmt.Errorf("loading plan: %w", err)
	}

	dataType, err := swwriter.DataTypeCode(manifest.DataType)
	if err != nil {
		return err
	}
	imageFormat, err := swwriter.ImageFormatCode(manifest.ImageFormat)
	if err != nil {
		return err
	}

	sink, err := swwriter.NewFileSink(outPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer sink.Close()

	opts := []swwriter.Option{
		WithMetricsIfRequested(metricsAddr),
	}
	if verbose {
		opts = append(opts, swwriter.WithProgress())
	}

	w := swwriter.NewWriter(sink, swwriter.HeaderProto{
		DataType:    dataType,
		ImageFormat: imageFormat,
		CRSEPSG:     manifest.CRSEPSG,
		TileSizePx:  manifest.TileSizePx,
	}, opts...)

	src := swwriter.NewDirTileSource(manifest)
	if err := w.WriteArchive(src); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}

	fmt.Printf("wrote %s (%d levels)\n", outPath, len(manifest.Levels))
	return nil
}

// WithMetricsIfRequested registers a Prometheus registry's counters on the
// writer when metricsAddr is set; an empty address keeps the default
// no-op metrics so -metrics-addr stays optional.
func WithMetricsIfRequested(metricsAddr string) swwriter.Option {
	if metricsAddr == "" {
		return func(*swwriter.Writer) {}
	}
	reg := prometheus.NewRegistry()
	m := swwriter.NewMetrics(reg)
	go serveMetrics(metricsAddr, reg)
	return swwriter.WithMetrics(m)
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	log.Printf("serving metrics on %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("metrics server stopped: %v", err)
	}
}
