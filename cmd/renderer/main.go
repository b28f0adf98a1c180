// renderer draws a scene file to an image with the recursive ray tracer.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	runtimepprof "runtime/pprof"
	"syscall"
	"time"

	"glint/healthz"
	"glint/objectio"
	"glint/rendercache"
	"glint/rgbimage"
	"glint/scene"
	"glint/scenefile"

	"cloud.google.com/go/storage"
	cloudmetrics "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	googleopt "google.golang.org/api/option"
)

var (
	sceneFile      = flag.String("scene", "", "Scene description (YAML), local path or gs://bucket/object.  Empty renders the built-in scene.")
	outputFile     = flag.String("output", "output.png", "Output image, local path or gs://bucket/object.  The extension picks the format: .png or .rgbf")
	outputRows     = flag.Int("output-rows", 480, "Output image rows")
	outputCols     = flag.Int("output-cols", 640, "Output image columns")
	maxReflections = flag.Int("max-reflections", -1, "Override the scene's reflection depth limit.  Negative keeps the scene's value.")
	workers        = flag.Int("workers", 0, "Row chunks rendered in parallel.  Zero means one per CPU.")

	cacheDir = flag.String("cache-dir", "", "Directory of the rendered frame cache.  Empty disables caching.")

	debugListen = flag.String("debug-listen", "", "Server address:port for debug endpoint.  Empty disables it.")

	monitoring           = flag.Bool("monitoring", false, "Enable monitoring?")
	monitoringProject    = flag.String("monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	monitoringTraceRatio = flag.Float64("monitoring-trace-ratio", 1.0, "What ratio of traces should be exported?")

	cpuprofile = flag.String("cpu-profile", "", "write cpu profile to `file`")
	memprofile = flag.String("mem-profile", "", "write memory profile to `file`")
)

func main() {
	flag.Parse()

	glog.CopyStandardLogTo("INFO")

	glog.Infof("flags:")
	glog.Infof("scene: %v", *sceneFile)
	glog.Infof("output: %v", *outputFile)
	glog.Infof("output-rows: %v", *outputRows)
	glog.Infof("output-cols: %v", *outputCols)
	glog.Infof("max-reflections: %v", *maxReflections)
	glog.Infof("workers: %v", *workers)
	glog.Infof("cache-dir: %v", *cacheDir)
	glog.Infof("debug-listen: %v", *debugListen)
	glog.Infof("monitoring: %v", *monitoring)
	glog.Infof("monitoring-project: %v", *monitoringProject)
	glog.Infof("monitoring-trace-ratio: %v", *monitoringTraceRatio)

	defer glog.Flush()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *monitoring {
		metricsOpts := []cloudmetrics.Option{}
		traceOpts := []cloudtrace.Option{}
		if *monitoringProject != "" {
			metricsOpts = append(metricsOpts, cloudmetrics.WithProjectID(*monitoringProject))
			traceOpts = append(traceOpts, cloudtrace.WithProjectID(*monitoringProject))
		}

		_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(*monitoringTraceRatio)))
		if err != nil {
			glog.Exitf("Failed to install Cloud Trace OpenTelemetry trace pipeline: %v", err)
		}
		defer traceShutdown()

		pusher, err := cloudmetrics.InstallNewPipeline(metricsOpts)
		if err != nil {
			glog.Exitf("Failed to install Cloud Metrics OpenTelemetry meter pipeline: %v", err)
		}
		defer pusher.Stop(ctx)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Exitf("Could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := runtimepprof.StartCPUProfile(f); err != nil {
			glog.Exitf("Could not start CPU profile: %v", err)
		}
		defer runtimepprof.StopCPUProfile()
	}

	if err := do(ctx); err != nil {
		// Exitf skips deferred calls.
		runtimepprof.StopCPUProfile()
		glog.Exitf("Error: %v", err)
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			glog.Exitf("Could not create memory profile: %v", err)
		}
		defer f.Close()
		if err := runtimepprof.WriteHeapProfile(f); err != nil {
			glog.Exitf("Could not write memory profile: %v", err)
		}
	}
}

func do(ctx context.Context) error {
	tracer := otel.Tracer("glint/cmd/renderer")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Render")
	defer span.End()

	meter := global.Meter("glint/cmd/renderer")
	framesRendered := metric.Must(meter).NewInt64Counter("frames_rendered", metric.WithDescription("Frames produced, by cache outcome"))
	renderSeconds := metric.Must(meter).NewFloat64ValueRecorder("render_seconds", metric.WithDescription("Wall time spent tracing a frame"))

	if *outputRows <= 0 || *outputCols <= 0 {
		return fmt.Errorf("output size must be positive, got %dx%d", *outputRows, *outputCols)
	}

	outLoc, err := objectio.ParseLocation(*outputFile)
	if err != nil {
		return fmt.Errorf("while parsing --output: %w", err)
	}
	enc, err := encoderFor(outLoc)
	if err != nil {
		return err
	}

	var sceneLoc objectio.Location
	if *sceneFile != "" {
		sceneLoc, err = objectio.ParseLocation(*sceneFile)
		if err != nil {
			return fmt.Errorf("while parsing --scene: %w", err)
		}
	}

	var gcs *storage.Client
	if outLoc.IsRemote() || sceneLoc.IsRemote() {
		gcs, err = storage.NewClient(ctx, googleopt.WithGRPCConnectionPool(1))
		if err != nil {
			return fmt.Errorf("while creating GCS client: %w", err)
		}
		defer gcs.Close()
	}
	store := objectio.New(gcs)

	readiness := healthz.NewReadiness()
	if *debugListen != "" {
		debugServer := startDebugServer(readiness)
		defer debugServer.Close()
	}

	desc, sceneBytes, err := loadScene(ctx, store, sceneLoc)
	if err != nil {
		return err
	}
	if *maxReflections >= 0 {
		desc.MaxReflections = *maxReflections
	}
	readiness.SetReady(true)

	glog.Infof("Scene has %d objects, max reflections %d", len(desc.Scene.Objects), desc.MaxReflections)
	span.SetAttributes(
		attribute.Int("objects", len(desc.Scene.Objects)),
		attribute.Int("max_reflections", desc.MaxReflections),
	)

	var cache *rendercache.Cache
	var cacheKey []byte
	if *cacheDir != "" {
		cache, err = rendercache.Open(*cacheDir)
		if err != nil {
			return fmt.Errorf("while opening frame cache: %w", err)
		}
		defer cache.Close()
		cacheKey = rendercache.Key(sceneBytes, *outputRows, *outputCols, desc.MaxReflections)
	}

	img, cacheHit, err := cachedFrame(cache, cacheKey)
	if err != nil {
		return err
	}

	if cacheHit {
		glog.Infof("Frame found in cache")
	} else {
		img = rgbimage.New(*outputRows, *outputCols)
		cam := desc.Camera.Build(*outputRows, *outputCols)
		options := &scene.RenderOptions{
			MaxReflections: desc.MaxReflections,
			Workers:        *workers,
		}

		progress := newProgressReporter(os.Stderr)
		start := time.Now()
		err := scene.RenderScene(ctx, desc.Scene, cam, options, img, func(done, total int) {
			readiness.SetProgress(done, total)
			progress.Report(done, total)
		})
		progress.Finish()
		if err != nil {
			return fmt.Errorf("while rendering: %w", err)
		}
		elapsed := time.Since(start)
		glog.Infof("Rendered %dx%d in %v", *outputRows, *outputCols, elapsed)
		renderSeconds.Record(ctx, elapsed.Seconds())

		if cache != nil {
			raw := &bytes.Buffer{}
			if err := rgbimage.WriteRGBImage(img, raw); err != nil {
				return fmt.Errorf("while encoding frame for cache: %w", err)
			}
			if err := cache.Put(cacheKey, raw.Bytes()); err != nil {
				return fmt.Errorf("while storing frame in cache: %w", err)
			}
		}
	}
	framesRendered.Add(ctx, 1, attribute.Bool("cache_hit", cacheHit))

	out := &bytes.Buffer{}
	if err := enc.encode(img, out); err != nil {
		return fmt.Errorf("while encoding output: %w", err)
	}
	if err := store.Write(ctx, outLoc, enc.contentType, out.Bytes()); err != nil {
		return fmt.Errorf("while writing output: %w", err)
	}
	glog.Infof("Wrote %s", outLoc)

	return nil
}

func loadScene(ctx context.Context, store *objectio.Store, loc objectio.Location) (*scenefile.Description, []byte, error) {
	if loc == (objectio.Location{}) {
		glog.Infof("No scene given, rendering the built-in scene")
		desc, sceneBytes, err := scenefile.Demo()
		if err != nil {
			return nil, nil, fmt.Errorf("while parsing built-in scene: %w", err)
		}
		return desc, sceneBytes, nil
	}

	if !loc.IsRemote() {
		desc, sceneBytes, err := scenefile.Load(loc.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("while loading scene: %w", err)
		}
		return desc, sceneBytes, nil
	}

	sceneBytes, err := store.ReadAll(ctx, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("while reading scene: %w", err)
	}
	desc, err := scenefile.Parse(sceneBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("in scene %s: %w", loc, err)
	}
	return desc, sceneBytes, nil
}

func cachedFrame(cache *rendercache.Cache, key []byte) (*rgbimage.RGBImage, bool, error) {
	if cache == nil {
		return nil, false, nil
	}

	raw, ok, err := cache.Get(key)
	if err != nil {
		return nil, false, fmt.Errorf("while looking up frame cache: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	img, err := rgbimage.ReadRGBImage(bytes.NewReader(raw))
	if err != nil {
		// A frame we cannot decode is re-rendered and overwritten.
		glog.Warningf("Discarding undecodable cached frame: %v", err)
		return nil, false, nil
	}
	return img, true, nil
}

func startDebugServer(readiness *healthz.Handler) *http.Server {
	debugServeMux := http.NewServeMux()
	debugServeMux.Handle("/healthz", healthz.New())
	debugServeMux.Handle("/readyz", readiness)
	debugServeMux.HandleFunc("/debug/pprof/", pprof.Index)
	debugServeMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugServeMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugServeMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugServeMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	debugServer := &http.Server{
		Addr:    *debugListen,
		Handler: debugServeMux,

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := debugServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Errorf("Debug server died: %v", err)
		}
	}()

	return debugServer
}
