package scene

import (
	"context"
	"runtime"
	"sync"

	"glint/camera"
	"glint/rgbimage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type RenderOptions struct {
	// MaxReflections bounds mirror recursion per primary ray.
	MaxReflections int

	// Workers is the number of row chunks rendered concurrently.  Zero means
	// one per CPU.
	Workers int
}

// ProgressFunction receives (rows finished, rows total).
type ProgressFunction func(int, int)

// chunkWorker renders the rows [rowSrc, rowLim) of a frame.  Chunks never
// overlap, so workers write straight into the shared image.
type chunkWorker struct {
	scene  *Scene
	cam    camera.Camera
	img    *rgbimage.RGBImage
	rowSrc int
	rowLim int

	maxReflections   int
	progressFunction func(int)
}

func (w *chunkWorker) render(ctx context.Context) error {
	for r := w.rowSrc; r < w.rowLim; r++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		for c := 0; c < w.img.ColSize; c++ {
			q := w.cam.ImageToRay(r, w.img.RowSize, c, w.img.ColSize)

			color := Trace(q.Point, q.Slope, w.scene, 0, w.maxReflections)
			if IsNoHit(color) {
				color = w.scene.Background
			}
			w.img.Set(r, c, color)
		}

		w.progressFunction(1)
	}
	return nil
}

// RenderScene fills img with one primary ray per pixel.  The scene is only
// read, so workers share it without locking.
func RenderScene(ctx context.Context, s *Scene, cam camera.Camera, options *RenderOptions, img *rgbimage.RGBImage, progressFunction ProgressFunction) error {
	tracer := otel.Tracer("glint/scene")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "RenderScene")
	defer span.End()

	workers := options.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > img.RowSize {
		workers = img.RowSize
	}

	span.SetAttributes(
		attribute.Int("rows", img.RowSize),
		attribute.Int("cols", img.ColSize),
		attribute.Int("objects", len(s.Objects)),
		attribute.Int("workers", workers),
		attribute.Int("max_reflections", options.MaxReflections),
	)

	if workers == 0 {
		return nil
	}

	curProgress := 0
	progressMutex := sync.Mutex{}
	report := func(rows int) {
		progressMutex.Lock()
		defer progressMutex.Unlock()
		curProgress += rows
		if progressFunction != nil {
			progressFunction(curProgress, img.RowSize)
		}
	}

	// We chunk work by rows.  The first rowSize%workers chunks take one extra
	// row.
	workUnit := img.RowSize / workers
	extra := img.RowSize % workers

	g, gctx := errgroup.WithContext(ctx)
	rowSrc := 0
	for i := 0; i < workers; i++ {
		rowLim := rowSrc + workUnit
		if i < extra {
			rowLim++
		}

		worker := &chunkWorker{
			scene:            s,
			cam:              cam,
			img:              img,
			rowSrc:           rowSrc,
			rowLim:           rowLim,
			maxReflections:   options.MaxReflections,
			progressFunction: report,
		}
		g.Go(func() error {
			_, chunkSpan := tracer.Start(gctx, "RenderScene.chunk", trace.WithAttributes(
				attribute.Int("row_src", worker.rowSrc),
				attribute.Int("row_lim", worker.rowLim),
			))
			defer chunkSpan.End()
			return worker.render(gctx)
		})

		rowSrc = rowLim
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
