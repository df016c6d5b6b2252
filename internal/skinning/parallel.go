package skinning

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"heatskin-renderer/internal/skeleton"
)

// minChunk keeps small meshes from being split into trivial work items.
const minChunk = 256

// ComputeWeightsParallel is ComputeWeights over contiguous vertex chunks
// solved concurrently. Results are identical to the sequential call.
// workers <= 0 uses GOMAXPROCS.
func ComputeWeightsParallel(ctx context.Context, vertices []Vertex, sk *skeleton.Skeleton, cfg Config, workers int) error {
	s, err := newSolver(sk, cfg)
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	chunk := (len(vertices) + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(vertices); start += chunk {
		end := min(start+chunk, len(vertices))
		part := vertices[start:end]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			heat := make([]float64, s.boneCount)
			for i := range part {
				s.solve(&part[i], heat)
			}
			return nil
		})
	}
	return g.Wait()
}
