// Package main provides chunkmap-bench, a throughput benchmark for
// chunkmap.Table.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vance-oss/chunkmap"
)

func main() {
	var (
		workers = flag.Int("workers", 4, "number of independent tables to run concurrently")
		inserts = flag.Int("inserts", 1_000_000, "number of inserts per table")
		initCap = flag.Uint64("initial-capacity", 1024, "initial capacity per table")
	)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, "Usage: chunkmap-bench [flags]\n\n")
		fmt.Fprint(os.Stderr, "Each worker owns a private table; no state is shared across goroutines.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	g, ctx := errgroup.WithContext(context.Background())
	for w := 0; w < *workers; w++ {
		w := w
		g.Go(func() error {
			return runWorker(ctx, w, *inserts, *initCap)
		})
	}

	start := time.Now()
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "chunkmap-bench: %v\n", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	total := *workers * *inserts
	fmt.Printf("%d workers, %d inserts each, %d total in %s (%.0f ops/sec)\n",
		*workers, *inserts, total, elapsed, float64(total)/elapsed.Seconds())
}

func runWorker(ctx context.Context, id, inserts int, initCap uint64) error {
	t, err := chunkmap.New[uint64, uint64](
		chunkmap.WithHasher[uint64, uint64](chunkmap.Uint64Hasher()),
		chunkmap.WithInitialCapacity[uint64, uint64](initCap),
	)
	if err != nil {
		return fmt.Errorf("worker %d: %w", id, err)
	}

	r := rand.New(rand.NewPCG(uint64(id), 0))
	for i := 0; i < inserts; i++ {
		if i%4096 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		key := r.Uint64()
		t.InsertOrAssign(key, key)
	}

	fmt.Printf("worker %d: size=%d capacity=%d load_factor=%.3f\n", id, t.Size(), t.Capacity(), t.LoadFactor())
	return nil
}
