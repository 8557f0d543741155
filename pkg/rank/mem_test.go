//go:build test

package rank

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"testing"

	"github.com/bastiangx/wordrank/pkg/minpq"
)

// Drained items must not stay reachable: repeated observe/drain cycles over
// fresh tags should settle at a fixed footprint.
func TestMemoryStabilityObserveDrain(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long-running memory stability test in short mode")
	}
	for _, kind := range []minpq.Kind{minpq.KindHeap, minpq.KindUnsortedArray} {
		t.Run(kind.String(), func(t *testing.T) {
			runObserveDrainCycles(t, kind, 50, 2000)
		})
	}
}

func runObserveDrainCycles(t *testing.T, kind minpq.Kind, cycles, tagsPerCycle int) {
	memFile, err := os.Create("rank_stability.prof")
	if err != nil {
		t.Fatalf("profile file creation failed: %v", err)
	}
	defer func() {
		memFile.Close()
		os.Remove("rank_stability.prof")
	}()

	r := New(kind)
	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)

	maxMemDelta := int64(0)
	for cycle := 0; cycle < cycles; cycle++ {
		for i := 0; i < tagsPerCycle; i++ {
			tag := fmt.Sprintf("c%d-t%d", cycle, i%(tagsPerCycle/4))
			if err := r.Observe(tag); err != nil {
				t.Fatal(err)
			}
		}
		if _, err := r.Drain(tagsPerCycle); err != nil {
			t.Fatal(err)
		}
		if r.Len() != 0 {
			t.Fatalf("cycle %d left %d items", cycle, r.Len())
		}

		if cycle%10 == 0 {
			var m runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&m)
			memDelta := int64(m.Alloc) - int64(baseline.Alloc)
			maxMemDelta = max(maxMemDelta, memDelta)
			t.Logf("cycle=%d mem_delta=%d bytes", cycle, memDelta)
		}
	}

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		t.Errorf("heap profile write failed: %v", err)
	}
	if maxMemDelta > 4*1024*1024 {
		t.Errorf("excessive peak memory usage: %d bytes", maxMemDelta)
	}
}
