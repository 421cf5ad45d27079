// bench-hibernation measures heap memory before and after Hibernate() calls
// on a large synthetic accumulator.
//
// Usage:
//
//	go run ./scripts/bench-hibernation --ops 2000000 --cycles 3 \
//	  --profile-dir docs/profiles/segments-hibernation
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/dustin/go-humanize"

	"github.com/manan/range-list/pkg/intensity"
)

const (
	defaultOps     = 1000000
	defaultCycles  = 3
	defaultSeed    = 42
	defaultMaxPos  = 1e7
	defaultMaxSpan = 1e3
	maxAmount      = 10.0
	setRatio       = 0.25
	dirPerm        = 0o755
)

func main() {
	ops := flag.Int("ops", defaultOps, "Number of synthetic operations")
	cycles := flag.Int("cycles", defaultCycles, "Number of hibernate/boot cycles to measure")
	seed := flag.Int64("seed", defaultSeed, "Random seed")
	maxPos := flag.Float64("max-pos", defaultMaxPos, "Position axis upper bound")
	maxSpan := flag.Float64("span", defaultMaxSpan, "Maximum range span")
	profileDir := flag.String("profile-dir", "", "Directory to write heap profiles")

	flag.Parse()

	if *profileDir == "" {
		log.Fatal("--profile-dir is required")
	}

	if err := os.MkdirAll(*profileDir, dirPerm); err != nil {
		log.Fatalf("mkdir profile-dir: %v", err)
	}

	seg := buildAccumulator(*ops, *seed, *maxPos, *maxSpan)
	log.Printf("built accumulator: %d ops, %d breakpoints", *ops, seg.Len())

	writeHeapProfile(*profileDir, "before-hibernate")
	log.Printf("heap before hibernate: %s", humanize.Bytes(heapInUse()))

	for cycle := 1; cycle <= *cycles; cycle++ {
		runCycle(seg, cycle, *profileDir)
	}

	reportSnapshotSize(seg)
}

// buildAccumulator feeds a seeded synthetic op stream into one accumulator.
func buildAccumulator(ops int, seed int64, maxPos, maxSpan float64) *intensity.Segments {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible stream, not crypto
	seg := intensity.New()

	for range ops {
		from := rng.Float64() * maxPos
		to := from + rng.Float64()*maxSpan
		amount := (rng.Float64()*2 - 1) * maxAmount

		if rng.Float64() < setRatio {
			seg.Set(from, to, amount)
		} else {
			seg.Add(from, to, amount)
		}
	}

	return seg
}

// runCycle hibernates and boots the accumulator once, logging heap usage at
// both points.
func runCycle(seg *intensity.Segments, cycle int, profileDir string) {
	if err := seg.Hibernate(); err != nil {
		log.Fatalf("cycle %d hibernate: %v", cycle, err)
	}

	hibernated := heapInUse()

	if cycle == 1 {
		writeHeapProfile(profileDir, "hibernated")
	}

	if err := seg.Boot(); err != nil {
		log.Fatalf("cycle %d boot: %v", cycle, err)
	}

	log.Printf("cycle %d: hibernated heap %s, booted heap %s",
		cycle, humanize.Bytes(hibernated), humanize.Bytes(heapInUse()))
}

// reportSnapshotSize serializes the final snapshot and prints its size.
func reportSnapshotSize(seg *intensity.Segments) {
	if err := seg.Hibernate(); err != nil {
		log.Fatalf("final hibernate: %v", err)
	}

	var buf bytes.Buffer

	if err := seg.Serialize(&buf); err != nil {
		log.Fatalf("serialize: %v", err)
	}

	fmt.Printf("serialized snapshot: %s\n", humanize.Bytes(uint64(buf.Len()))) //nolint:gosec // non-negative
}

// heapInUse forces a GC and reads the live heap size.
func heapInUse() uint64 {
	runtime.GC()

	var stats runtime.MemStats

	runtime.ReadMemStats(&stats)

	return stats.HeapInuse
}

// writeHeapProfile writes a heap profile into the profile directory.
func writeHeapProfile(dir, name string) {
	path := filepath.Join(dir, name+".heap.prof")

	file, err := os.Create(path)
	if err != nil {
		log.Fatalf("create heap profile: %v", err)
	}
	defer file.Close()

	runtime.GC()

	if err := pprof.WriteHeapProfile(file); err != nil {
		log.Fatalf("write heap profile: %v", err)
	}
}
