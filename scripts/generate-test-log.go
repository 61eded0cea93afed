//go:build ignore

// Package main generates a synthetic log file for benchmarking.
// Usage: go run scripts/generate-test-log.go -size 512 -output testdata/bench.log
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

var (
	sizeMB = flag.Int("size", 256, "Approximate output size in MiB")
	output = flag.String("output", "testdata/bench.log", "Output file")
	seed   = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var levels = []string{"DEBUG", "INFO", "INFO", "INFO", "WARN", "ERROR"}

// Every template takes exactly two %d arguments.
var messages = []string{
	"request completed path=/api/v1/items/%d status=200 duration=%dms",
	"request completed path=/api/v1/items/%d status=404 duration=%dms",
	"cache miss key=item:%d backend=redis shard=%d",
	"connection pool acquired conn=%d in_use=%d",
	"retrying upstream call attempt=%d backoff=%dms",
	"slow query detected table=items rows=%d duration=%dms",
	"user session started user_id=%d region=eu-west-%d",
	"payload validation failed field=quantity value=%d request_id=%d",
	"worker %d picked up job %d from queue",
	"métriques enregistrées latence=%dms région=%d", // multi-byte content
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}
	f, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	w := bufio.NewWriterSize(f, 1<<20)

	target := int64(*sizeMB) << 20
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var written int64
	var lines int64

	for written < target {
		ts = ts.Add(time.Duration(rng.Intn(2000)) * time.Millisecond)
		msg := fmt.Sprintf(messages[rng.Intn(len(messages))],
			rng.Intn(100000), rng.Intn(100000))
		line := fmt.Sprintf("%s %s %s\n",
			ts.Format(time.RFC3339Nano), levels[rng.Intn(len(levels))], msg)

		// Occasional very long line, to exercise lines spanning chunks.
		if rng.Intn(5000) == 0 {
			for i := 0; i < 200; i++ {
				line = line[:len(line)-1] + fmt.Sprintf(" extra=%d", rng.Intn(1000)) + "\n"
			}
		}

		n, err := w.WriteString(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "write: %v\n", err)
			os.Exit(1)
		}
		written += int64(n)
		lines++
	}

	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "flush: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s: %d lines, %d bytes\n", *output, lines, written)
}
