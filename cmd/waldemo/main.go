// Command waldemo opens a WAL, replays whatever it recovers, then appends a
// handful of entries from one goroutine while a second goroutine watches for
// their completions. It exists to exercise the package end to end without a
// real workload attached.
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

	"github.com/andrewbaptist/wal"
	"github.com/andrewbaptist/wal/internal/logging"
)

func main() {
	var (
		path    = flag.String("path", "", "Path to the WAL file or mem://<blocks> for an in-memory ring")
		count   = flag.Int("count", 4, "Number of entries to append")
		size    = flag.Int("size", 256, "Payload size per entry, in bytes")
		verbose = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *path == "" {
		log.Fatal("-path is required (a file path, or mem://<blocks>)")
	}

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	w, err := wal.Open(ctx, *path, nil)
	if err != nil {
		logger.Error("failed to open wal", "error", err, "path", *path)
		os.Exit(1)
	}
	defer w.Close()

	logger.Info("opened wal", "path", *path, "head", w.Head(), "tail", w.Tail(), "capacity", w.Capacity())

	recovered := 0
	for entry := range w.Iterate() {
		if entry.Err != nil {
			logger.Warn("recovery iteration stopped", "error", entry.Err, "recovered", recovered)
			break
		}
		recovered++
		fmt.Printf("recovered %v (%d bytes)\n", entry.Position, len(entry.Payload))
	}
	logger.Info("recovery replay complete", "entries", recovered)

	completions := make(chan wal.Position, *count)

	go func() {
		payload := make([]byte, *size)
		for i := range payload {
			payload[i] = byte(i)
		}

		numOutstanding := *count
		fmt.Println("start writing")
		for i := 0; i < *count; i++ {
			pos, err := w.Append(payload)
			if err != nil {
				logger.Error("append failed", "error", err, "i", i)
				close(completions)
				return
			}
			fmt.Printf("wrote entry %d at %v\n", i, pos)
			for p := range w.DrainCompletions() {
				completions <- p
				numOutstanding--
			}
		}

		fmt.Printf("finished writing, waiting for %d completions\n", numOutstanding)
		for numOutstanding > 0 {
			select {
			case <-ctx.Done():
				close(completions)
				return
			case <-time.After(10 * time.Millisecond):
			}
			for p := range w.DrainCompletions() {
				completions <- p
				numOutstanding--
			}
		}
		fmt.Println("all entries synced to disk")
		close(completions)
	}()

	for pos := range completions {
		fmt.Printf("completion for %v\n", pos)
	}
}
