package main

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"time"

	"github.com/quiby-ai/kafkasink/pkg/sink"
)

// maxLine bounds a single event read from the input.
const maxLine = 1 << 20

// pump reads one event per line from r and hands them to process in batches
// of at most size, flushing any partial batch every linger. A failed
// batch is counted and logged by the sink; pumping continues.
func pump(ctx context.Context, r io.Reader, size int, linger time.Duration, process func(context.Context, ...sink.Event) error) error {
	if size <= 0 {
		size = 1
	}
	if linger <= 0 {
		linger = time.Second
	}

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 64*1024), maxLine)
		for sc.Scan() {
			// ScanLines already drops a trailing \r.
			if len(bytes.TrimSpace(sc.Bytes())) == 0 {
				continue
			}
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	batch := make([]sink.Event, 0, size)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		_ = process(ctx, batch...)
		batch = make([]sink.Event, 0, size)
	}

	timer := time.NewTimer(linger)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			// Deliver what was already read.
			flush(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-timer.C:
			flush(ctx)
			timer.Reset(linger)
		case line, ok := <-lines:
			if !ok {
				flush(ctx)
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			batch = append(batch, sink.Event{Body: line})
			if len(batch) >= size {
				flush(ctx)
			}
		}
	}
}
