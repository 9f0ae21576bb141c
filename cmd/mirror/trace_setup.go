package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mirror/internal/trace"
)

// setupTracing inspects trace-related flags and attaches a tracer to the
// command context. Without --trace a ring tracer is kept anyway so that a
// panic can dump the last events.
func setupTracing(cmd *cobra.Command) (func(), error) {
	pf := cmd.Root().PersistentFlags()

	traceOutput, err := pf.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := pf.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := pf.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := pf.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := pf.GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if level == trace.LevelOff {
		setContext(cmd, trace.WithTracer(ctx, trace.Nop))
		return func() {}, nil
	}

	var mode trace.StorageMode
	switch {
	case modeStr == "auto" && traceOutput == "":
		mode = trace.ModeRing
	case modeStr == "auto":
		mode = trace.ModeBoth
	default:
		if mode, err = trace.ParseMode(modeStr); err != nil {
			return nil, fmt.Errorf("invalid trace mode: %w", err)
		}
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	setContext(cmd, trace.WithTracer(ctx, tracer))

	var heartbeat *trace.Heartbeat
	if heartbeatInterval > 0 {
		heartbeat = trace.StartHeartbeat(tracer, heartbeatInterval)
	}

	return func() {
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
		}
	}, nil
}

func setContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)
}

// dumpTraceOnPanic writes the ring tracer's events to stderr and
// re-panics. Deferred at the top of every command.
func dumpTraceOnPanic(ctx context.Context) {
	r := recover()
	if r == nil {
		return
	}
	if ring, ok := trace.Ring(trace.FromContext(ctx)); ok {
		fmt.Fprintln(os.Stderr, "trace: last events before panic:")
		_ = ring.Dump(os.Stderr, trace.FormatText)
	}
	panic(r)
}
