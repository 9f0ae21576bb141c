// Package trace records what mirror is doing while it loads units and
// evaluates query files.
//
// Tracers travel through context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "query:foo.mq", 0)
//	defer span.End("")
//
// Scopes from coarse to fine: ScopeDriver (CLI command), ScopeFile (one
// unit or query file), ScopeStmt (one query statement), ScopeOp (one
// metaobject operation). The level decides which scopes are kept:
// phase keeps driver and file events, detail adds statements, debug adds
// operations. LevelError records like phase but only into the ring, which
// the CLI dumps when it crashes.
//
// Storage is a stream (written immediately), a ring (last N events, for
// crash dumps) or both. Stream output is text, NDJSON or the Chrome
// trace_event format.
package trace
