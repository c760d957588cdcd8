// Package tedious provides an incremental decoder for the token-oriented
// TDS client wire protocol.
//
// The library turns an arbitrarily chunked byte stream into a sequence of
// typed protocol tokens, suspending and resuming mid-field across chunk
// boundaries without re-parsing or unbounded buffering.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	tedious/          Root package (documentation only)
//	├── tds/          The decoder: byte window, suspension engine,
//	│                 primitive value readers, token dispatch, the closed
//	│                 Token variant set, and the standard token handlers
//	├── errors/       Structured error types (phase/kind taxonomy)
//	└── cmd/tdsdump/  CLI for inspecting captured token streams
//
// # Quick Start
//
// Decode a stream chunk by chunk:
//
//	p := tds.NewParser(func(t tds.Token) {
//	    switch tok := t.(type) {
//	    case *tds.RowToken:
//	        fmt.Println(tok.Values)
//	    case *tds.DoneToken:
//	        fmt.Println("rows:", tok.RowCount)
//	    }
//	})
//
//	for chunk := range chunks {
//	    if err := p.Push(tds.Bytes(chunk)); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	p.Push(tds.EndOfMessage())
//	if err := p.Close(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// A parser instance is single-threaded and cooperative: it never blocks and
// never spawns goroutines. Suspension is a stored continuation, resumed by
// the next Push. One instance belongs to one goroutine; use one parser per
// connection.
package tedious
