// Package tds implements an incremental decoder for the token-oriented TDS
// response stream.
//
// The transport delivers raw bytes in arbitrarily sized, arbitrarily
// aligned chunks. The parser reconstructs the sequence of discrete protocol
// tokens from that stream without knowing how chunk boundaries align with
// token boundaries: when a chunk ends before a field is complete, the
// in-progress read is suspended as a stored continuation and resumed
// transparently when the next chunk arrives, continuing exactly where it
// stopped. Already-consumed bytes are never re-parsed and never retained.
//
// # Decoding
//
// Create a parser with an emit callback and feed it chunks:
//
//	p := tds.NewParser(func(t tds.Token) {
//	    fmt.Println(t.Name())
//	})
//	if err := p.Push(tds.Bytes(chunk)); err != nil {
//	    log.Fatal(err)
//	}
//	p.Push(tds.EndOfMessage())
//	if err := p.Close(); err != nil {
//	    log.Fatal(err) // stream ended mid-token
//	}
//
// Tokens are emitted in the exact order their defining bytes appear in the
// input; the End-Of-Message sentinel is emitted the instant its marker is
// pushed, in any state, since it carries no byte payload.
//
// # Buffering
//
// The parser owns a single byte window and a read cursor. Every chunk
// append is a compaction point: once all previously held bytes have been
// consumed, the window is swapped for the new chunk outright, so retained
// memory is bounded by the largest unconsumed tail, never by stream
// history.
//
// # Suspension
//
// All field readers are built on AwaitData, which either invokes its
// callback synchronously or parks a single continuation until more data
// arrives. Resuming with still-insufficient data re-suspends without
// consuming bytes; absence of bytes is never an error.
//
// # Token handlers
//
// Dispatch reads a one-byte tag and invokes the handler registered for it.
// The standard handlers (DONE family, ENVCHANGE, ERROR/INFO, LOGINACK,
// ORDER, RETURNSTATUS, SSPI, COLMETADATA, ROW, NBCROW) are installed by
// default; WithHandler replaces individual entries. A tag with no handler
// is a fatal protocol error that permanently halts the instance. Handlers
// receive the current column-metadata context, which is replaced wholesale
// each time a COLMETADATA token completes.
//
// # Wide integers
//
// 64-, 96- and 128-bit unsigned integers and the signed 64-bit integer are
// reconstructed with double-precision float arithmetic from 32-bit words,
// matching the wire contract of the protocol's reference clients. Values
// with magnitude above 2^53 lose precision. This is an accepted,
// documented approximation, not a defect: consumers may depend on the
// existing approximate values, so the decoder does not offer exact
// wide-integer variants.
package tds
