package tds

import (
	"go.uber.org/zap"

	"github.com/soni5424/tedious/errors"
)

// Chunk is one delivery unit of transport input: either raw bytes or the
// End-Of-Message marker, never both.
type Chunk struct {
	data []byte
	eom  bool
}

// Bytes wraps raw transport bytes as a chunk. The parser takes ownership of
// the slice; the caller must not modify it afterwards.
func Bytes(data []byte) Chunk { return Chunk{data: data} }

// EndOfMessage returns the chunk marking a logical message boundary.
func EndOfMessage() Chunk { return Chunk{eom: true} }

// IsEndOfMessage reports whether the chunk is the End-Of-Message marker.
func (c Chunk) IsEndOfMessage() bool { return c.eom }

// Handler decodes the body of one token. It is invoked with the cursor
// positioned just past the tag byte and must call done exactly once with
// the finished token, or not at all if the stream ends mid-token. Handlers
// read fields through the parser's Read methods, which suspend transparently
// when bytes run out.
type Handler func(p *Parser, columns []Column, opts Options, done func(Token))

// Parser is the incremental token-stream decoder. It owns the unconsumed
// byte window, the read cursor, at most one pending continuation, and the
// current column-metadata context.
//
// A Parser is not safe for concurrent use; each instance belongs to a
// single goroutine. There is no cancellation: to stop decoding, discard
// the instance.
type Parser struct {
	emit      func(Token)
	log       *zap.Logger
	resume    func()
	err       error
	columns   []Column
	buf       []byte
	handlers  [256]Handler
	opts      Options
	pos       int
	need      int
	current   string
	suspended bool
}

// NewParser creates a parser that calls emit for every completed token, in
// stream order. The standard token handlers are registered by default;
// options can replace individual handlers or tune the parser.
func NewParser(emit func(Token), options ...Option) *Parser {
	p := &Parser{
		emit:     emit,
		log:      nopLogger(),
		handlers: defaultHandlers(),
		opts: Options{
			Version:  Version74,
			MaxAwait: DefaultMaxAwait,
		},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Push feeds one chunk to the parser. Raw bytes are appended to the window;
// a pending suspension is resumed first, then dispatch continues until the
// window is exhausted or a read suspends again. The End-Of-Message marker
// emits its sentinel token immediately, in any state, without touching the
// window or cursor.
//
// The returned error is the parser's fatal error, if any. Once fatal, the
// parser stops dispatching for good and every later Push returns the same
// error.
func (p *Parser) Push(c Chunk) error {
	if p.err != nil {
		return p.err
	}
	if c.eom {
		p.emit(&EndOfMessageToken{})
		return nil
	}
	p.append(c.data)
	if p.suspended {
		p.suspended = false
		cont := p.resume
		p.resume = nil
		cont()
	}
	if !p.suspended {
		p.dispatch()
	}
	return p.err
}

// Err returns the parser's fatal error, or nil.
func (p *Parser) Err() error { return p.err }

// Suspended reports whether the parser is parked mid-token awaiting bytes.
func (p *Parser) Suspended() bool { return p.suspended }

// Buffered returns the number of unconsumed bytes in the window.
func (p *Parser) Buffered() int { return len(p.buf) - p.pos }

// Columns returns the current column-metadata context: the payload of the
// most recently completed COLMETADATA token.
func (p *Parser) Columns() []Column { return p.columns }

// Close checks the parser's terminal state once the transport has delivered
// its last chunk. It returns the fatal error if one occurred, a truncation
// error if the stream ended mid-token, and nil otherwise.
func (p *Parser) Close() error {
	if p.err != nil {
		return p.err
	}
	if p.suspended {
		return errors.Truncated(p.current, p.need, p.Buffered())
	}
	return nil
}

// append adds bytes to the window. When everything previously held has been
// consumed the window is swapped for the new chunk outright; otherwise the
// unconsumed tail is concatenated with the chunk. Either way the cursor
// resets to 0, so every append is a compaction point and retained memory is
// bounded by the largest unconsumed tail.
func (p *Parser) append(data []byte) {
	if p.pos == len(p.buf) {
		p.buf = data
		p.pos = 0
		return
	}
	tail := p.buf[p.pos:]
	merged := make([]byte, 0, len(tail)+len(data))
	merged = append(merged, tail...)
	merged = append(merged, data...)
	p.buf = merged
	p.pos = 0
}

// dispatch runs the token loop: read a tag byte, look up its handler,
// invoke it, repeat. The loop halts when the window is exhausted, a nested
// read suspends, or a fatal error is recorded.
func (p *Parser) dispatch() {
	for p.err == nil && !p.suspended && p.pos < len(p.buf) {
		tag := p.buf[p.pos]
		p.pos++
		h := p.handlers[tag]
		if h == nil {
			p.err = errors.UnknownToken(tag)
			p.log.Error("unknown token tag",
				zap.Uint8("tag", tag),
				zap.Int("offset", p.pos-1))
			return
		}
		p.current = TokenName(tag)
		p.log.Debug("dispatch token", zap.String("token", p.current))
		h(p, p.columns, p.opts, p.complete)
	}
}

// complete forwards a finished token to the consumer. A COLMETADATA token
// replaces the column-metadata context before it is forwarded, so every
// later handler observes the new context in full.
func (p *Parser) complete(t Token) {
	if cm, ok := t.(*ColMetadataToken); ok {
		p.columns = cm.Columns
	}
	p.emit(t)
}

// AwaitData invokes ready synchronously once at least need unread bytes are
// available. If the window is short, the parser parks a continuation that
// re-runs the same check on the next chunk; a resume that still finds too
// few bytes simply re-suspends without consuming anything.
func (p *Parser) AwaitData(need int, ready func()) {
	if p.err != nil {
		return
	}
	if need > p.opts.MaxAwait {
		p.fail(errors.Overflow(p.current, need, p.opts.MaxAwait))
		return
	}
	if p.Buffered() >= need {
		ready()
		return
	}
	p.suspend(need, func() { p.AwaitData(need, ready) })
}

// suspend parks the single pending continuation. Only one may be
// outstanding: the dispatch discipline never starts a new token while
// nested inside an unfinished one, so a second suspension is a bug in the
// caller, not a stream condition.
func (p *Parser) suspend(need int, cont func()) {
	if p.suspended {
		panic("tds: suspension requested while already suspended")
	}
	p.suspended = true
	p.need = need
	p.resume = cont
}

// fail records the parser's fatal error. The first error wins; dispatch
// and all pending reads stop at that point.
func (p *Parser) fail(err error) {
	if p.err != nil {
		return
	}
	p.err = err
	p.log.Error("decode failed", zap.Error(err))
}
