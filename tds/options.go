package tds

import "go.uber.org/zap"

// DefaultMaxAwait bounds how many bytes a single read may await. A field
// claiming to need more than this is treated as structurally invalid rather
// than buffered indefinitely.
const DefaultMaxAwait = 8 << 20

// Version selects the protocol revision the server speaks. A few token
// layouts changed at 7.2: row counts and error line numbers widened, and
// column user types grew from 16 to 32 bits.
type Version int

const (
	Version70 Version = iota
	Version71
	Version72
	Version73
	Version74
)

// Options carries the decoding parameters passed to every token handler.
type Options struct {
	Version  Version
	MaxAwait int
}

// Option configures a Parser at construction.
type Option func(*Parser)

// WithLogger sets the parser's logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}

// WithVersion sets the protocol revision to decode against.
func WithVersion(v Version) Option {
	return func(p *Parser) { p.opts.Version = v }
}

// WithMaxAwait overrides the per-read byte bound.
func WithMaxAwait(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.opts.MaxAwait = n
		}
	}
}

// WithHandler registers or replaces the handler for one token tag. Passing
// a nil handler removes the tag from the registry, making it a fatal
// unknown token.
func WithHandler(tag byte, h Handler) Option {
	return func(p *Parser) { p.handlers[tag] = h }
}
