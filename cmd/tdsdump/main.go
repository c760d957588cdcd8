package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/soni5424/tedious/tds"
)

func main() {
	var (
		file        = flag.String("file", "", "Path to a raw token-stream capture")
		chunkSize   = flag.Int("chunk", 512, "Feed size in bytes, exercising incremental decoding")
		version     = flag.String("version", "7_4", "Protocol revision (7_0, 7_1, 7_2, 7_3, 7_4)")
		verbose     = flag.Bool("v", false, "Log token dispatch to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: tdsdump -file <capture> [-chunk n] [-version 7_4]")
		fmt.Fprintln(os.Stderr, "       tdsdump -file <capture> -i  (interactive mode)")
		os.Exit(1)
	}

	tokens, decodeErr, err := decode(*file, *chunkSize, *version, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*file, tokens, decodeErr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	styled := term.IsTerminal(int(os.Stdout.Fd()))
	for i, t := range tokens {
		fmt.Printf("%4d  %s\n", i, formatToken(t, styled))
	}
	if decodeErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", decodeErr)
		os.Exit(1)
	}
}

// decode feeds the capture through the parser in chunk-size pieces. The
// decode error is returned separately from setup errors so the tokens that
// did decode can still be shown.
func decode(file string, chunkSize int, version string, verbose bool) ([]tds.Token, error, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	v, err := parseVersion(version)
	if err != nil {
		return nil, nil, err
	}

	opts := []tds.Option{tds.WithVersion(v)}
	if verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, nil, fmt.Errorf("logger: %w", err)
		}
		defer log.Sync()
		opts = append(opts, tds.WithLogger(log))
	}

	var tokens []tds.Token
	p := tds.NewParser(func(t tds.Token) {
		tokens = append(tokens, t)
	}, opts...)

	for off := 0; off < len(data); off += chunkSize {
		end := min(off+chunkSize, len(data))
		if err := p.Push(tds.Bytes(data[off:end])); err != nil {
			return tokens, err, nil
		}
	}
	p.Push(tds.EndOfMessage())
	return tokens, p.Close(), nil
}

func parseVersion(s string) (tds.Version, error) {
	switch s {
	case "7_0":
		return tds.Version70, nil
	case "7_1":
		return tds.Version71, nil
	case "7_2":
		return tds.Version72, nil
	case "7_3":
		return tds.Version73, nil
	case "7_4":
		return tds.Version74, nil
	default:
		return 0, fmt.Errorf("unknown protocol revision %q", s)
	}
}

var tokenNameStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#98FB98"))

// formatToken renders one token as a single line.
func formatToken(t tds.Token, styled bool) string {
	name := t.Name()
	if styled {
		name = tokenNameStyle.Render(name)
	}

	switch tok := t.(type) {
	case *tds.ColMetadataToken:
		names := make([]string, len(tok.Columns))
		for i, c := range tok.Columns {
			names[i] = fmt.Sprintf("%s(0x%02X)", c.Name, byte(c.TypeID))
		}
		return fmt.Sprintf("%s  %s", name, strings.Join(names, ", "))
	case *tds.RowToken:
		parts := make([]string, len(tok.Values))
		for i, v := range tok.Values {
			if v == nil {
				parts[i] = "NULL"
			} else {
				parts[i] = fmt.Sprintf("%v", v)
			}
		}
		return fmt.Sprintf("%s  [%s]", name, strings.Join(parts, ", "))
	case *tds.DoneToken:
		return fmt.Sprintf("%s  status=0x%04X rows=%.0f", name, tok.Status, tok.RowCount)
	case *tds.DoneProcToken:
		return fmt.Sprintf("%s  status=0x%04X rows=%.0f", name, tok.Status, tok.RowCount)
	case *tds.DoneInProcToken:
		return fmt.Sprintf("%s  status=0x%04X rows=%.0f", name, tok.Status, tok.RowCount)
	case *tds.EnvChangeToken:
		if tok.Raw != nil {
			return fmt.Sprintf("%s  kind=%d raw=%d bytes", name, tok.Kind, len(tok.Raw))
		}
		if tok.New.Bytes != nil || tok.Old.Bytes != nil {
			return fmt.Sprintf("%s  kind=%d new=%x old=%x", name, tok.Kind, tok.New.Bytes, tok.Old.Bytes)
		}
		return fmt.Sprintf("%s  kind=%d new=%q old=%q", name, tok.Kind, tok.New.Text, tok.Old.Text)
	case *tds.ErrorMessageToken:
		return fmt.Sprintf("%s  %d severity=%d %q", name, tok.Number, tok.Class, tok.Message)
	case *tds.InfoMessageToken:
		return fmt.Sprintf("%s  %d %q", name, tok.Number, tok.Message)
	case *tds.LoginAckToken:
		return fmt.Sprintf("%s  %s %d.%d", name, tok.ProgName, tok.ProgVersion.Major, tok.ProgVersion.Minor)
	case *tds.OrderToken:
		return fmt.Sprintf("%s  columns=%v", name, tok.Columns)
	case *tds.ReturnStatusToken:
		return fmt.Sprintf("%s  %d", name, tok.Value)
	case *tds.SSPIToken:
		return fmt.Sprintf("%s  %d bytes", name, len(tok.Data))
	case *tds.EndOfMessageToken:
		return name
	default:
		return name
	}
}
