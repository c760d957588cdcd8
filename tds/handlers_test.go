package tds_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
	"unicode/utf16"

	tderrors "github.com/soni5424/tedious/errors"
	"github.com/soni5424/tedious/tds"
)

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func ucs2(s string) []byte {
	units := utf16.Encode([]rune(s))
	b := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(b[2*i:], u)
	}
	return b
}

// bvc encodes a B_VARCHAR: 8-bit character count then UCS-2 text.
func bvc(s string) []byte {
	return append([]byte{byte(len(utf16.Encode([]rune(s))))}, ucs2(s)...)
}

// usvc encodes a US_VARCHAR: 16-bit character count then UCS-2 text.
func usvc(s string) []byte {
	return append(le16(uint16(len(utf16.Encode([]rune(s))))), ucs2(s)...)
}

func join(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

// decodeStream feeds one stream in a single chunk and returns the tokens.
func decodeStream(t *testing.T, stream []byte, opts ...tds.Option) []tds.Token {
	t.Helper()
	p, tokens := collect(opts...)
	if err := p.Push(tds.Bytes(stream)); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return *tokens
}

func TestParseDoneFamily(t *testing.T) {
	tests := []struct {
		name string
		tag  byte
		want tds.Token
	}{
		{
			"DONE", 0xFD,
			&tds.DoneToken{Status: 0x0011, CurCmd: 0xC1, RowCount: 5, RowCountValid: true},
		},
		{
			"DONEPROC", 0xFE,
			&tds.DoneProcToken{Status: 0x0011, CurCmd: 0xC1, RowCount: 5, RowCountValid: true},
		},
		{
			"DONEINPROC", 0xFF,
			&tds.DoneInProcToken{Status: 0x0011, CurCmd: 0xC1, RowCount: 5, RowCountValid: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := join([]byte{tt.tag}, le16(0x0011), le16(0xC1), le64(5))
			tokens := decodeStream(t, stream)
			if len(tokens) != 1 {
				t.Fatalf("got %d tokens, want 1", len(tokens))
			}
			if !reflect.DeepEqual(tokens[0], tt.want) {
				t.Errorf("got %+v, want %+v", tokens[0], tt.want)
			}
		})
	}
}

func TestParseDonePre72RowCount(t *testing.T) {
	// Before protocol 7.2 the row count is 32 bits.
	stream := join([]byte{0xFD}, le16(tds.DoneCount), le16(0), le32(7))
	tokens := decodeStream(t, stream, tds.WithVersion(tds.Version71))

	done, ok := tokens[0].(*tds.DoneToken)
	if !ok {
		t.Fatalf("got %T, want *DoneToken", tokens[0])
	}
	if done.RowCount != 7 || !done.RowCountValid {
		t.Errorf("got rowCount=%v valid=%v, want 7/true", done.RowCount, done.RowCountValid)
	}
}

func TestParseEnvChange(t *testing.T) {
	t.Run("database", func(t *testing.T) {
		body := join([]byte{byte(tds.EnvDatabase)}, bvc("master"), bvc("pubs"))
		stream := join([]byte{0xE3}, le16(uint16(len(body))), body)

		tokens := decodeStream(t, stream)
		want := &tds.EnvChangeToken{
			Kind: tds.EnvDatabase,
			New:  tds.EnvChangeValue{Text: "master"},
			Old:  tds.EnvChangeValue{Text: "pubs"},
		}
		if !reflect.DeepEqual(tokens[0], want) {
			t.Errorf("got %+v, want %+v", tokens[0], want)
		}
	})

	t.Run("begin transaction", func(t *testing.T) {
		desc := []byte{1, 2, 3, 4, 5, 6, 7, 8}
		body := join([]byte{byte(tds.EnvBeginTxn), 8}, desc, []byte{0})
		stream := join([]byte{0xE3}, le16(uint16(len(body))), body)

		tokens := decodeStream(t, stream)
		env, ok := tokens[0].(*tds.EnvChangeToken)
		if !ok {
			t.Fatalf("got %T, want *EnvChangeToken", tokens[0])
		}
		if !bytes.Equal(env.New.Bytes, desc) {
			t.Errorf("new descriptor = %x, want %x", env.New.Bytes, desc)
		}
		if len(env.Old.Bytes) != 0 {
			t.Errorf("old descriptor = %x, want empty", env.Old.Bytes)
		}
	})

	t.Run("unknown sub-kind stays aligned", func(t *testing.T) {
		raw := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x99}
		body := join([]byte{20}, raw) // routing, not decoded
		stream := join(
			[]byte{0xE3}, le16(uint16(len(body))), body,
			[]byte{0xFD}, le16(0), le16(0), le64(0), // DONE right behind it
		)

		tokens := decodeStream(t, stream)
		if len(tokens) != 2 {
			t.Fatalf("got %d tokens, want 2", len(tokens))
		}
		env := tokens[0].(*tds.EnvChangeToken)
		if env.Kind != 20 || !bytes.Equal(env.Raw, raw) {
			t.Errorf("got kind=%d raw=%x, want 20/%x", env.Kind, env.Raw, raw)
		}
		if _, ok := tokens[1].(*tds.DoneToken); !ok {
			t.Errorf("token after unknown sub-kind is %T, want *DoneToken", tokens[1])
		}
	})
}

func TestParseErrorAndInfo(t *testing.T) {
	fields := join(
		le32(105),         // number
		[]byte{2, 16},     // state, class
		usvc("Boom"),      // message
		bvc("srv"),        // server name
		bvc(""),           // proc name
		le32(3),           // line number
	)
	length := le16(uint16(len(fields)))

	t.Run("ERROR", func(t *testing.T) {
		tokens := decodeStream(t, join([]byte{0xAA}, length, fields))
		want := &tds.ErrorMessageToken{
			Number: 105, State: 2, Class: 16,
			Message: "Boom", ServerName: "srv", LineNumber: 3,
		}
		if !reflect.DeepEqual(tokens[0], want) {
			t.Errorf("got %+v, want %+v", tokens[0], want)
		}
	})

	t.Run("INFO", func(t *testing.T) {
		tokens := decodeStream(t, join([]byte{0xAB}, length, fields))
		want := &tds.InfoMessageToken{
			Number: 105, State: 2, Class: 16,
			Message: "Boom", ServerName: "srv", LineNumber: 3,
		}
		if !reflect.DeepEqual(tokens[0], want) {
			t.Errorf("got %+v, want %+v", tokens[0], want)
		}
	})
}

func TestParseLoginAck(t *testing.T) {
	body := join(
		[]byte{0x01},                   // interface
		[]byte{0x74, 0x00, 0x00, 0x04}, // TDS version, big-endian
		bvc("Microsoft SQL Server"),
		[]byte{16, 0, 3, 232}, // program version
	)
	stream := join([]byte{0xAD}, le16(uint16(len(body))), body)

	tokens := decodeStream(t, stream)
	want := &tds.LoginAckToken{
		Interface:  1,
		TDSVersion: 0x74000004,
		ProgName:   "Microsoft SQL Server",
		ProgVersion: tds.ProgVersion{
			Major: 16, Minor: 0, BuildNumHi: 3, BuildNumLow: 232,
		},
	}
	if !reflect.DeepEqual(tokens[0], want) {
		t.Errorf("got %+v, want %+v", tokens[0], want)
	}
}

func TestParseOrder(t *testing.T) {
	stream := join([]byte{0xA9}, le16(4), le16(2), le16(5))
	tokens := decodeStream(t, stream)
	want := &tds.OrderToken{Columns: []uint16{2, 5}}
	if !reflect.DeepEqual(tokens[0], want) {
		t.Errorf("got %+v, want %+v", tokens[0], want)
	}
}

func TestParseReturnStatus(t *testing.T) {
	stream := join([]byte{0x79}, le32(0xFFFFFFFF))
	tokens := decodeStream(t, stream)
	want := &tds.ReturnStatusToken{Value: -1}
	if !reflect.DeepEqual(tokens[0], want) {
		t.Errorf("got %+v, want %+v", tokens[0], want)
	}
}

func TestParseSSPI(t *testing.T) {
	payload := []byte{0x4E, 0x54, 0x4C}
	stream := join([]byte{0xED}, le16(3), payload)
	tokens := decodeStream(t, stream)
	sspi, ok := tokens[0].(*tds.SSPIToken)
	if !ok {
		t.Fatalf("got %T, want *SSPIToken", tokens[0])
	}
	if !bytes.Equal(sspi.Data, payload) {
		t.Errorf("got %x, want %x", sspi.Data, payload)
	}
}

// twoColMetadata is a COLMETADATA token for (id int null, name nvarchar(50)).
func twoColMetadata() []byte {
	return join(
		[]byte{0x81}, le16(2),
		// id: intn, 4 bytes
		le32(0), le16(0x0001), []byte{byte(tds.TypeIntN), 4}, bvc("id"),
		// name: nvarchar(100 bytes), with collation
		le32(0), le16(0x0001), []byte{byte(tds.TypeNVarChar)}, le16(100),
		[]byte{0x09, 0x04, 0xD0, 0x00, 0x34}, bvc("name"),
	)
}

func TestParseColMetadata(t *testing.T) {
	tokens := decodeStream(t, twoColMetadata())
	cm, ok := tokens[0].(*tds.ColMetadataToken)
	if !ok {
		t.Fatalf("got %T, want *ColMetadataToken", tokens[0])
	}
	if len(cm.Columns) != 2 {
		t.Fatalf("got %d columns, want 2", len(cm.Columns))
	}

	id := cm.Columns[0]
	if id.Name != "id" || id.TypeID != tds.TypeIntN || id.Length != 4 || !id.Nullable() {
		t.Errorf("id column = %+v", id)
	}
	name := cm.Columns[1]
	if name.Name != "name" || name.TypeID != tds.TypeNVarChar || name.Length != 100 {
		t.Errorf("name column = %+v", name)
	}
	if len(name.Collation) != 5 {
		t.Errorf("collation = %x, want 5 bytes", name.Collation)
	}
}

func TestParseColMetadataNoMetadata(t *testing.T) {
	stream := join([]byte{0x81}, le16(0xFFFF))
	tokens := decodeStream(t, stream)
	cm, ok := tokens[0].(*tds.ColMetadataToken)
	if !ok {
		t.Fatalf("got %T, want *ColMetadataToken", tokens[0])
	}
	if len(cm.Columns) != 0 {
		t.Errorf("got %d columns, want 0", len(cm.Columns))
	}
}

func TestParseColMetadataPre72UserType(t *testing.T) {
	// Before protocol 7.2 the user type is 16 bits.
	stream := join(
		[]byte{0x81}, le16(1),
		le16(25), le16(0x0001), []byte{byte(tds.TypeIntN), 4}, bvc("n"),
	)
	tokens := decodeStream(t, stream, tds.WithVersion(tds.Version71))
	cm := tokens[0].(*tds.ColMetadataToken)
	if cm.Columns[0].UserType != 25 {
		t.Errorf("user type = %d, want 25", cm.Columns[0].UserType)
	}
}

func TestParseColMetadataUnsupportedType(t *testing.T) {
	stream := join(
		[]byte{0x81}, le16(1),
		le32(0), le16(0x0001), []byte{0x3C}, // MONEY, not supported
	)
	p, _ := collect()
	err := p.Push(tds.Bytes(stream))
	if !errors.Is(err, &tderrors.Error{Phase: tderrors.PhaseParse, Kind: tderrors.KindUnsupportedType}) {
		t.Fatalf("got %v, want unsupported_type", err)
	}
}

func TestRowUsesColumnMetadataContext(t *testing.T) {
	stream := join(
		twoColMetadata(),
		// ROW: id = 5, name = "abcd"
		[]byte{0xD1, 4}, le32(5), le16(8), ucs2("abcd"),
		// NBCROW: id = 7, name NULL (bit 1 set)
		[]byte{0xD2, 0x02, 4}, le32(7),
	)

	p, tokens := collect()
	if err := p.Push(tds.Bytes(stream)); err != nil {
		t.Fatalf("push: %v", err)
	}

	if len(*tokens) != 3 {
		t.Fatalf("got %d tokens, want 3", len(*tokens))
	}
	if len(p.Columns()) != 2 {
		t.Fatalf("context holds %d columns, want 2", len(p.Columns()))
	}

	row := (*tokens)[1].(*tds.RowToken)
	if !reflect.DeepEqual(row.Values, []any{int32(5), "abcd"}) {
		t.Errorf("row values = %#v", row.Values)
	}

	nbcRow := (*tokens)[2].(*tds.RowToken)
	if !reflect.DeepEqual(nbcRow.Values, []any{int32(7), nil}) {
		t.Errorf("nbc row values = %#v", nbcRow.Values)
	}
}

func TestRowNullValues(t *testing.T) {
	stream := join(
		twoColMetadata(),
		// ROW: id NULL (zero-length intn), name NULL (0xFFFF length)
		[]byte{0xD1, 0}, le16(0xFFFF),
	)

	tokens := decodeStream(t, stream)
	row := tokens[1].(*tds.RowToken)
	if !reflect.DeepEqual(row.Values, []any{nil, nil}) {
		t.Errorf("row values = %#v", row.Values)
	}
}

func TestNewColMetadataReplacesContext(t *testing.T) {
	oneCol := join(
		[]byte{0x81}, le16(1),
		le32(0), le16(0x0001), []byte{byte(tds.TypeIntN), 4}, bvc("only"),
	)
	stream := join(
		twoColMetadata(),
		oneCol,
		// ROW against the replacement context: one column only.
		[]byte{0xD1, 4}, le32(9),
	)

	tokens := decodeStream(t, stream)
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3", len(tokens))
	}
	row := tokens[2].(*tds.RowToken)
	if !reflect.DeepEqual(row.Values, []any{int32(9)}) {
		t.Errorf("row values = %#v", row.Values)
	}
}

// TestChunkingInvariance verifies that any two-chunk partition of a
// composite stream, including splits inside multi-byte fields, emits the
// same token sequence as a single delivery.
func TestChunkingInvariance(t *testing.T) {
	envBody := join([]byte{byte(tds.EnvDatabase)}, bvc("master"), bvc("pubs"))
	stream := join(
		[]byte{0xE3}, le16(uint16(len(envBody))), envBody,
		twoColMetadata(),
		[]byte{0xD1, 4}, le32(5), le16(8), ucs2("abcd"),
		[]byte{0xD2, 0x02, 4}, le32(7),
		[]byte{0xFD}, le16(tds.DoneCount), le16(0), le64(2),
	)

	want := decodeStream(t, stream)
	if len(want) != 5 {
		t.Fatalf("reference decode produced %d tokens, want 5", len(want))
	}

	for split := 1; split < len(stream); split++ {
		p, tokens := collect()
		if err := p.Push(tds.Bytes(stream[:split])); err != nil {
			t.Fatalf("split %d, first push: %v", split, err)
		}
		if err := p.Push(tds.Bytes(stream[split:])); err != nil {
			t.Fatalf("split %d, second push: %v", split, err)
		}
		if !reflect.DeepEqual(*tokens, want) {
			t.Errorf("split at %d: tokens differ from single-chunk decode", split)
		}
	}

	// One byte at a time as the degenerate partition.
	p, tokens := collect()
	for i := range stream {
		if err := p.Push(tds.Bytes(stream[i : i+1])); err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
	}
	if !reflect.DeepEqual(*tokens, want) {
		t.Error("byte-at-a-time decode differs from single-chunk decode")
	}
}
