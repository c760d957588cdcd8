package tds

// TokenType discriminates the closed set of token variants emitted by the
// parser. Unlike the wire tag it also covers the End-Of-Message sentinel,
// which has no byte representation.
type TokenType int

const (
	TypeColMetadataToken TokenType = iota
	TypeDoneToken
	TypeDoneProcToken
	TypeDoneInProcToken
	TypeEnvChangeToken
	TypeErrorMessageToken
	TypeInfoMessageToken
	TypeLoginAckToken
	TypeOrderToken
	TypeReturnStatusToken
	TypeRowToken
	TypeSSPIToken
	TypeEndOfMessageToken
)

// Token is one complete protocol message unit decoded from the stream.
type Token interface {
	Type() TokenType
	Name() string
}

// Column describes one column from a COLMETADATA token. The descriptor is
// required to interpret the raw bytes of subsequent ROW and NBCROW tokens.
type Column struct {
	Name      string
	Collation []byte // raw 5-byte collation, char types only
	UserType  uint32
	Length    int // declared data length, variable-width types only
	Flags     uint16
	TypeID    DataType
}

// Nullable reports whether the column admits NULL values.
func (c Column) Nullable() bool { return c.Flags&colFlagNullable != 0 }

// Identity reports whether the column is an identity column.
func (c Column) Identity() bool { return c.Flags&colFlagIdentity != 0 }

// ColMetadataToken carries the column descriptors for the result set that
// follows. Decoding one replaces the parser's column-metadata context.
type ColMetadataToken struct {
	Columns []Column
}

func (t *ColMetadataToken) Type() TokenType { return TypeColMetadataToken }
func (t *ColMetadataToken) Name() string    { return "COLMETADATA" }

// DoneToken signals completion of a SQL statement.
//
// RowCount is reconstructed with float64 arithmetic and is exact only below
// 2^53; see the package documentation for the wide-integer approximation.
type DoneToken struct {
	RowCount      float64
	Status        uint16
	CurCmd        uint16
	RowCountValid bool
}

func (t *DoneToken) Type() TokenType { return TypeDoneToken }
func (t *DoneToken) Name() string    { return "DONE" }

// More reports whether further results follow in the same response.
func (t *DoneToken) More() bool { return t.Status&DoneMore != 0 }

// SQLError reports whether the statement completed with an error.
func (t *DoneToken) SQLError() bool { return t.Status&DoneError != 0 }

// Attention reports whether the statement was cancelled.
func (t *DoneToken) Attention() bool { return t.Status&DoneAttn != 0 }

// DoneProcToken signals completion of a stored procedure. Same shape as
// DoneToken.
type DoneProcToken struct {
	RowCount      float64
	Status        uint16
	CurCmd        uint16
	RowCountValid bool
}

func (t *DoneProcToken) Type() TokenType { return TypeDoneProcToken }
func (t *DoneProcToken) Name() string    { return "DONEPROC" }

// More reports whether further results follow in the same response.
func (t *DoneProcToken) More() bool { return t.Status&DoneMore != 0 }

// DoneInProcToken signals completion of a statement inside a stored
// procedure. Same shape as DoneToken.
type DoneInProcToken struct {
	RowCount      float64
	Status        uint16
	CurCmd        uint16
	RowCountValid bool
}

func (t *DoneInProcToken) Type() TokenType { return TypeDoneInProcToken }
func (t *DoneInProcToken) Name() string    { return "DONEINPROC" }

// More reports whether further results follow in the same response.
func (t *DoneInProcToken) More() bool { return t.Status&DoneMore != 0 }

// EnvChangeValue holds one side of an environment change. Text-valued
// sub-kinds (database, language, charset, packet size, mirror partner) fill
// Text; binary-valued sub-kinds (collation, transaction descriptors, reset)
// fill Bytes.
type EnvChangeValue struct {
	Text  string
	Bytes []byte
}

// EnvChangeToken reports a server-initiated environment change as an
// old/new value pair typed per sub-kind. For sub-kinds the decoder does not
// recognize, Raw holds the undecoded payload and Old/New are empty.
type EnvChangeToken struct {
	Old  EnvChangeValue
	New  EnvChangeValue
	Raw  []byte
	Kind EnvChangeType
}

func (t *EnvChangeToken) Type() TokenType { return TypeEnvChangeToken }
func (t *EnvChangeToken) Name() string    { return "ENVCHANGE" }

// ErrorMessageToken carries a server error message.
type ErrorMessageToken struct {
	Message    string
	ServerName string
	ProcName   string
	Number     uint32
	LineNumber uint32
	State      uint8
	Class      uint8
}

func (t *ErrorMessageToken) Type() TokenType { return TypeErrorMessageToken }
func (t *ErrorMessageToken) Name() string    { return "ERROR" }

// InfoMessageToken carries a server informational message. Same shape as
// ErrorMessageToken.
type InfoMessageToken struct {
	Message    string
	ServerName string
	ProcName   string
	Number     uint32
	LineNumber uint32
	State      uint8
	Class      uint8
}

func (t *InfoMessageToken) Type() TokenType { return TypeInfoMessageToken }
func (t *InfoMessageToken) Name() string    { return "INFO" }

// ProgVersion is the server program version from a LOGINACK token.
type ProgVersion struct {
	Major       uint8
	Minor       uint8
	BuildNumHi  uint8
	BuildNumLow uint8
}

// LoginAckToken acknowledges a successful login.
type LoginAckToken struct {
	ProgName    string
	TDSVersion  uint32
	Interface   uint8
	ProgVersion ProgVersion
}

func (t *LoginAckToken) Type() TokenType { return TypeLoginAckToken }
func (t *LoginAckToken) Name() string    { return "LOGINACK" }

// OrderToken lists the column ids the result set is ordered by.
type OrderToken struct {
	Columns []uint16
}

func (t *OrderToken) Type() TokenType { return TypeOrderToken }
func (t *OrderToken) Name() string    { return "ORDER" }

// ReturnStatusToken carries the return value of a stored procedure.
type ReturnStatusToken struct {
	Value int32
}

func (t *ReturnStatusToken) Type() TokenType { return TypeReturnStatusToken }
func (t *ReturnStatusToken) Name() string    { return "RETURNSTATUS" }

// RowToken carries one decoded row. Values holds one entry per column of
// the current column-metadata context, in column order; NULL columns are
// nil. Emitted for both ROW and NBCROW wire tokens.
type RowToken struct {
	Values []any
}

func (t *RowToken) Type() TokenType { return TypeRowToken }
func (t *RowToken) Name() string    { return "ROW" }

// SSPIToken carries an SSPI authentication payload.
type SSPIToken struct {
	Data []byte
}

func (t *SSPIToken) Type() TokenType { return TypeSSPIToken }
func (t *SSPIToken) Name() string    { return "SSPI" }

// EndOfMessageToken demarcates a logical message boundary in the transport.
// It carries no payload and is not derived from byte content.
type EndOfMessageToken struct{}

func (t *EndOfMessageToken) Type() TokenType { return TypeEndOfMessageToken }
func (t *EndOfMessageToken) Name() string    { return "ENDOFMESSAGE" }
