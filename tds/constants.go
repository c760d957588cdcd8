package tds

import "fmt"

// Token tags identify each token type on the wire.
const (
	TokenReturnStatus byte = 0x79
	TokenColMetadata  byte = 0x81
	TokenOrder        byte = 0xA9
	TokenError        byte = 0xAA
	TokenInfo         byte = 0xAB
	TokenReturnValue  byte = 0xAC
	TokenLoginAck     byte = 0xAD
	TokenFeatureExt   byte = 0xAE
	TokenRow          byte = 0xD1
	TokenNBCRow       byte = 0xD2
	TokenEnvChange    byte = 0xE3
	TokenSSPI         byte = 0xED
	TokenFedAuthInfo  byte = 0xEE
	TokenDone         byte = 0xFD
	TokenDoneProc     byte = 0xFE
	TokenDoneInProc   byte = 0xFF
)

// TokenNames maps token tags to human-readable names for logging and diagnostics.
var TokenNames = map[byte]string{
	TokenReturnStatus: "RETURNSTATUS",
	TokenColMetadata:  "COLMETADATA",
	TokenOrder:        "ORDER",
	TokenError:        "ERROR",
	TokenInfo:         "INFO",
	TokenReturnValue:  "RETURNVALUE",
	TokenLoginAck:     "LOGINACK",
	TokenFeatureExt:   "FEATUREEXTACK",
	TokenRow:          "ROW",
	TokenNBCRow:       "NBCROW",
	TokenEnvChange:    "ENVCHANGE",
	TokenSSPI:         "SSPI",
	TokenFedAuthInfo:  "FEDAUTHINFO",
	TokenDone:         "DONE",
	TokenDoneProc:     "DONEPROC",
	TokenDoneInProc:   "DONEINPROC",
}

// TokenName returns the name for a token tag, or a hex placeholder for
// tags outside the known set.
func TokenName(tag byte) string {
	if name, ok := TokenNames[tag]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", tag)
}

// DataType identifies a column's wire data type.
type DataType byte

// Column data types understood by the row decoders.
const (
	TypeInt1         DataType = 0x30 // 1-byte unsigned integer
	TypeBit          DataType = 0x32
	TypeInt2         DataType = 0x34
	TypeInt4         DataType = 0x38
	TypeFlt4         DataType = 0x3B
	TypeFlt8         DataType = 0x3E
	TypeInt8         DataType = 0x7F
	TypeIntN         DataType = 0x26 // nullable integer, 1/2/4/8 bytes
	TypeBitN         DataType = 0x68
	TypeFltN         DataType = 0x6D // nullable float, 4/8 bytes
	TypeBigVarBinary DataType = 0xA5
	TypeBigVarChar   DataType = 0xA7
	TypeBigBinary    DataType = 0xAD
	TypeBigChar      DataType = 0xAF
	TypeNVarChar     DataType = 0xE7
	TypeNChar        DataType = 0xEF
)

// EnvChangeType identifies an ENVCHANGE sub-kind.
type EnvChangeType byte

const (
	EnvDatabase        EnvChangeType = 1
	EnvLanguage        EnvChangeType = 2
	EnvCharset         EnvChangeType = 3
	EnvPacketSize      EnvChangeType = 4
	EnvSQLCollation    EnvChangeType = 7
	EnvBeginTxn        EnvChangeType = 8
	EnvCommitTxn       EnvChangeType = 9
	EnvRollbackTxn     EnvChangeType = 10
	EnvMirrorPartner   EnvChangeType = 13
	EnvResetConnection EnvChangeType = 18
)

// Done status flags, combined bitwise in the status field of the DONE,
// DONEPROC and DONEINPROC tokens.
const (
	DoneFinal    uint16 = 0x00
	DoneMore     uint16 = 0x01
	DoneError    uint16 = 0x02
	DoneInxact   uint16 = 0x04
	DoneCount    uint16 = 0x10
	DoneAttn     uint16 = 0x20
	DoneSrvError uint16 = 0x100
)

// Column flag bits from the COLMETADATA flags field.
const (
	colFlagNullable uint16 = 0x01
	colFlagCaseSen  uint16 = 0x02
	colFlagIdentity uint16 = 0x10
)

// Sentinel length meaning NULL for 16-bit length-prefixed column values,
// and meaning "no metadata" for the COLMETADATA column count.
const nullLength16 = 0xFFFF
