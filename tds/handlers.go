package tds

import (
	"go.uber.org/zap"

	"github.com/soni5424/tedious/errors"
)

// defaultHandlers returns the registry with the standard token handlers
// installed. The registry is fixed after parser construction; a nil slot
// means the tag is a fatal unknown token.
func defaultHandlers() [256]Handler {
	var h [256]Handler
	h[TokenReturnStatus] = parseReturnStatus
	h[TokenColMetadata] = parseColMetadata
	h[TokenOrder] = parseOrder
	h[TokenError] = parseErrorMessage
	h[TokenInfo] = parseInfoMessage
	h[TokenLoginAck] = parseLoginAck
	h[TokenRow] = parseRow
	h[TokenNBCRow] = parseNBCRow
	h[TokenEnvChange] = parseEnvChange
	h[TokenSSPI] = parseSSPI
	h[TokenDone] = parseDone
	h[TokenDoneProc] = parseDoneProc
	h[TokenDoneInProc] = parseDoneInProc
	return h
}

func parseReturnStatus(p *Parser, _ []Column, _ Options, done func(Token)) {
	p.ReadInt32LE(func(v int32) {
		done(&ReturnStatusToken{Value: v})
	})
}

// parseDoneFields reads the common body of the DONE token family. The row
// count widened from 32 to 64 bits at protocol 7.2.
func parseDoneFields(p *Parser, opts Options, next func(status, curCmd uint16, rowCount float64)) {
	p.ReadUInt16LE(func(status uint16) {
		p.ReadUInt16LE(func(curCmd uint16) {
			if opts.Version >= Version72 {
				p.ReadUInt64LE(func(rc float64) {
					next(status, curCmd, rc)
				})
			} else {
				p.ReadUInt32LE(func(rc uint32) {
					next(status, curCmd, float64(rc))
				})
			}
		})
	})
}

func parseDone(p *Parser, _ []Column, opts Options, done func(Token)) {
	parseDoneFields(p, opts, func(status, curCmd uint16, rowCount float64) {
		done(&DoneToken{
			Status:        status,
			CurCmd:        curCmd,
			RowCount:      rowCount,
			RowCountValid: status&DoneCount != 0,
		})
	})
}

func parseDoneProc(p *Parser, _ []Column, opts Options, done func(Token)) {
	parseDoneFields(p, opts, func(status, curCmd uint16, rowCount float64) {
		done(&DoneProcToken{
			Status:        status,
			CurCmd:        curCmd,
			RowCount:      rowCount,
			RowCountValid: status&DoneCount != 0,
		})
	})
}

func parseDoneInProc(p *Parser, _ []Column, opts Options, done func(Token)) {
	parseDoneFields(p, opts, func(status, curCmd uint16, rowCount float64) {
		done(&DoneInProcToken{
			Status:        status,
			CurCmd:        curCmd,
			RowCount:      rowCount,
			RowCountValid: status&DoneCount != 0,
		})
	})
}

func parseEnvChange(p *Parser, _ []Column, _ Options, done func(Token)) {
	p.ReadUInt16LE(func(length uint16) {
		p.ReadUInt8(func(kind uint8) {
			envKind := EnvChangeType(kind)
			switch envKind {
			case EnvDatabase, EnvLanguage, EnvCharset, EnvPacketSize, EnvMirrorPartner:
				p.ReadBVarChar(func(newText string) {
					p.ReadBVarChar(func(oldText string) {
						done(&EnvChangeToken{
							Kind: envKind,
							New:  EnvChangeValue{Text: newText},
							Old:  EnvChangeValue{Text: oldText},
						})
					})
				})
			case EnvSQLCollation, EnvBeginTxn, EnvCommitTxn, EnvRollbackTxn, EnvResetConnection:
				p.ReadBVarByte(func(newBytes []byte) {
					p.ReadBVarByte(func(oldBytes []byte) {
						done(&EnvChangeToken{
							Kind: envKind,
							New:  EnvChangeValue{Bytes: newBytes},
							Old:  EnvChangeValue{Bytes: oldBytes},
						})
					})
				})
			default:
				// Consume the remainder of the token using its length
				// header so dispatch stays aligned with the stream.
				p.log.Warn("unrecognized ENVCHANGE sub-kind",
					zap.Uint8("kind", kind))
				if length < 1 {
					p.fail(errors.InvalidData("ENVCHANGE", "length shorter than sub-kind byte"))
					return
				}
				p.ReadBytes(int(length)-1, func(raw []byte) {
					done(&EnvChangeToken{Kind: envKind, Raw: raw})
				})
			}
		})
	})
}

// parseMessageFields reads the shared body of the ERROR and INFO tokens.
// The line number widened from 16 to 32 bits at protocol 7.2.
func parseMessageFields(p *Parser, opts Options, next func(number uint32, state, class uint8, message, server, proc string, line uint32)) {
	p.ReadUInt16LE(func(_ uint16) { // token length, implied by the fields
		p.ReadUInt32LE(func(number uint32) {
			p.ReadUInt8(func(state uint8) {
				p.ReadUInt8(func(class uint8) {
					p.ReadUsVarChar(func(message string) {
						p.ReadBVarChar(func(server string) {
							p.ReadBVarChar(func(proc string) {
								if opts.Version >= Version72 {
									p.ReadUInt32LE(func(line uint32) {
										next(number, state, class, message, server, proc, line)
									})
								} else {
									p.ReadUInt16LE(func(line uint16) {
										next(number, state, class, message, server, proc, uint32(line))
									})
								}
							})
						})
					})
				})
			})
		})
	})
}

func parseErrorMessage(p *Parser, _ []Column, opts Options, done func(Token)) {
	parseMessageFields(p, opts, func(number uint32, state, class uint8, message, server, proc string, line uint32) {
		done(&ErrorMessageToken{
			Number:     number,
			State:      state,
			Class:      class,
			Message:    message,
			ServerName: server,
			ProcName:   proc,
			LineNumber: line,
		})
	})
}

func parseInfoMessage(p *Parser, _ []Column, opts Options, done func(Token)) {
	parseMessageFields(p, opts, func(number uint32, state, class uint8, message, server, proc string, line uint32) {
		done(&InfoMessageToken{
			Number:     number,
			State:      state,
			Class:      class,
			Message:    message,
			ServerName: server,
			ProcName:   proc,
			LineNumber: line,
		})
	})
}

func parseLoginAck(p *Parser, _ []Column, _ Options, done func(Token)) {
	p.ReadUInt16LE(func(_ uint16) { // token length
		p.ReadUInt8(func(iface uint8) {
			p.ReadUInt32BE(func(tdsVersion uint32) {
				p.ReadBVarChar(func(progName string) {
					p.ReadBytes(4, func(v []byte) {
						done(&LoginAckToken{
							Interface:  iface,
							TDSVersion: tdsVersion,
							ProgName:   progName,
							ProgVersion: ProgVersion{
								Major:       v[0],
								Minor:       v[1],
								BuildNumHi:  v[2],
								BuildNumLow: v[3],
							},
						})
					})
				})
			})
		})
	})
}

func parseOrder(p *Parser, _ []Column, _ Options, done func(Token)) {
	p.ReadUInt16LE(func(length uint16) {
		if length%2 != 0 {
			p.fail(errors.InvalidData("ORDER", "odd byte length"))
			return
		}
		count := int(length) / 2
		cols := make([]uint16, 0, count)
		var readNext func()
		readNext = func() {
			if len(cols) == count {
				done(&OrderToken{Columns: cols})
				return
			}
			p.ReadUInt16LE(func(c uint16) {
				cols = append(cols, c)
				readNext()
			})
		}
		readNext()
	})
}

func parseSSPI(p *Parser, _ []Column, _ Options, done func(Token)) {
	p.ReadUsVarByte(func(data []byte) {
		done(&SSPIToken{Data: data})
	})
}

func parseColMetadata(p *Parser, _ []Column, opts Options, done func(Token)) {
	p.ReadUInt16LE(func(count uint16) {
		if count == nullLength16 {
			// No result-set metadata for this request.
			done(&ColMetadataToken{})
			return
		}
		columns := make([]Column, 0, count)
		var readNext func()
		readNext = func() {
			if len(columns) == int(count) {
				done(&ColMetadataToken{Columns: columns})
				return
			}
			parseColumn(p, opts, func(col Column) {
				columns = append(columns, col)
				readNext()
			})
		}
		readNext()
	})
}

// parseColumn reads one column descriptor. The user type widened from 16 to
// 32 bits at protocol 7.2.
func parseColumn(p *Parser, opts Options, next func(Column)) {
	readUserType := func(cont func(uint32)) {
		if opts.Version >= Version72 {
			p.ReadUInt32LE(cont)
		} else {
			p.ReadUInt16LE(func(v uint16) { cont(uint32(v)) })
		}
	}
	readUserType(func(userType uint32) {
		p.ReadUInt16LE(func(flags uint16) {
			p.ReadUInt8(func(typeByte uint8) {
				col := Column{
					UserType: userType,
					Flags:    flags,
					TypeID:   DataType(typeByte),
				}
				readName := func() {
					p.ReadBVarChar(func(name string) {
						col.Name = name
						next(col)
					})
				}
				switch col.TypeID {
				case TypeInt1, TypeBit, TypeInt2, TypeInt4, TypeFlt4, TypeFlt8, TypeInt8:
					readName()
				case TypeIntN, TypeBitN, TypeFltN:
					p.ReadUInt8(func(length uint8) {
						col.Length = int(length)
						readName()
					})
				case TypeBigVarChar, TypeBigChar, TypeNVarChar, TypeNChar:
					p.ReadUInt16LE(func(length uint16) {
						col.Length = int(length)
						p.ReadBytes(5, func(collation []byte) {
							col.Collation = collation
							readName()
						})
					})
				case TypeBigVarBinary, TypeBigBinary:
					p.ReadUInt16LE(func(length uint16) {
						col.Length = int(length)
						readName()
					})
				default:
					p.fail(errors.UnsupportedType("COLMETADATA", col.Name, typeByte))
				}
			})
		})
	})
}

func parseRow(p *Parser, columns []Column, _ Options, done func(Token)) {
	values := make([]any, len(columns))
	var readCol func(i int)
	readCol = func(i int) {
		if i == len(values) {
			done(&RowToken{Values: values})
			return
		}
		readValue(p, columns[i], func(v any) {
			values[i] = v
			readCol(i + 1)
		})
	}
	readCol(0)
}

// parseNBCRow decodes the null-bitmap row variant: a leading bitmap with
// one bit per column (bit set means NULL, column bytes omitted entirely),
// then the values of the remaining columns in column order.
func parseNBCRow(p *Parser, columns []Column, _ Options, done func(Token)) {
	bitmapLen := (len(columns) + 7) / 8
	p.ReadBytes(bitmapLen, func(bitmap []byte) {
		values := make([]any, len(columns))
		var readCol func(i int)
		readCol = func(i int) {
			if i == len(values) {
				done(&RowToken{Values: values})
				return
			}
			if bitmap[i/8]&(1<<(i%8)) != 0 {
				values[i] = nil
				readCol(i + 1)
				return
			}
			readValue(p, columns[i], func(v any) {
				values[i] = v
				readCol(i + 1)
			})
		}
		readCol(0)
	})
}

// readValue decodes one column value according to its descriptor. NULL is
// reported as nil: a zero length prefix for the nullable fixed-width types,
// 0xFFFF for the 16-bit length-prefixed types.
func readValue(p *Parser, col Column, next func(any)) {
	switch col.TypeID {
	case TypeInt1:
		p.ReadUInt8(func(v uint8) { next(v) })
	case TypeBit:
		p.ReadUInt8(func(v uint8) { next(v != 0) })
	case TypeInt2:
		p.ReadInt16LE(func(v int16) { next(v) })
	case TypeInt4:
		p.ReadInt32LE(func(v int32) { next(v) })
	case TypeInt8:
		p.ReadInt64LE(func(v float64) { next(v) })
	case TypeFlt4:
		p.ReadFloatLE(func(v float32) { next(v) })
	case TypeFlt8:
		p.ReadDoubleLE(func(v float64) { next(v) })
	case TypeIntN:
		p.ReadUInt8(func(length uint8) {
			switch length {
			case 0:
				next(nil)
			case 1:
				p.ReadUInt8(func(v uint8) { next(v) })
			case 2:
				p.ReadInt16LE(func(v int16) { next(v) })
			case 4:
				p.ReadInt32LE(func(v int32) { next(v) })
			case 8:
				p.ReadInt64LE(func(v float64) { next(v) })
			default:
				p.fail(errors.InvalidData("ROW", "bad INTN value length"))
			}
		})
	case TypeBitN:
		p.ReadUInt8(func(length uint8) {
			switch length {
			case 0:
				next(nil)
			case 1:
				p.ReadUInt8(func(v uint8) { next(v != 0) })
			default:
				p.fail(errors.InvalidData("ROW", "bad BITN value length"))
			}
		})
	case TypeFltN:
		p.ReadUInt8(func(length uint8) {
			switch length {
			case 0:
				next(nil)
			case 4:
				p.ReadFloatLE(func(v float32) { next(v) })
			case 8:
				p.ReadDoubleLE(func(v float64) { next(v) })
			default:
				p.fail(errors.InvalidData("ROW", "bad FLTN value length"))
			}
		})
	case TypeBigVarChar, TypeBigChar:
		p.ReadUInt16LE(func(length uint16) {
			if length == nullLength16 {
				next(nil)
				return
			}
			p.ReadBytes(int(length), func(b []byte) {
				next(latin1String(b))
			})
		})
	case TypeNVarChar, TypeNChar:
		p.ReadUInt16LE(func(length uint16) {
			if length == nullLength16 {
				next(nil)
				return
			}
			p.ReadBytes(int(length), func(b []byte) {
				next(ucs2String(b))
			})
		})
	case TypeBigVarBinary, TypeBigBinary:
		p.ReadUInt16LE(func(length uint16) {
			if length == nullLength16 {
				next(nil)
				return
			}
			p.ReadBytes(int(length), func(b []byte) {
				next(b)
			})
		})
	default:
		p.fail(errors.UnsupportedType("ROW", col.Name, byte(col.TypeID)))
	}
}
