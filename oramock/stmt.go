package oramock

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgio"
	"github.com/orastack/orax/oraconn"
	"github.com/orastack/orax/oratype"
	"golang.org/x/text/encoding/unicode"
)

var nationalEncoding = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// rawImage is a pre-encoded wire image cell, produced by bind echo.
type rawImage []byte

// Stmt is one prepared scripted statement.
type Stmt struct {
	conn   *Conn
	script *Script

	binds     map[int]*oraconn.BindDef
	bindNames map[string]*oraconn.BindDef
	defines   map[int]*oraconn.OutputDef

	columns  []oraconn.ColumnDescription
	rows     [][]interface{}
	executed bool
	rowIdx   int
	closed   bool
}

func newStmt(c *Conn, s *Script) *Stmt {
	return &Stmt{
		conn:      c,
		script:    s,
		binds:     make(map[int]*oraconn.BindDef),
		bindNames: make(map[string]*oraconn.BindDef),
		defines:   make(map[int]*oraconn.OutputDef),
	}
}

// BindAt implements oraconn.Stmt.
func (st *Stmt) BindAt(pos int, def *oraconn.BindDef) error {
	if st.closed {
		return closedStmtErr()
	}
	st.binds[pos] = def
	if def.Name != "" {
		st.bindNames[def.Name] = def
	}
	return nil
}

// Execute implements oraconn.Stmt.
func (st *Stmt) Execute(ctx context.Context) (uint64, error) {
	if st.closed {
		return 0, closedStmtErr()
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	st.script.mu.Lock()
	execErr := st.script.execErr
	echo := st.script.echoBinds
	columns := st.script.columns
	rows := st.script.rows
	rowsAffected := st.script.rowsAffected
	outs := st.script.outs
	outNames := st.script.outNames
	st.script.mu.Unlock()

	if execErr != nil {
		return 0, execErr
	}

	if echo {
		cols, row, err := st.echoProjection()
		if err != nil {
			return 0, err
		}
		st.columns = cols
		st.rows = [][]interface{}{row}
	} else {
		st.columns = columns
		st.rows = rows
	}

	for pos, v := range outs {
		def, ok := st.binds[pos]
		if !ok {
			return 0, &oraconn.OraError{Code: 1036, Message: fmt.Sprintf("illegal variable name/number: %d", pos)}
		}
		if err := rewriteOut(def, v); err != nil {
			return 0, err
		}
	}
	for name, v := range outNames {
		def, ok := st.bindNames[name]
		if !ok {
			return 0, &oraconn.OraError{Code: 1036, Message: fmt.Sprintf("illegal variable name/number: %s", name)}
		}
		if err := rewriteOut(def, v); err != nil {
			return 0, err
		}
	}

	st.executed = true
	st.rowIdx = 0
	return rowsAffected, nil
}

// echoProjection turns the current binds into a describable projection plus
// one row of their wire images.
func (st *Stmt) echoProjection() ([]oraconn.ColumnDescription, []interface{}, error) {
	max := 0
	for pos := range st.binds {
		if pos > max {
			max = pos
		}
	}

	cols := make([]oraconn.ColumnDescription, 0, max)
	row := make([]interface{}, 0, max)
	for pos := 1; pos <= max; pos++ {
		def, ok := st.binds[pos]
		if !ok {
			return nil, nil, &oraconn.OraError{Code: 1008, Message: "not all variables bound"}
		}

		desc, err := echoColumn(pos, def)
		if err != nil {
			return nil, nil, err
		}
		cols = append(cols, desc)

		if def.Indicator == oraconn.IndNull {
			row = append(row, nil)
		} else {
			img := make([]byte, len(def.Data))
			copy(img, def.Data)
			row = append(row, rawImage(img))
		}
	}
	return cols, row, nil
}

func echoColumn(pos int, def *oraconn.BindDef) (oraconn.ColumnDescription, error) {
	name := def.Name
	if name == "" {
		name = fmt.Sprintf(":%d", pos)
	}
	desc := oraconn.ColumnDescription{Name: name, Nullable: true, CharsetForm: oraconn.CharsetImplicit}

	switch def.TypeCode {
	case oraconn.TypeCodeLongVarchar:
		desc.TypeCode = oraconn.TypeCodeChar
		desc.Size = uint32(len(def.Data))
		if desc.Size < 1 {
			desc.Size = 1
		}
	case oraconn.TypeCodeLongVarRaw:
		desc.TypeCode = oraconn.TypeCodeRaw
		desc.Size = uint32(len(def.Data))
		if desc.Size < 1 {
			desc.Size = 1
		}
	case oraconn.TypeCodeVarNum:
		desc.TypeCode = oraconn.TypeCodeNumber
		desc.Size = 22
	case oraconn.TypeCodeBFloat:
		desc.TypeCode = oraconn.TypeCodeIBFloat
		desc.Size = 4
	case oraconn.TypeCodeBDouble:
		desc.TypeCode = oraconn.TypeCodeIBDouble
		desc.Size = 8
	case oraconn.TypeCodeOraDate:
		desc.TypeCode = oraconn.TypeCodeDate
		desc.Size = 7
	case oraconn.TypeCodeTimestamp, oraconn.TypeCodeTimestampTZ, oraconn.TypeCodeTimestampLTZ,
		oraconn.TypeCodeIntervalYM, oraconn.TypeCodeIntervalDS:
		desc.TypeCode = def.TypeCode
		desc.Size = uint32(len(def.Data))
	default:
		return desc, &oraconn.OraError{Code: 3115, Message: fmt.Sprintf("unsupported datatype %d", def.TypeCode)}
	}
	return desc, nil
}

// Describe implements oraconn.Stmt.
func (st *Stmt) Describe() ([]oraconn.ColumnDescription, error) {
	if st.closed {
		return nil, closedStmtErr()
	}
	if !st.executed {
		return nil, &oraconn.OraError{Code: 24338, Message: "statement handle not executed"}
	}
	return st.columns, nil
}

// DefineAt implements oraconn.Stmt.
func (st *Stmt) DefineAt(pos int, def *oraconn.OutputDef) error {
	if st.closed {
		return closedStmtErr()
	}
	if pos < 1 || pos > len(st.columns) {
		return &oraconn.OraError{Code: 24334, Message: "no descriptor for this position"}
	}
	st.defines[pos] = def
	return nil
}

// Fetch implements oraconn.Stmt.
func (st *Stmt) Fetch(ctx context.Context) (bool, error) {
	if st.closed {
		return false, closedStmtErr()
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !st.executed {
		return false, &oraconn.OraError{Code: 24338, Message: "statement handle not executed"}
	}
	if st.rowIdx >= len(st.rows) {
		return false, nil
	}

	row := st.rows[st.rowIdx]
	for i := 0; i < len(st.columns); i++ {
		def, ok := st.defines[i+1]
		if !ok {
			continue
		}
		var cell interface{}
		if i < len(row) {
			cell = row[i]
		}
		if err := st.writeCell(def, st.columns[i], cell); err != nil {
			return false, err
		}
	}
	st.rowIdx++
	return true, nil
}

// Close implements oraconn.Stmt.
func (st *Stmt) Close() error {
	st.closed = true
	return nil
}

func closedStmtErr() error {
	return &oraconn.OraError{Code: 1003, Message: "no statement parsed"}
}

// writeCell materializes one scripted cell into a registered output buffer,
// applying the same truncation and indicator rules the native client does.
func (st *Stmt) writeCell(def *oraconn.OutputDef, desc oraconn.ColumnDescription, cell interface{}) error {
	if cell == nil {
		if def.Indicator != nil {
			*def.Indicator = oraconn.IndNull
		}
		if def.Length != nil {
			*def.Length = 0
		}
		return nil
	}

	switch def.TypeCode {
	case oraconn.TypeCodeClob, oraconn.TypeCodeBlob, oraconn.TypeCodeBFile,
		oraconn.TypeCodeRowID, oraconn.TypeCodeCursor:
		return st.writeDescriptorCell(def, desc, cell)
	}

	img, err := inlineImage(def.TypeCode, desc, cell)
	if err != nil {
		return err
	}

	prefixed := def.TypeCode == oraconn.TypeCodeLongVarchar || def.TypeCode == oraconn.TypeCodeLongVarRaw
	return writeInline(def, img, prefixed)
}

func (st *Stmt) writeDescriptorCell(def *oraconn.OutputDef, desc oraconn.ColumnDescription, cell interface{}) error {
	if def.Handle == nil {
		return &oraconn.OraError{Code: 24334, Message: "no descriptor for this position"}
	}

	d := &descriptor{kind: def.TypeCode}
	switch def.TypeCode {
	case oraconn.TypeCodeRowID:
		s, ok := cell.(string)
		if !ok {
			return cellTypeErr(def.TypeCode, cell)
		}
		d.text = s
	case oraconn.TypeCodeCursor:
		nested, ok := cell.(*Script)
		if !ok {
			return cellTypeErr(def.TypeCode, cell)
		}
		stmt := newStmt(st.conn, nested)
		if _, err := stmt.Execute(context.Background()); err != nil {
			return err
		}
		d.stmt = stmt
	case oraconn.TypeCodeClob:
		s, ok := cell.(string)
		if !ok {
			return cellTypeErr(def.TypeCode, cell)
		}
		content := []byte(s)
		if desc.CharsetForm == oraconn.CharsetNChar {
			var err error
			content, err = nationalEncoding.NewEncoder().Bytes(content)
			if err != nil {
				return err
			}
		}
		d.content = content
	default: // BLOB, BFILE
		b, ok := cell.([]byte)
		if !ok {
			return cellTypeErr(def.TypeCode, cell)
		}
		d.content = b
	}

	*def.Handle = st.conn.register(d)
	if def.Indicator != nil {
		*def.Indicator = oraconn.IndOK
	}
	if def.Length != nil {
		*def.Length = 0
	}
	return nil
}

// inlineImage encodes cell as the full wire image for code, prefixes
// included.
func inlineImage(code oraconn.TypeCode, desc oraconn.ColumnDescription, cell interface{}) ([]byte, error) {
	if img, ok := cell.(rawImage); ok {
		return []byte(img), nil
	}

	switch code {
	case oraconn.TypeCodeLongVarchar:
		var payload []byte
		switch v := cell.(type) {
		case string:
			payload = []byte(v)
		case []byte:
			payload = v
		default:
			return nil, cellTypeErr(code, cell)
		}
		if desc.CharsetForm == oraconn.CharsetNChar {
			enc, err := nationalEncoding.NewEncoder().Bytes(payload)
			if err != nil {
				return nil, err
			}
			payload = enc
		}
		return append(pgio.AppendUint32(nil, uint32(len(payload))), payload...), nil

	case oraconn.TypeCodeLongVarRaw:
		b, ok := cell.([]byte)
		if !ok {
			return nil, cellTypeErr(code, cell)
		}
		return append(pgio.AppendUint32(nil, uint32(len(b))), b...), nil

	case oraconn.TypeCodeVarNum:
		var n oratype.Numeric
		if err := n.Set(cell); err != nil {
			return nil, err
		}
		body, err := n.EncodeWire(nil)
		if err != nil {
			return nil, err
		}
		return append([]byte{byte(len(body))}, body...), nil

	case oraconn.TypeCodeBFloat:
		var f float32
		switch v := cell.(type) {
		case float32:
			f = v
		case float64:
			f = float32(v)
		default:
			return nil, cellTypeErr(code, cell)
		}
		return pgio.AppendUint32(nil, math.Float32bits(f)), nil

	case oraconn.TypeCodeBDouble:
		var f float64
		switch v := cell.(type) {
		case float32:
			f = float64(v)
		case float64:
			f = v
		default:
			return nil, cellTypeErr(code, cell)
		}
		return pgio.AppendUint64(nil, math.Float64bits(f)), nil

	case oraconn.TypeCodeOraDate, oraconn.TypeCodeDate:
		var d oratype.Date
		if err := d.Set(cell); err != nil {
			return nil, err
		}
		return d.EncodeWire(nil)

	case oraconn.TypeCodeTimestamp:
		var ts oratype.Timestamp
		if err := ts.Set(cell); err != nil {
			return nil, err
		}
		return ts.EncodeWire(nil)

	case oraconn.TypeCodeTimestampTZ:
		var ts oratype.TimestampTZ
		if err := ts.Set(cell); err != nil {
			return nil, err
		}
		return ts.EncodeWire(nil)

	case oraconn.TypeCodeTimestampLTZ:
		var ts oratype.TimestampLTZ
		if err := ts.Set(cell); err != nil {
			return nil, err
		}
		return ts.EncodeWire(nil)

	case oraconn.TypeCodeIntervalYM:
		iv, ok := cell.(oratype.IntervalYM)
		if !ok {
			return nil, cellTypeErr(code, cell)
		}
		iv.Status = oratype.Present
		return iv.EncodeWire(nil)

	case oraconn.TypeCodeIntervalDS:
		var iv oratype.IntervalDS
		if err := iv.Set(cell); err != nil {
			return nil, err
		}
		return iv.EncodeWire(nil)

	default:
		return nil, &oraconn.OraError{Code: 3115, Message: fmt.Sprintf("unsupported datatype %d", code)}
	}
}

// writeInline copies the image into the registered buffer, truncating to
// capacity and reporting the original length through the indicator.
func writeInline(def *oraconn.OutputDef, img []byte, prefixed bool) error {
	buf := def.Data[:cap(def.Data)]

	if prefixed {
		payload := img[4:]
		capPayload := len(buf) - 4
		if len(payload) > capPayload {
			copy(buf, img[:4])
			copy(buf[4:], payload[:capPayload])
			if def.Length != nil {
				*def.Length = uint32(capPayload)
			}
			if def.Indicator != nil {
				if len(payload) > math.MaxInt16 {
					*def.Indicator = oraconn.IndOversize
				} else {
					*def.Indicator = int16(len(payload))
				}
			}
			return nil
		}
		copy(buf, img)
		if def.Length != nil {
			*def.Length = uint32(len(payload))
		}
		if def.Indicator != nil {
			*def.Indicator = oraconn.IndOK
		}
		return nil
	}

	if len(img) > len(buf) {
		return &oraconn.OraError{Code: oraconn.ErrCodeValueTooLarge, Message: "PL/SQL: numeric or value error"}
	}
	copy(buf, img)
	if def.Length != nil {
		*def.Length = uint32(len(img))
	}
	if def.Indicator != nil {
		*def.Indicator = oraconn.IndOK
	}
	return nil
}

// rewriteOut replaces an OUT-capable bind's image after execution.
func rewriteOut(def *oraconn.BindDef, v interface{}) error {
	if def.OutCapacity < 1 {
		return &oraconn.OraError{Code: 1458, Message: "invalid length inside variable character string"}
	}
	if v == nil {
		def.Data = def.Data[:0]
		def.Indicator = oraconn.IndNull
		return nil
	}

	img, err := inlineImage(def.TypeCode, oraconn.ColumnDescription{CharsetForm: oraconn.CharsetImplicit}, v)
	if err != nil {
		return err
	}
	if len(img) > cap(def.Data) {
		return &oraconn.OraError{Code: oraconn.ErrCodeValueTooLarge, Message: "PL/SQL: numeric or value error"}
	}
	def.Data = def.Data[:len(img)]
	copy(def.Data, img)
	def.Indicator = oraconn.IndOK
	return nil
}

func cellTypeErr(code oraconn.TypeCode, cell interface{}) error {
	return fmt.Errorf("script cell %T does not match wire type %d", cell, code)
}
