//go:build unix

package oraconn

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// ocilib binds the native client library with purego so no cgo toolchain is
// required. Everything above this file is oblivious to how the calls are
// made; the scripted driver in package oramock implements the same
// interfaces without any native code.

// Native call interface constants used by this binding.
const (
	ociSuccess         = 0
	ociSuccessWithInfo = 1
	ociNoData          = 100
	ociError           = -1
	ociInvalidHandle   = -2

	ociDefault  = 0
	ociThreaded = 1

	ociHTypeEnv      = 1
	ociHTypeError    = 2
	ociHTypeSvcCtx   = 3
	ociHTypeStmt     = 4
	ociHTypeSession  = 9
	ociHTypeAuthInfo = 9
	ociHTypeSPool    = 27

	ociDTypeLob   = 50
	ociDTypeParam = 53
	ociDTypeRowid = 54

	ociAttrDataSize    = 1
	ociAttrDataType    = 2
	ociAttrName        = 4
	ociAttrPrecision   = 5
	ociAttrScale       = 6
	ociAttrIsNull      = 7
	ociAttrRowCount    = 9
	ociAttrParamCount  = 18
	ociAttrCharsetForm = 32

	ociStmtLanguageNative = 1
	ociNtvSyntax          = 1

	ociSPCHomogeneous = 0x0001
	ociSPCStmtCache   = 0x0004

	ociSessGetSPool      = 0x0001
	ociSessGetStmtCache  = 0x0004
	ociSessGetPurityNew  = 0x0010
	ociSessGetPuritySelf = 0x0020

	ociFetchNext = 2
)

var (
	ociEnvCreate          func(env *uintptr, mode uint32, ctx, malloc, realloc, free uintptr, xtramemSz uintptr, usrmem uintptr) int32
	ociHandleAlloc        func(parent uintptr, dst *uintptr, htype uint32, xtramemSz uintptr, usrmem uintptr) int32
	ociHandleFree         func(h uintptr, htype uint32) int32
	ociDescriptorAlloc    func(env uintptr, dst *uintptr, dtype uint32, xtramemSz uintptr, usrmem uintptr) int32
	ociDescriptorFree     func(d uintptr, dtype uint32) int32
	ociAttrGet            func(src uintptr, srcType uint32, dst unsafe.Pointer, dstSize *uint32, attr uint32, errh uintptr) int32
	ociAttrSet            func(target uintptr, targetType uint32, src unsafe.Pointer, size uint32, attr uint32, errh uintptr) int32
	ociErrorGet           func(h uintptr, recordno uint32, sqlstate uintptr, code *int32, buf unsafe.Pointer, bufsiz uint32, htype uint32) int32
	ociSessionPoolCreate  func(env, errh, spool uintptr, name *uintptr, nameLen *uint32, db unsafe.Pointer, dbLen uint32, min, max, incr uint32, usr unsafe.Pointer, usrLen uint32, pwd unsafe.Pointer, pwdLen uint32, mode uint32) int32
	ociSessionPoolDestroy func(spool, errh uintptr, mode uint32) int32
	ociSessionGet         func(env, errh uintptr, svc *uintptr, auth uintptr, name unsafe.Pointer, nameLen uint32, tag uintptr, tagLen uint32, retTag *uintptr, retTagLen *uint32, found *uint8, mode uint32) int32
	ociSessionRelease     func(svc, errh uintptr, tag uintptr, tagLen uint32, mode uint32) int32
	ociStmtPrepare2       func(svc uintptr, stmt *uintptr, errh uintptr, sql unsafe.Pointer, sqlLen uint32, key uintptr, keyLen uint32, language, mode uint32) int32
	ociStmtRelease        func(stmt, errh uintptr, key uintptr, keyLen uint32, mode uint32) int32
	ociStmtExecute        func(svc, stmt, errh uintptr, iters, rowoff uint32, snapIn, snapOut uintptr, mode uint32) int32
	ociStmtFetch2         func(stmt, errh uintptr, nrows uint32, orientation uint16, scrollOffset int32, mode uint32) int32
	ociParamGet           func(h uintptr, htype uint32, errh uintptr, param *uintptr, pos uint32) int32
	ociDefineByPos        func(stmt uintptr, def *uintptr, errh uintptr, pos uint32, value unsafe.Pointer, valueSize int64, dty uint16, ind unsafe.Pointer, rlen unsafe.Pointer, rcode uintptr, mode uint32) int32
	ociBindByPos          func(stmt uintptr, bind *uintptr, errh uintptr, pos uint32, value unsafe.Pointer, valueSize int64, dty uint16, ind unsafe.Pointer, alen unsafe.Pointer, rcode uintptr, maxarr uint32, curele uintptr, mode uint32) int32
	ociBindByName         func(stmt uintptr, bind *uintptr, errh uintptr, name unsafe.Pointer, nameLen int32, value unsafe.Pointer, valueSize int64, dty uint16, ind unsafe.Pointer, alen unsafe.Pointer, rcode uintptr, maxarr uint32, curele uintptr, mode uint32) int32
	ociRowidToChar        func(rowid uintptr, buf unsafe.Pointer, bufLen *uint16, errh uintptr) int32
	ociLobGetLength2      func(svc, errh, lob uintptr, length *uint64) int32
	ociLobRead2           func(svc, errh, lob uintptr, byteAmt *uint64, charAmt *uint64, offset uint64, buf unsafe.Pointer, bufLen uint64, piece uint8, ctxp, cbfp uintptr, csid uint16, csfrm uint8) int32
	ociServerVersion      func(h, errh uintptr, buf unsafe.Pointer, bufLen uint32, htype uint8) int32
)

var (
	ociLibOnce sync.Once
	ociLibErr  error
	ociLibH    uintptr
)

func defaultClientLibName() string {
	if runtime.GOOS == "darwin" {
		return "libclntsh.dylib"
	}
	return "libclntsh.so"
}

func loadClientLibrary(libPath string) error {
	ociLibOnce.Do(func() {
		if libPath == "" {
			libPath = defaultClientLibName()
		}
		ociLibH, ociLibErr = purego.Dlopen(libPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if ociLibErr != nil {
			return
		}

		purego.RegisterLibFunc(&ociEnvCreate, ociLibH, "OCIEnvCreate")
		purego.RegisterLibFunc(&ociHandleAlloc, ociLibH, "OCIHandleAlloc")
		purego.RegisterLibFunc(&ociHandleFree, ociLibH, "OCIHandleFree")
		purego.RegisterLibFunc(&ociDescriptorAlloc, ociLibH, "OCIDescriptorAlloc")
		purego.RegisterLibFunc(&ociDescriptorFree, ociLibH, "OCIDescriptorFree")
		purego.RegisterLibFunc(&ociAttrGet, ociLibH, "OCIAttrGet")
		purego.RegisterLibFunc(&ociAttrSet, ociLibH, "OCIAttrSet")
		purego.RegisterLibFunc(&ociErrorGet, ociLibH, "OCIErrorGet")
		purego.RegisterLibFunc(&ociSessionPoolCreate, ociLibH, "OCISessionPoolCreate")
		purego.RegisterLibFunc(&ociSessionPoolDestroy, ociLibH, "OCISessionPoolDestroy")
		purego.RegisterLibFunc(&ociSessionGet, ociLibH, "OCISessionGet")
		purego.RegisterLibFunc(&ociSessionRelease, ociLibH, "OCISessionRelease")
		purego.RegisterLibFunc(&ociStmtPrepare2, ociLibH, "OCIStmtPrepare2")
		purego.RegisterLibFunc(&ociStmtRelease, ociLibH, "OCIStmtRelease")
		purego.RegisterLibFunc(&ociStmtExecute, ociLibH, "OCIStmtExecute")
		purego.RegisterLibFunc(&ociStmtFetch2, ociLibH, "OCIStmtFetch2")
		purego.RegisterLibFunc(&ociParamGet, ociLibH, "OCIParamGet")
		purego.RegisterLibFunc(&ociDefineByPos, ociLibH, "OCIDefineByPos")
		purego.RegisterLibFunc(&ociBindByPos, ociLibH, "OCIBindByPos")
		purego.RegisterLibFunc(&ociBindByName, ociLibH, "OCIBindByName")
		purego.RegisterLibFunc(&ociRowidToChar, ociLibH, "OCIRowidToChar")
		purego.RegisterLibFunc(&ociLobGetLength2, ociLibH, "OCILobGetLength2")
		purego.RegisterLibFunc(&ociLobRead2, ociLibH, "OCILobRead2")
		purego.RegisterLibFunc(&ociServerVersion, ociLibH, "OCIServerVersion")
	})
	return ociLibErr
}

// NewNativeDriver loads the client library (libPath may be empty to use the
// platform default name) and returns a Driver backed by it. Loading is
// process-wide; subsequent calls reuse the already loaded library.
func NewNativeDriver(libPath string) (Driver, error) {
	if err := loadClientLibrary(libPath); err != nil {
		return nil, fmt.Errorf("cannot load client library: %w", err)
	}

	d := &nativeDriver{}
	var env uintptr
	if rc := ociEnvCreate(&env, ociThreaded, 0, 0, 0, 0, 0, 0); rc != ociSuccess {
		return nil, &OraError{Code: int(-rc), Message: "environment creation failed"}
	}
	d.env = env

	var errh uintptr
	if rc := ociHandleAlloc(env, &errh, ociHTypeError, 0, 0); rc != ociSuccess {
		return nil, &OraError{Code: int(-rc), Message: "error handle allocation failed"}
	}
	d.errh = errh

	return d, nil
}

type nativeDriver struct {
	env  uintptr
	errh uintptr
}

func (d *nativeDriver) lastError(errh uintptr) error {
	var code int32
	buf := make([]byte, 3024)
	ociErrorGet(errh, 1, 0, &code, unsafe.Pointer(&buf[0]), uint32(len(buf)), ociHTypeError)
	msg := buf[:]
	if i := indexByteZero(msg); i >= 0 {
		msg = msg[:i]
	}
	return &OraError{Code: int(code), Message: strings.TrimSpace(string(msg))}
}

func indexByteZero(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

func (d *nativeDriver) CreatePool(ctx context.Context, cfg PoolConfig) (Pool, error) {
	var spool uintptr
	if rc := ociHandleAlloc(d.env, &spool, ociHTypeSPool, 0, 0); rc != ociSuccess {
		return nil, d.lastError(d.errh)
	}

	mode := uint32(ociSPCStmtCache)
	if cfg.Homogeneous {
		mode |= ociSPCHomogeneous
	}

	db := []byte(cfg.Database)
	usr := []byte(cfg.User)
	pwd := []byte(cfg.Password)

	var namePtr uintptr
	var nameLen uint32
	rc := ociSessionPoolCreate(
		d.env, d.errh, spool,
		&namePtr, &nameLen,
		unsafe.Pointer(&db[0]), uint32(len(db)),
		uint32(cfg.MinSessions), uint32(cfg.MaxSessions), uint32(cfg.SessionIncrement),
		unsafe.Pointer(&usr[0]), uint32(len(usr)),
		unsafe.Pointer(&pwd[0]), uint32(len(pwd)),
		mode,
	)
	if rc != ociSuccess {
		err := d.lastError(d.errh)
		ociHandleFree(spool, ociHTypeSPool)
		return nil, err
	}

	name := make([]byte, nameLen)
	copy(name, unsafe.Slice((*byte)(unsafe.Pointer(namePtr)), nameLen))

	return &nativePool{d: d, spool: spool, name: name}, nil
}

func (d *nativeDriver) Connect(ctx context.Context, database, user, password string) (Conn, error) {
	// A dedicated session is a pool of exactly one without pooling modes.
	pool, err := d.CreatePool(ctx, PoolConfig{
		Database: database, User: user, Password: password,
		MinSessions: 0, SessionIncrement: 1, MaxSessions: 1, Homogeneous: true,
	})
	if err != nil {
		return nil, err
	}
	conn, err := pool.Checkout(ctx, SessionFromPool)
	if err != nil {
		pool.Close(ctx)
		return nil, err
	}
	return &dedicatedConn{Conn: conn, pool: pool}, nil
}

type dedicatedConn struct {
	Conn
	pool Pool
}

func (c *dedicatedConn) Close(ctx context.Context) error {
	err := c.Conn.Close(ctx)
	c.pool.Close(ctx)
	return err
}

type nativePool struct {
	d     *nativeDriver
	spool uintptr
	name  []byte

	mu   sync.Mutex
	open int
}

func (p *nativePool) Name() string { return string(p.name) }

func (p *nativePool) Checkout(ctx context.Context, flags SessionFlags) (Conn, error) {
	var auth uintptr
	if rc := ociHandleAlloc(p.d.env, &auth, ociHTypeAuthInfo, 0, 0); rc != ociSuccess {
		return nil, p.d.lastError(p.d.errh)
	}
	defer ociHandleFree(auth, ociHTypeAuthInfo)

	mode := uint32(0)
	if flags&SessionFromPool != 0 {
		mode |= ociSessGetSPool | ociSessGetStmtCache
	}
	if flags&SessionPuritySelf != 0 {
		mode |= ociSessGetPuritySelf
	}
	if flags&SessionPurityNew != 0 {
		mode |= ociSessGetPurityNew
	}

	var svc uintptr
	var found uint8
	rc := ociSessionGet(
		p.d.env, p.d.errh, &svc, auth,
		unsafe.Pointer(&p.name[0]), uint32(len(p.name)),
		0, 0, nil, nil, &found, mode,
	)
	if rc != ociSuccess {
		return nil, p.d.lastError(p.d.errh)
	}

	var errh uintptr
	if rc := ociHandleAlloc(p.d.env, &errh, ociHTypeError, 0, 0); rc != ociSuccess {
		ociSessionRelease(svc, p.d.errh, 0, 0, ociDefault)
		return nil, p.d.lastError(p.d.errh)
	}

	p.mu.Lock()
	p.open++
	p.mu.Unlock()

	return &nativeConn{d: p.d, pool: p, svc: svc, errh: errh}, nil
}

func (p *nativePool) Return(conn Conn) error {
	nc, ok := conn.(*nativeConn)
	if !ok {
		return fmt.Errorf("connection does not belong to this pool")
	}
	return nc.Close(context.Background())
}

func (p *nativePool) OpenCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

func (p *nativePool) Close(ctx context.Context) error {
	if rc := ociSessionPoolDestroy(p.spool, p.d.errh, ociDefault); rc != ociSuccess {
		return p.d.lastError(p.d.errh)
	}
	ociHandleFree(p.spool, ociHTypeSPool)
	return nil
}

type nativeConn struct {
	d    *nativeDriver
	pool *nativePool
	svc  uintptr
	errh uintptr

	version string
	closed  bool
}

func (c *nativeConn) Prepare(ctx context.Context, sql string) (Stmt, error) {
	sqlBytes := []byte(sql)
	var stmt uintptr
	rc := ociStmtPrepare2(c.svc, &stmt, c.errh, unsafe.Pointer(&sqlBytes[0]), uint32(len(sqlBytes)), 0, 0, ociNtvSyntax, ociDefault)
	if rc != ociSuccess {
		return nil, c.d.lastError(c.errh)
	}
	return &nativeStmt{c: c, stmt: stmt}, nil
}

func (c *nativeConn) Ping(ctx context.Context) error {
	stmt, err := c.Prepare(ctx, "SELECT 1 FROM dual")
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.Execute(ctx)
	return err
}

func (c *nativeConn) ServerVersion() string {
	if c.version == "" {
		buf := make([]byte, 512)
		if rc := ociServerVersion(c.svc, c.errh, unsafe.Pointer(&buf[0]), uint32(len(buf)), ociHTypeSvcCtx); rc == ociSuccess {
			if i := indexByteZero(buf); i >= 0 {
				buf = buf[:i]
			}
			c.version = string(buf)
		}
	}
	return c.version
}

func (c *nativeConn) RowidText(handle uint64) (string, error) {
	if handle == 0 {
		return "", &OraError{Code: 1410, Message: "invalid ROWID"}
	}
	buf := make([]byte, 19)
	bufLen := uint16(len(buf))
	if rc := ociRowidToChar(uintptr(handle), unsafe.Pointer(&buf[0]), &bufLen, c.errh); rc != ociSuccess {
		return "", c.d.lastError(c.errh)
	}
	return string(buf[:bufLen]), nil
}

func (c *nativeConn) LobLength(ctx context.Context, handle uint64) (int64, error) {
	var length uint64
	if rc := ociLobGetLength2(c.svc, c.errh, uintptr(handle), &length); rc != ociSuccess {
		return 0, c.d.lastError(c.errh)
	}
	return int64(length), nil
}

func (c *nativeConn) LobRead(ctx context.Context, handle uint64, offset int64, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	byteAmt := uint64(len(p))
	var charAmt uint64
	// LOB offsets are 1-based in the call interface.
	rc := ociLobRead2(c.svc, c.errh, uintptr(handle), &byteAmt, &charAmt, uint64(offset)+1, unsafe.Pointer(&p[0]), uint64(len(p)), 0, 0, 0, 0, 0)
	if rc != ociSuccess && rc != ociNoData {
		return 0, c.d.lastError(c.errh)
	}
	return int(byteAmt), nil
}

func (c *nativeConn) OpenCursor(handle uint64) (Stmt, error) {
	if handle == 0 {
		return nil, &OraError{Code: 1001, Message: "invalid cursor"}
	}
	return &nativeStmt{c: c, stmt: uintptr(handle), executed: true}, nil
}

func (c *nativeConn) DescriptorFree(handle uint64) error {
	if handle == 0 {
		return nil
	}
	ociDescriptorFree(uintptr(handle), ociDTypeLob)
	return nil
}

func (c *nativeConn) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true
	rc := ociSessionRelease(c.svc, c.errh, 0, 0, ociDefault)
	ociHandleFree(c.errh, ociHTypeError)
	if c.pool != nil {
		c.pool.mu.Lock()
		c.pool.open--
		c.pool.mu.Unlock()
	}
	if rc != ociSuccess {
		return c.d.lastError(c.d.errh)
	}
	return nil
}

type nativeStmt struct {
	c        *nativeConn
	stmt     uintptr
	executed bool

	// binds and defines are retained so the registered buffer and
	// indicator addresses stay reachable for the statement's lifetime.
	binds   []*BindDef
	defines []*OutputDef
}

func (s *nativeStmt) BindAt(pos int, def *BindDef) error {
	var bindp uintptr
	var data unsafe.Pointer
	size := int64(len(def.Data))
	if int64(def.OutCapacity) > size {
		size = int64(def.OutCapacity)
	}
	if cap(def.Data) > 0 {
		data = unsafe.Pointer(&def.Data[:1][0])
	}
	var rc int32
	if def.Name != "" {
		name := []byte(def.Name)
		rc = ociBindByName(s.stmt, &bindp, s.c.errh, unsafe.Pointer(&name[0]), int32(len(name)), data, size, uint16(def.TypeCode), unsafe.Pointer(&def.Indicator), nil, 0, 0, 0, ociDefault)
	} else {
		rc = ociBindByPos(s.stmt, &bindp, s.c.errh, uint32(pos), data, size, uint16(def.TypeCode), unsafe.Pointer(&def.Indicator), nil, 0, 0, 0, ociDefault)
	}
	if rc != ociSuccess {
		return s.c.d.lastError(s.c.errh)
	}
	s.binds = append(s.binds, def)
	return nil
}

func (s *nativeStmt) Execute(ctx context.Context) (uint64, error) {
	// iters is 0 for statements that return rows, 1 otherwise. Whether it
	// returns rows is known after prepare; a describe of zero columns before
	// execute means DML.
	iters := uint32(1)
	var numCols uint32
	sz := uint32(4)
	if ociAttrGet(s.stmt, ociHTypeStmt, unsafe.Pointer(&numCols), &sz, ociAttrParamCount, s.c.errh) == ociSuccess && numCols > 0 {
		iters = 0
	}

	rc := ociStmtExecute(s.c.svc, s.stmt, s.c.errh, iters, 0, 0, 0, ociDefault)
	if rc != ociSuccess && rc != ociSuccessWithInfo {
		return 0, s.c.d.lastError(s.c.errh)
	}
	s.executed = true

	var rowCount uint64
	sz = uint32(8)
	ociAttrGet(s.stmt, ociHTypeStmt, unsafe.Pointer(&rowCount), &sz, ociAttrRowCount, s.c.errh)
	return rowCount, nil
}

func (s *nativeStmt) Describe() ([]ColumnDescription, error) {
	var numCols uint32
	sz := uint32(4)
	if ociAttrGet(s.stmt, ociHTypeStmt, unsafe.Pointer(&numCols), &sz, ociAttrParamCount, s.c.errh) != ociSuccess {
		return nil, s.c.d.lastError(s.c.errh)
	}

	descs := make([]ColumnDescription, numCols)
	for i := uint32(0); i < numCols; i++ {
		var param uintptr
		if ociParamGet(s.stmt, ociHTypeStmt, s.c.errh, &param, i+1) != ociSuccess {
			return nil, s.c.d.lastError(s.c.errh)
		}

		d := &descs[i]
		var u16 uint16
		sz = 2
		ociAttrGet(param, ociDTypeParam, unsafe.Pointer(&u16), &sz, ociAttrDataType, s.c.errh)
		d.TypeCode = TypeCode(u16)

		sz = 2
		ociAttrGet(param, ociDTypeParam, unsafe.Pointer(&u16), &sz, ociAttrDataSize, s.c.errh)
		d.Size = uint32(u16)

		var i16 int16
		sz = 2
		ociAttrGet(param, ociDTypeParam, unsafe.Pointer(&i16), &sz, ociAttrPrecision, s.c.errh)
		d.Precision = i16

		var i8 int8
		sz = 1
		ociAttrGet(param, ociDTypeParam, unsafe.Pointer(&i8), &sz, ociAttrScale, s.c.errh)
		d.Scale = i8

		var u8 uint8
		sz = 1
		ociAttrGet(param, ociDTypeParam, unsafe.Pointer(&u8), &sz, ociAttrCharsetForm, s.c.errh)
		d.CharsetForm = CharsetForm(u8)

		sz = 1
		ociAttrGet(param, ociDTypeParam, unsafe.Pointer(&u8), &sz, ociAttrIsNull, s.c.errh)
		d.Nullable = u8 != 0

		var namePtr uintptr
		var nameLen uint32
		if ociAttrGet(param, ociDTypeParam, unsafe.Pointer(&namePtr), &nameLen, ociAttrName, s.c.errh) == ociSuccess && namePtr != 0 {
			d.Name = string(unsafe.Slice((*byte)(unsafe.Pointer(namePtr)), nameLen))
		}

		ociDescriptorFree(param, ociDTypeParam)
	}
	return descs, nil
}

func (s *nativeStmt) DefineAt(pos int, def *OutputDef) error {
	var defp uintptr
	var rc int32
	switch {
	case def.Handle != nil:
		if *def.Handle == 0 {
			dtype := uint32(ociDTypeLob)
			if def.TypeCode == TypeCodeRowID {
				dtype = ociDTypeRowid
			}
			var desc uintptr
			if def.TypeCode != TypeCodeCursor {
				if ociDescriptorAlloc(s.c.d.env, &desc, dtype, 0, 0) != ociSuccess {
					return s.c.d.lastError(s.c.errh)
				}
			} else {
				if ociHandleAlloc(s.c.d.env, &desc, ociHTypeStmt, 0, 0) != ociSuccess {
					return s.c.d.lastError(s.c.errh)
				}
			}
			*def.Handle = uint64(desc)
		}
		rc = ociDefineByPos(s.stmt, &defp, s.c.errh, uint32(pos), unsafe.Pointer(def.Handle), int64(unsafe.Sizeof(uintptr(0))), uint16(def.TypeCode), unsafe.Pointer(def.Indicator), unsafe.Pointer(def.Length), 0, ociDefault)
	default:
		rc = ociDefineByPos(s.stmt, &defp, s.c.errh, uint32(pos), unsafe.Pointer(&def.Data[:1][0]), int64(cap(def.Data)), uint16(def.TypeCode), unsafe.Pointer(def.Indicator), unsafe.Pointer(def.Length), 0, ociDefault)
	}
	if rc != ociSuccess {
		return s.c.d.lastError(s.c.errh)
	}
	s.defines = append(s.defines, def)
	return nil
}

func (s *nativeStmt) Fetch(ctx context.Context) (bool, error) {
	// Descriptor slots emptied by a consuming conversion need a fresh
	// descriptor before the next row lands.
	for _, def := range s.defines {
		if def.Handle == nil || *def.Handle != 0 {
			continue
		}
		dtype := uint32(ociDTypeLob)
		if def.TypeCode == TypeCodeRowID {
			dtype = ociDTypeRowid
		}
		var desc uintptr
		if def.TypeCode != TypeCodeCursor {
			if ociDescriptorAlloc(s.c.d.env, &desc, dtype, 0, 0) != ociSuccess {
				return false, s.c.d.lastError(s.c.errh)
			}
		} else {
			if ociHandleAlloc(s.c.d.env, &desc, ociHTypeStmt, 0, 0) != ociSuccess {
				return false, s.c.d.lastError(s.c.errh)
			}
		}
		*def.Handle = uint64(desc)
	}

	rc := ociStmtFetch2(s.stmt, s.c.errh, 1, ociFetchNext, 0, ociDefault)
	switch rc {
	case ociSuccess, ociSuccessWithInfo:
		return true, nil
	case ociNoData:
		return false, nil
	default:
		return false, s.c.d.lastError(s.c.errh)
	}
}

func (s *nativeStmt) Close() error {
	if s.stmt == 0 {
		return nil
	}
	rc := ociStmtRelease(s.stmt, s.c.errh, 0, 0, ociDefault)
	s.stmt = 0
	s.binds = nil
	s.defines = nil
	if rc != ociSuccess {
		return s.c.d.lastError(s.c.errh)
	}
	return nil
}
