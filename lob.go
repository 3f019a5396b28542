package orax

import "github.com/orastack/orax/oratype"

// LOB is an owned large object locator fetched from a CLOB, NCLOB, BLOB or
// BFILE column. See oratype.LOB for the access methods.
type LOB = oratype.LOB

// RowID is an owned row identifier descriptor.
type RowID = oratype.RowID
