package tag

import (
	"strconv"
	"time"
)

// BlockCount is the number of blocks every page of the template has
const BlockCount = 12

// QuantityPrefixLen is the number of characters of the quantity label
// ("Qty: ") that precede the number in the same run
const QuantityPrefixLen = 5

// Kind is the value kind of a field
type Kind int

const (
	KindString Kind = iota + 1
	KindInt
	KindDate
	KindOptionalString
)

// String returns a string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindString:
		return "required-string"
	case KindInt:
		return "required-int"
	case KindDate:
		return "required-date"
	case KindOptionalString:
		return "optional-string"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type value struct {
	str  string
	num  int
	date time.Time
	opt  OptionalString
}

// Field is one entry of the coordinate table: where a field lives on the
// page and how its text is interpreted.
type Field struct {
	Name  string
	Block int
	Line  int
	Run   int
	Kind  Kind
	// Prefix is the number of leading characters dropped before parsing
	Prefix int

	set func(r *Record, v value)
	get func(r *Record) OptionalString
}

// Fields is the coordinate table of the template, in extraction order.
var Fields = []Field{
	{
		Name: "name", Block: 0, Line: 0, Run: 0, Kind: KindString,
		set: func(r *Record, v value) { r.Name = v.str },
		get: func(r *Record) OptionalString { return Some(r.Name) },
	},
	{
		Name: "pn", Block: 1, Line: 0, Run: 1, Kind: KindString,
		set: func(r *Record, v value) { r.PN = v.str },
		get: func(r *Record) OptionalString { return Some(r.PN) },
	},
	{
		Name: "sn", Block: 1, Line: 1, Run: 1, Kind: KindOptionalString,
		set: func(r *Record, v value) { r.SN = v.opt },
		get: func(r *Record) OptionalString { return r.SN },
	},
	{
		Name: "description", Block: 2, Line: 0, Run: 1, Kind: KindOptionalString,
		set: func(r *Record, v value) { r.Description = v.opt },
		get: func(r *Record) OptionalString { return r.Description },
	},
	{
		Name: "location", Block: 2, Line: 1, Run: 1, Kind: KindOptionalString,
		set: func(r *Record, v value) { r.Location = v.opt },
		get: func(r *Record) OptionalString { return r.Location },
	},
	{
		Name: "condition", Block: 2, Line: 2, Run: 1, Kind: KindString,
		set: func(r *Record, v value) { r.Condition = v.str },
		get: func(r *Record) OptionalString { return Some(r.Condition) },
	},
	{
		Name: "receiver", Block: 3, Line: 0, Run: 1, Kind: KindInt,
		set: func(r *Record, v value) { r.Receiver = v.num },
		get: func(r *Record) OptionalString { return Some(strconv.Itoa(r.Receiver)) },
	},
	{
		Name: "uom", Block: 3, Line: 1, Run: 1, Kind: KindString,
		set: func(r *Record, v value) { r.UOM = v.str },
		get: func(r *Record) OptionalString { return Some(r.UOM) },
	},
	{
		Name: "exp_date", Block: 4, Line: 0, Run: 1, Kind: KindOptionalString,
		set: func(r *Record, v value) { r.ExpDate = v.opt },
		get: func(r *Record) OptionalString { return r.ExpDate },
	},
	{
		Name: "po", Block: 4, Line: 1, Run: 1, Kind: KindString,
		set: func(r *Record, v value) { r.PO = v.str },
		get: func(r *Record) OptionalString { return Some(r.PO) },
	},
	{
		Name: "cert_source", Block: 5, Line: 0, Run: 1, Kind: KindOptionalString,
		set: func(r *Record, v value) { r.CertSource = v.opt },
		get: func(r *Record) OptionalString { return r.CertSource },
	},
	{
		Name: "rec_date", Block: 5, Line: 1, Run: 1, Kind: KindDate,
		set: func(r *Record, v value) { r.RecDate = v.date },
		get: func(r *Record) OptionalString { return Some(r.RecDate.Format(DateLayout)) },
	},
	{
		Name: "mfg", Block: 5, Line: 2, Run: 1, Kind: KindOptionalString,
		set: func(r *Record, v value) { r.MFG = v.opt },
		get: func(r *Record) OptionalString { return r.MFG },
	},
	{
		Name: "batch", Block: 6, Line: 0, Run: 1, Kind: KindOptionalString,
		set: func(r *Record, v value) { r.Batch = v.opt },
		get: func(r *Record) OptionalString { return r.Batch },
	},
	{
		Name: "dom", Block: 6, Line: 1, Run: 1, Kind: KindOptionalString,
		set: func(r *Record, v value) { r.DOM = v.opt },
		get: func(r *Record) OptionalString { return r.DOM },
	},
	{
		Name: "remark", Block: 7, Line: 0, Run: 1, Kind: KindOptionalString,
		set: func(r *Record, v value) { r.Remark = v.opt },
		get: func(r *Record) OptionalString { return r.Remark },
	},
	{
		Name: "lot", Block: 7, Line: 1, Run: 1, Kind: KindOptionalString,
		set: func(r *Record, v value) { r.Lot = v.opt },
		get: func(r *Record) OptionalString { return r.Lot },
	},
	{
		Name: "tagged_by", Block: 8, Line: 0, Run: 1, Kind: KindOptionalString,
		set: func(r *Record, v value) { r.TaggedBy = v.opt },
		get: func(r *Record) OptionalString { return r.TaggedBy },
	},
	{
		Name: "quantity", Block: 10, Line: 0, Run: 0, Kind: KindInt, Prefix: QuantityPrefixLen,
		set: func(r *Record, v value) { r.Quantity = v.num },
		get: func(r *Record) OptionalString { return Some(strconv.Itoa(r.Quantity)) },
	},
	{
		Name: "notes", Block: 11, Line: 0, Run: 1, Kind: KindOptionalString,
		set: func(r *Record, v value) { r.Notes = v.opt },
		get: func(r *Record) OptionalString { return r.Notes },
	},
}

// FieldNames returns the field names in table order
func FieldNames() []string {
	names := make([]string, len(Fields))
	for i, f := range Fields {
		names[i] = f.Name
	}
	return names
}

// LookupField returns the table entry for name
func LookupField(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
