package tag

import (
	"bytes"
	"encoding/json"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used for rec_date
const DateLayout = "2006-01-02"

// OptionalString is a string value that may be absent. The zero value is
// absent; an absent value is never represented by an empty string.
type OptionalString struct {
	Value string
	Valid bool
}

// Some returns a present OptionalString
func Some(s string) OptionalString {
	return OptionalString{Value: s, Valid: true}
}

// None returns an absent OptionalString
func None() OptionalString {
	return OptionalString{}
}

// Get returns the value and whether it is present
func (o OptionalString) Get() (string, bool) {
	return o.Value, o.Valid
}

// String returns the value, or an empty string when absent
func (o OptionalString) String() string {
	if !o.Valid {
		return ""
	}
	return o.Value
}

// MarshalJSON encodes an absent value as null
func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON decodes null as absent
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = Some(s)
	return nil
}

// Record is the typed content of one receiving tag
type Record struct {
	Name        string         `json:"name"`
	PN          string         `json:"pn"`
	SN          OptionalString `json:"sn"`
	Description OptionalString `json:"description"`
	Location    OptionalString `json:"location"`
	Condition   string         `json:"condition"`
	Receiver    int            `json:"receiver"`
	UOM         string         `json:"uom"`
	ExpDate     OptionalString `json:"exp_date"`
	PO          string         `json:"po"`
	CertSource  OptionalString `json:"cert_source"`
	RecDate     time.Time      `json:"rec_date"`
	MFG         OptionalString `json:"mfg"`
	Batch       OptionalString `json:"batch"`
	DOM         OptionalString `json:"dom"`
	Remark      OptionalString `json:"remark"`
	Lot         OptionalString `json:"lot"`
	TaggedBy    OptionalString `json:"tagged_by"`
	Quantity    int            `json:"quantity"`
	Notes       OptionalString `json:"notes"`
}

type recordAlias Record

type recordJSON struct {
	recordAlias
	RecDate string `json:"rec_date"`
}

// MarshalJSON encodes rec_date as a calendar date and absent optionals as null
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		recordAlias: recordAlias(r),
		RecDate:     r.RecDate.Format(DateLayout),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON
func (r *Record) UnmarshalJSON(data []byte) error {
	var aux recordJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	date, err := time.Parse(DateLayout, aux.RecDate)
	if err != nil {
		return err
	}
	*r = Record(aux.recordAlias)
	r.RecDate = date
	return nil
}

// Values returns the display value of every field in table order. Absent
// optionals are empty strings.
func (r *Record) Values() []string {
	values := make([]string, len(Fields))
	for i, f := range Fields {
		values[i] = f.get(r).String()
	}
	return values
}

// Entries returns every field in table order. Required fields are always
// present; absent optionals are not Valid, so they stay distinct from a
// present empty string.
func (r *Record) Entries() []OptionalString {
	entries := make([]OptionalString, len(Fields))
	for i, f := range Fields {
		entries[i] = f.get(r)
	}
	return entries
}
