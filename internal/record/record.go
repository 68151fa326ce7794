package record

import (
	"sort"
	"strings"
)

// Field tracks how a QC stage judged a single named input field.
type Field struct {
	Name    string
	Missing bool
	Invalid bool
}

// Record is a mutable bag of Darwin Core input fields plus the QC outcome
// accumulated across pipeline stages. Records are constructed by the caller
// and mutated in place; ownership never transfers to a QC stage.
type Record struct {
	data        map[string]string
	fields      map[string]*Field
	flags       FlagSet
	interpreted map[string]any
	dropped     bool
}

// New builds a record from raw input values. Nil-equivalent entries should be
// omitted from the map.
func New(data map[string]string) *Record {
	copied := make(map[string]string, len(data))
	for key, value := range data {
		copied[key] = value
	}
	return &Record{
		data:        copied,
		fields:      make(map[string]*Field),
		flags:       make(FlagSet),
		interpreted: make(map[string]any),
	}
}

// Get returns the raw input value for the named field, trimmed of surrounding
// whitespace. Missing fields yield the empty string.
func (r *Record) Get(name string) string {
	return strings.TrimSpace(r.data[name])
}

// Field returns the QC annotation for the named field, if any stage has
// evaluated it.
func (r *Record) Field(name string) (*Field, bool) {
	field, ok := r.fields[name]
	return field, ok
}

// Seen reports whether a QC stage has already evaluated the named field.
func (r *Record) Seen(name string) bool {
	_, ok := r.fields[name]
	return ok
}

func (r *Record) field(name string) *Field {
	if field, ok := r.fields[name]; ok {
		return field
	}
	field := &Field{Name: name}
	r.fields[name] = field
	return field
}

// MarkPresent records that the named field carried a usable value.
func (r *Record) MarkPresent(name string) {
	r.field(name).Missing = false
}

// MarkMissing records that the named field carried no usable value.
func (r *Record) MarkMissing(name string) {
	r.field(name).Missing = true
}

// MarkInvalid records that the named field was present but unusable.
func (r *Record) MarkInvalid(name string) {
	r.field(name).Invalid = true
}

func (r *Record) IsMissing(name string) bool {
	field, ok := r.fields[name]
	return ok && field.Missing
}

func (r *Record) IsInvalid(name string) bool {
	field, ok := r.fields[name]
	return ok && field.Invalid
}

// InvalidFields returns the annotations marked invalid, sorted by name so
// reports are deterministic.
func (r *Record) InvalidFields() []*Field {
	var invalid []*Field
	for _, field := range r.fields {
		if field.Invalid {
			invalid = append(invalid, field)
		}
	}
	sort.Slice(invalid, func(i, j int) bool { return invalid[i].Name < invalid[j].Name })
	return invalid
}

func (r *Record) AddFlag(flag Flag) {
	r.flags.Add(flag)
}

func (r *Record) HasFlag(flag Flag) bool {
	return r.flags.Has(flag)
}

// Flags returns the accumulated quality flags in deterministic order.
func (r *Record) Flags() []Flag {
	return r.flags.List()
}

func (r *Record) FlagCount() int {
	return r.flags.Len()
}

// SetInterpreted stores a resolved value under key. Keys are write-once: the
// first value wins and later writes are ignored, which keeps repeated check
// passes idempotent.
func (r *Record) SetInterpreted(key string, value any) {
	if _, exists := r.interpreted[key]; exists {
		return
	}
	r.interpreted[key] = value
}

// Interpreted returns the resolved value for key, if set.
func (r *Record) Interpreted(key string) (any, bool) {
	value, ok := r.interpreted[key]
	return value, ok
}

// InterpretedInt64 returns the resolved integer value for key, if set.
func (r *Record) InterpretedInt64(key string) (int64, bool) {
	value, ok := r.interpreted[key]
	if !ok {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

// Drop marks the record unusable for downstream aggregation.
func (r *Record) Drop() {
	r.dropped = true
}

func (r *Record) Dropped() bool {
	return r.dropped
}
