package dao

// Parameter is one List filter, matched by name against record fields; the
// value may be a single string or a string slice of alternatives.
type Parameter struct {
	Name  string
	Value interface{}
}
