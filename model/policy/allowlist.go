package policy

import "strings"

// AllowList is a coarse filter over assets or destinations. When Any is set
// every value passes; otherwise only listed entries do. Matching is
// case-insensitive exact comparison.
type AllowList struct {
	Any   bool     `json:"any,omitempty" yaml:"any,omitempty"`
	Items []string `json:"items,omitempty" yaml:"items,omitempty"`
}

// Allows reports whether value passes the filter.
func (l AllowList) Allows(value string) bool {
	if l.Any {
		return true
	}
	normalized := strings.ToLower(value)
	for _, item := range l.Items {
		if normalized == strings.ToLower(item) {
			return true
		}
	}
	return false
}
