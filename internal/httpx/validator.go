package httpx

import (
	"bookshelf/internal/platform/validation"
)

// ValidateStruct runs the struct's validate tags and returns one detail per
// failing field, keyed by its JSON name.
func ValidateStruct(s any) []ErrorDetail {
	return Details(validation.Struct(s))
}

// Details converts the field failures carried by err into response details.
func Details(err error) []ErrorDetail {
	fields := validation.Fields(err)
	if len(fields) == 0 {
		return nil
	}
	out := make([]ErrorDetail, 0, len(fields))
	for _, f := range fields {
		out = append(out, ErrorDetail{Field: f.Field, Message: f.Message})
	}
	return out
}
