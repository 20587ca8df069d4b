package models

import "github.com/julianstephens/distill/internal/constants"

// Annotation is a single time-stamped event read from an annotation source.
// Time is a sample offset from the start of the record.
type Annotation struct {
	Time int64  `json:"time"`
	Code int    `json:"code"`
	Sub  int    `json:"sub,omitempty"`
	Chan int    `json:"chan,omitempty"`
	Num  int    `json:"num,omitempty"`
	Aux  string `json:"aux,omitempty"`
}

// IsApnea reports whether the annotation marks an apnea minute
func (a Annotation) IsApnea() bool {
	return a.Code == constants.CodeApnea
}

// IsNoApnea reports whether the annotation marks a minute without apnea
func (a Annotation) IsNoApnea() bool {
	return a.Code == constants.CodeNoApnea
}

// AnnotationSet describes one stored (record, annotator) pair
type AnnotationSet struct {
	ID         int64  `json:"id"`
	Record     string `json:"record"`
	Annotator  string `json:"annotator"`
	BatchID    string `json:"batch_id"`
	Count      int    `json:"count"`
	ImportedAt string `json:"imported_at"`
}
