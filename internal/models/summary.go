package models

import "github.com/julianstephens/distill/internal/constants"

// Mode selects the kind of summary printed for each record
type Mode int

const (
	// ModeDetail prints the minute-by-minute grid
	ModeDetail Mode = iota
	// ModeClassify prints a single bucket letter
	ModeClassify
)

func (m Mode) String() string {
	if m == ModeClassify {
		return "classify"
	}
	return "detail"
}

// Bucket is the coarse severity class of a record
type Bucket byte

const (
	BucketA Bucket = 'A'
	BucketB Bucket = 'B'
	BucketC Bucket = 'C'
)

func (b Bucket) String() string {
	return string(b)
}

// Classify maps a count of apnea minutes to its bucket:
// A for at least 100 minutes, B for 5 to 99, C otherwise.
func Classify(apneaMinutes int) Bucket {
	switch {
	case apneaMinutes >= constants.BucketAMinMinutes:
		return BucketA
	case apneaMinutes >= constants.BucketBMinMinutes:
		return BucketB
	default:
		return BucketC
	}
}

// Result is the outcome of distilling one record
type Result struct {
	Record       string
	Annotator    string
	Found        bool
	ApneaMinutes int
	Bucket       Bucket
	Slots        []SlotKind
}

// Hours splits the slots into rows of 60. The last row may be short.
func (r Result) Hours() [][]SlotKind {
	var rows [][]SlotKind
	for start := 0; start < len(r.Slots); start += constants.MinutesPerHour {
		end := min(start+constants.MinutesPerHour, len(r.Slots))
		rows = append(rows, r.Slots[start:end])
	}
	return rows
}
