package models

import "github.com/julianstephens/distill/internal/constants"

// SlotKind classifies one position of the one-minute grid
type SlotKind int

const (
	SlotUnknown SlotKind = iota
	SlotNoApnea
	SlotApnea
)

// Symbol returns the character printed for the slot in a detail grid
func (k SlotKind) Symbol() byte {
	switch k {
	case SlotNoApnea:
		return 'N'
	case SlotApnea:
		return 'A'
	default:
		return 'X'
	}
}

func (k SlotKind) String() string {
	switch k {
	case SlotNoApnea:
		return "no-apnea"
	case SlotApnea:
		return "apnea"
	default:
		return "unknown"
	}
}

// Slot is one minute of the expected timeline.
// Minute counts from the start of the record; Time is the expected sample
// offset of that minute.
type Slot struct {
	Minute int
	Time   int64
	Kind   SlotKind
}

// Hour returns the detail row the slot belongs to
func (s Slot) Hour() int {
	return s.Minute / constants.MinutesPerHour
}

// SlotFor maps an on-grid annotation to its slot kind. Codes other than
// N and A are unrecognized and become unknown slots.
func SlotFor(a Annotation) SlotKind {
	switch {
	case a.IsNoApnea():
		return SlotNoApnea
	case a.IsApnea():
		return SlotApnea
	default:
		return SlotUnknown
	}
}
