package constants

const (
	// SampleRate is the sampling frequency the apnea annotations are timed against
	SampleRate = 100

	// MinuteSamples is the distance between two expected annotations
	// (one minute at SampleRate samples per second).
	MinuteSamples = 60 * SampleRate

	// MinutesPerHour is the number of slots printed on one detail row
	MinutesPerHour = 60

	// Classification thresholds in apnea minutes
	BucketAMinMinutes = 100
	BucketBMinMinutes = 5

	// Annotation type codes. The mnemonic for code 1 is "N" and for code 8
	// is "A" in the WFDB code table, which is why they were picked.
	CodeNoApnea = 1
	CodeApnea   = 8
	CodeNote    = 22

	// NoAnnotationsMarker is printed after a record id whose source cannot be opened
	NoAnnotationsMarker = " [no annotations]"

	// TemplateSymbol replaces bucket and slot letters in template output
	TemplateSymbol = '?'
)
