package models

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		want    Bucket
	}{
		{"none", 0, BucketC},
		{"just below B", 4, BucketC},
		{"lower B bound", 5, BucketB},
		{"upper B bound", 99, BucketB},
		{"lower A bound", 100, BucketA},
		{"full night", 480, BucketA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.minutes); got != tt.want {
				t.Errorf("Classify(%d) = %s, want %s", tt.minutes, got, tt.want)
			}
		})
	}
}

func TestClassifyIsMonotonic(t *testing.T) {
	prev := Classify(0)
	for n := 1; n <= 200; n++ {
		got := Classify(n)
		if got > prev {
			t.Fatalf("Classify(%d) = %s after %s: buckets must not get milder as minutes grow", n, got, prev)
		}
		if Classify(n) != got {
			t.Errorf("Classify(%d) is not stable", n)
		}
		prev = got
	}
}

func TestResultHours(t *testing.T) {
	slots := make([]SlotKind, 125)
	r := Result{Slots: slots}

	rows := r.Hours()
	if len(rows) != 3 {
		t.Fatalf("Hours() returned %d rows, want 3", len(rows))
	}
	if len(rows[0]) != 60 || len(rows[1]) != 60 || len(rows[2]) != 5 {
		t.Errorf("row lengths = %d,%d,%d, want 60,60,5", len(rows[0]), len(rows[1]), len(rows[2]))
	}
}

func TestSlotFor(t *testing.T) {
	tests := []struct {
		code int
		want SlotKind
		sym  byte
	}{
		{1, SlotNoApnea, 'N'},
		{8, SlotApnea, 'A'},
		{22, SlotUnknown, 'X'},
		{0, SlotUnknown, 'X'},
	}

	for _, tt := range tests {
		got := SlotFor(Annotation{Code: tt.code})
		if got != tt.want {
			t.Errorf("SlotFor(code %d) = %v, want %v", tt.code, got, tt.want)
		}
		if got.Symbol() != tt.sym {
			t.Errorf("Symbol() for code %d = %c, want %c", tt.code, got.Symbol(), tt.sym)
		}
	}
}
