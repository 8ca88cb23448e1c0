// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeClock_KnownValues(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         int
	}{
		{0, 0, 0},
		{7, 0, 42},
		{8, 20, 50},
		{10, 10, 61},
		{23, 50, 143},
	}

	for _, tt := range tests {
		got, err := EncodeClock(tt.hour, tt.minute)
		if err != nil {
			t.Errorf("EncodeClock(%d, %d) error: %v", tt.hour, tt.minute, err)
			continue
		}
		if got != tt.want {
			t.Errorf("EncodeClock(%d, %d) = %d, want %d", tt.hour, tt.minute, got, tt.want)
		}
	}
}

func TestEncodeClock_Granularity(t *testing.T) {
	// The codec does not round; quantizing is the caller's responsibility.
	for _, minute := range []int{1, 5, 9, 15, 55} {
		_, err := EncodeClock(10, minute)
		if !errors.Is(err, ErrInvalidGranularity) {
			t.Errorf("EncodeClock(10, %d) = %v, want ErrInvalidGranularity", minute, err)
		}
	}
}

func TestEncodeClock_Range(t *testing.T) {
	tests := []struct{ hour, minute int }{
		{-1, 0}, {24, 0}, {0, -10}, {0, 60},
	}
	for _, tt := range tests {
		if _, err := EncodeClock(tt.hour, tt.minute); !errors.Is(err, ErrClockRange) {
			t.Errorf("EncodeClock(%d, %d) = %v, want ErrClockRange", tt.hour, tt.minute, err)
		}
	}
}

func TestClockRoundTrip(t *testing.T) {
	// decode(encode(h,m)) == (h,m) for every valid 10-minute time.
	for hour := 0; hour < 24; hour++ {
		for minute := 0; minute < 60; minute += SlotMinutes {
			encoded, err := EncodeClock(hour, minute)
			if err != nil {
				t.Fatalf("EncodeClock(%d, %d): %v", hour, minute, err)
			}
			h, m, err := DecodeClock(encoded)
			if err != nil {
				t.Fatalf("DecodeClock(%d): %v", encoded, err)
			}
			if h != hour || m != minute {
				t.Fatalf("round trip %02d:%02d -> %d -> %02d:%02d", hour, minute, encoded, h, m)
			}
		}
	}
}

func TestDecodeClock_Range(t *testing.T) {
	for _, encoded := range []int{-1, 144, 1000} {
		if _, _, err := DecodeClock(encoded); !errors.Is(err, ErrEncodedRange) {
			t.Errorf("DecodeClock(%d) = %v, want ErrEncodedRange", encoded, err)
		}
	}
}

func TestPeriod_Enabled(t *testing.T) {
	if (Period{Start: 60, End: 60}).Enabled() {
		t.Error("start == end should be disabled")
	}
	if !(Period{Start: 60, End: 61}).Enabled() {
		t.Error("start < end should be enabled")
	}
}

func TestPeriod_String(t *testing.T) {
	if s := (Period{Start: 42, End: 50}).String(); s != "07:00-08:20" {
		t.Errorf("String() = %q", s)
	}
	if s := (Period{Start: 143, End: 143}).String(); s != "disabled" {
		t.Errorf("String() = %q", s)
	}
}

func TestDay_Validate(t *testing.T) {
	t.Run("valid with trailing disabled period", func(t *testing.T) {
		d := Day{
			Weekday: time.Monday,
			Periods: [3]Period{{42, 50}, {114, 132}, {143, 143}},
		}
		if findings := d.Validate(); len(findings) != 0 {
			t.Errorf("findings = %v, want none", findings)
		}
	})

	t.Run("adjacency permitted", func(t *testing.T) {
		d := Day{
			Weekday: time.Monday,
			Periods: [3]Period{{42, 50}, {50, 60}, {60, 70}},
		}
		if findings := d.Validate(); len(findings) != 0 {
			t.Errorf("findings = %v, want none", findings)
		}
	})

	t.Run("overlap reported", func(t *testing.T) {
		d := Day{
			Weekday: time.Monday,
			Periods: [3]Period{{42, 50}, {40, 50}, {143, 143}},
		}
		findings := d.Validate()
		if len(findings) != 1 {
			t.Fatalf("findings = %v, want one", findings)
		}
		v := findings[0]
		if v.Reason != ReasonOverlap || v.EarlierSlot != 0 || v.LaterSlot != 1 {
			t.Errorf("violation = %+v", v)
		}
	})

	t.Run("disabled period skipped in ordering", func(t *testing.T) {
		// P2 disabled: P3 is checked against P1, not P2.
		d := Day{
			Weekday: time.Tuesday,
			Periods: [3]Period{{42, 50}, {0, 0}, {45, 60}},
		}
		findings := d.Validate()
		if len(findings) != 1 {
			t.Fatalf("findings = %v, want one", findings)
		}
		if findings[0].EarlierSlot != 0 || findings[0].LaterSlot != 2 {
			t.Errorf("violation = %+v", findings[0])
		}
	})

	t.Run("inverted period", func(t *testing.T) {
		d := Day{
			Weekday: time.Friday,
			Periods: [3]Period{{50, 42}, {60, 70}, {0, 0}},
		}
		findings := d.Validate()
		if len(findings) != 1 || findings[0].Reason != ReasonInverted {
			t.Errorf("findings = %v, want one inverted", findings)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		d := Day{
			Weekday: time.Sunday,
			Periods: [3]Period{{0, 200}, {0, 0}, {0, 0}},
		}
		findings := d.Validate()
		if len(findings) != 1 || findings[0].Reason != ReasonOutOfRange {
			t.Errorf("findings = %v, want one out-of-range", findings)
		}
	})
}

func TestWeek_Validate(t *testing.T) {
	var w Week
	for i := range w {
		w[i].Weekday = time.Weekday(i)
	}
	w[1].Periods = [3]Period{{42, 50}, {40, 50}, {0, 0}}
	w[3].Periods = [3]Period{{50, 42}, {0, 0}, {0, 0}}

	findings := w.Validate()
	if len(findings) != 2 {
		t.Fatalf("findings = %v, want two", findings)
	}
	if findings[0].Weekday != time.Monday || findings[1].Weekday != time.Wednesday {
		t.Errorf("weekdays = %v, %v", findings[0].Weekday, findings[1].Weekday)
	}
}

func TestDay_ActiveAt(t *testing.T) {
	d := Day{Periods: [3]Period{{42, 50}, {114, 132}, {0, 0}}}

	tests := []struct {
		encoded int
		want    bool
	}{
		{41, false},
		{42, true},
		{50, true},
		{51, false},
		{120, true},
		{0, false}, // the disabled P3 at slot 0 does not activate
	}
	for _, tt := range tests {
		if got := d.ActiveAt(tt.encoded); got != tt.want {
			t.Errorf("ActiveAt(%d) = %v, want %v", tt.encoded, got, tt.want)
		}
	}
}
