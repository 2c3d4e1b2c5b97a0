package core

import (
	"testing"
	"time"
)

func TestUsageRecordValidate(t *testing.T) {
	good := rec(day(2022, 6, 1), "A", 0, 20, "summer")
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		r    UsageRecord
		want error
	}{
		{rec(time.Time{}, "A", 1, 20, "summer"), ErrZeroDate},
		{rec(day(2022, 6, 1), "A", -1, 20, "summer"), ErrNegativeValue},
		{rec(day(2022, 6, 1), " ", 1, 20, "summer"), ErrEmptyStation},
		{rec(day(2022, 6, 1), "A", 1, 20, ""), ErrEmptySeason},
	}
	for i, tc := range cases {
		if err := tc.r.Validate(); err != tc.want {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.want)
		}
	}
}

func TestTableIsImmutable(t *testing.T) {
	src := []UsageRecord{rec(day(2022, 6, 1), "A", 1, 20, "summer")}
	tbl := NewTable(src)
	src[0].Value = 99

	if tbl.At(0).Value != 1 {
		t.Fatalf("table shares backing array with caller")
	}

	rows := tbl.Records()
	rows[0].Value = 42
	if tbl.At(0).Value != 1 {
		t.Fatalf("Records exposed internal storage")
	}
}

func TestTableAllStopsEarly(t *testing.T) {
	tbl := sampleTable()
	seen := 0
	for range tbl.All() {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Fatalf("iterator did not honour break, saw %d", seen)
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	got := DateOf(time.Date(2022, 3, 4, 23, 59, 0, 0, loc))
	if !got.Equal(day(2022, 3, 4)) {
		t.Fatalf("DateOf = %v", got)
	}
}
