package freshness

import (
	"testing"
	"time"
)

func TestIsFresh_AgeAgainstTTL(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		age  time.Duration
		ttl  time.Duration
		want bool
	}{
		{"well within ttl", 200 * time.Second, 300 * time.Second, true},
		{"exactly at ttl", 300 * time.Second, 300 * time.Second, true},
		{"just past ttl", 301 * time.Second, 300 * time.Second, false},
		{"stale by minutes", 400 * time.Second, 300 * time.Second, false},
		{"day-old company info", 23 * time.Hour, CompanyTTL, true},
		{"expired company info", 25 * time.Hour, CompanyTTL, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := now.Add(-tc.age)
			if got := IsFresh(ts, now, tc.ttl); got != tc.want {
				t.Fatalf("IsFresh(age=%v, ttl=%v) = %v, want %v", tc.age, tc.ttl, got, tc.want)
			}
		})
	}
}

func TestIsFresh_Sentinels(t *testing.T) {
	now := time.Now().UTC()

	// ForceFresh rejects even a record written this instant.
	if IsFresh(now, now, ForceFresh) {
		t.Fatal("ForceFresh accepted a zero-age record")
	}
	// ForceCache accepts a record of any age.
	if !IsFresh(now.Add(-365*24*time.Hour), now, ForceCache) {
		t.Fatal("ForceCache rejected an old record")
	}
}

func TestIsFresh_OffsetAwareAndNaiveAgree(t *testing.T) {
	// Same instant written with an explicit offset and as naive UTC.
	offset, err := ParseStamp("2025-03-01T07:00:00-05:00")
	if err != nil {
		t.Fatalf("offset stamp: %v", err)
	}
	naive, err := ParseStamp("2025-03-01T12:00:00")
	if err != nil {
		t.Fatalf("naive stamp: %v", err)
	}
	if !offset.Equal(naive) {
		t.Fatalf("stamps differ: %v vs %v", offset, naive)
	}

	now := naive.Add(200 * time.Second)
	ttl := 300 * time.Second
	if IsFresh(offset, now, ttl) != IsFresh(naive, now, ttl) {
		t.Fatal("freshness disagrees between offset-aware and naive stamps")
	}
	if !IsFresh(offset, now, ttl) {
		t.Fatal("200s-old record with 300s ttl should be fresh")
	}
}

func TestParseStamp_Formats(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-01T12:00:00Z", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"2025-03-01 12:00:00", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"2025-03-01", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"20250301T120000", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"1740830400", time.Unix(1740830400, 0).UTC()},
	}
	for _, tc := range cases {
		got, err := ParseStamp(tc.in)
		if err != nil {
			t.Fatalf("ParseStamp(%q): %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("ParseStamp(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := ParseStamp(""); err == nil {
		t.Fatal("expected error for empty stamp")
	}
	if _, err := ParseStamp("not-a-time"); err == nil {
		t.Fatal("expected error for garbage stamp")
	}
}

func TestAge_NeverNegative(t *testing.T) {
	now := time.Now().UTC()
	if got := Age(now.Add(time.Minute), now); got != 0 {
		t.Fatalf("future stamp age = %v, want 0", got)
	}
	if got := Age(now.Add(-time.Minute), now); got != time.Minute {
		t.Fatalf("age = %v, want 1m", got)
	}
}
