package ffmpeg

import "testing"

func TestParseClock(t *testing.T) {
	cases := map[string]float64{
		"00:00:05.00":     5,
		"01:02:03.45":     3723.45,
		"00:00:02.500000": 2.5,
		"10:00:00":        36000,
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		if err != nil {
			t.Fatalf("ParseClock(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseClock(%q) = %v, want %v", in, got, want)
		}
	}
	for _, bad := range []string{"", "12.5", "aa:bb:cc"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestLastStatsTime(t *testing.T) {
	output := "Input #0, mp3\n  Duration: 00:00:09.00, start: 0.000000\n" +
		"size=N/A time=00:00:04.20 bitrate=N/A speed=40x\n" +
		"size=N/A time=00:00:08.96 bitrate=N/A speed=41x\n" +
		"video:0kB audio:0kB\n"
	got, ok := LastStatsTime(output)
	if !ok || got != 8.96 {
		t.Fatalf("expected 8.96, got %v ok=%v", got, ok)
	}
	if _, ok := LastStatsTime("Duration: 00:00:09.00\n"); ok {
		t.Fatal("Duration line must not count as a time marker")
	}
}

func TestProgressTrackerUsesFirstDuration(t *testing.T) {
	tracker := newProgressTracker([]string{"-i", "a.m4a", "-i", "cover.png"})
	lines := []string{
		"Duration: 00:00:10.00, start: 0.000000",
		"Duration: 00:00:00.04, start: 0.000000",
		"out_time=00:00:02.500000",
		"out_time=00:00:02.000000",
		"out_time=00:00:05.000000",
		"out_time=00:00:12.000000",
	}
	var got []float64
	for _, line := range lines {
		if p, ok := tracker.observe(line); ok {
			got = append(got, p)
		}
	}
	want := []float64{25, 50, 100}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestProgressTrackerPrefersExplicitLength(t *testing.T) {
	tracker := newProgressTracker([]string{"-ss", "30", "-i", "a.mp3", "-t", "4"})
	tracker.observe("Duration: 00:10:00.00")
	p, ok := tracker.observe("out_time=00:00:01.000000")
	if !ok || p != 25 {
		t.Fatalf("expected 25%% of the -t window, got %v ok=%v", p, ok)
	}
}
