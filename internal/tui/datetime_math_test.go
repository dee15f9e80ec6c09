package tui

import (
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestBumpDisplayDate(t *testing.T) {
	cases := []struct {
		in    string
		unit  dateUnit
		delta int
		want  string
	}{
		{"31/12/2025", dateUnitDay, 1, "01/01/2026"},
		{"01/03/2024", dateUnitDay, -1, "29/02/2024"},
		{"31/01/2025", dateUnitMonth, 1, "28/02/2025"},
		{"15/01/2025", dateUnitMonth, -1, "15/12/2024"},
		{"29/02/2024", dateUnitYear, 1, "28/02/2025"},
	}
	for _, c := range cases {
		if got := bumpDisplayDate(c.in, c.unit, c.delta); got != c.want {
			t.Fatalf("bump(%q, %v, %d) = %q, want %q", c.in, c.unit, c.delta, got, c.want)
		}
	}
}

func TestNormalizePane_PadsAndTruncates(t *testing.T) {
	got := normalizePane("abcdef\nx", 4, 3)
	want := "abc…\nx   \n    "
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	for _, w := range []int{10, 1} {
		if n := xansi.StringWidth(normalizePane("hello", w, 1)); n != w {
			t.Fatalf("width %d: got %d", w, n)
		}
	}
}

func TestSplitWidths_FitScreen(t *testing.T) {
	for _, total := range []int{80, 100, 160} {
		l, r := splitWidths(total)
		if r < drawerMinW || l+r+splitGapW > total {
			t.Fatalf("total %d: left %d right %d", total, l, r)
		}
	}
}
