package wallet

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Article", "Amount", "Bonus"}
	rows := [][]string{
		{"Go", "75.00", "BONUS x1.5"},
		{"Long title", "1,250.00", ""},
	}
	rightAlign := map[int]bool{1: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Article      Amount Bonus" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Go            75.00 BONUS x1.5" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Long title 1,250.00" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"T", "N"}, [][]string{{"日本", "1"}, {"ab", "2"}}, nil)
	if lines[1] != "日本 1" || lines[2] != "ab   2" {
		t.Fatalf("unexpected wide rune alignment: %q", lines)
	}
}

func TestTruncateCell(t *testing.T) {
	if got := truncateCell("abcdefgh", 5); got != "abcd…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateCell("abc", 5); got != "abc" {
		t.Fatalf("unexpected truncation %q", got)
	}
}
