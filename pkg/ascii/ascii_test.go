package ascii

import (
	"testing"
)

func TestBox(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "single line",
			lines: []string{"Hello"},
			want:  "┌───────┐\n│ Hello │\n└───────┘\n",
		},
		{
			name:  "multiple lines",
			lines: []string{"Line 1", "Longer line here", "Short"},
			want: "┌──────────────────┐\n" +
				"│ Line 1           │\n" +
				"│ Longer line here │\n" +
				"│ Short            │\n" +
				"└──────────────────┘\n",
		},
		{
			name:  "trailing spaces trimmed",
			lines: []string{"abc   "},
			want:  "┌─────┐\n│ abc │\n└─────┘\n",
		},
		{
			name:  "empty",
			lines: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Box(tt.lines); got != tt.want {
				t.Errorf("Box() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestTable(t *testing.T) {
	got := Table(
		[]string{"Asset", "Found", "Status"},
		[][]string{
			{"dist/hyde.css", "3.2.0", "Mismatch"},
			{"dist/app.css", "3.2.1", "Match"},
		},
	)
	want := "Asset          Found  Status\n" +
		"-------------  -----  --------\n" +
		"dist/hyde.css  3.2.0  Mismatch\n" +
		"dist/app.css   3.2.1  Match\n"
	if got != want {
		t.Errorf("Table() =\n%s\nwant:\n%s", got, want)
	}
}

func TestTable_ShortRow(t *testing.T) {
	got := Table([]string{"A", "B"}, [][]string{{"x"}})
	want := "A  B\n-  -\nx\n"
	if got != want {
		t.Errorf("Table() = %q, want %q", got, want)
	}
	if Table(nil, nil) != "" {
		t.Error("Table() with no headers should be empty")
	}
}

func TestTable_WideRunes(t *testing.T) {
	got := Table([]string{"Name", "V"}, [][]string{{"日本", "1"}})
	want := "Name  V\n----  -\n日本  1\n"
	if got != want {
		t.Errorf("Table() = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestStringWidth(t *testing.T) {
	if w := StringWidth("abc"); w != 3 {
		t.Errorf("StringWidth(abc) = %d", w)
	}
	if w := StringWidth("日本"); w != 4 {
		t.Errorf("StringWidth(日本) = %d", w)
	}
}
