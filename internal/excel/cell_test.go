package excel

import "testing"

func TestConvertExcelDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		nil_ bool
	}{
		{name: "empty", raw: "", nil_: true},
		{name: "whitespace only", raw: "   ", nil_: true},
		{name: "zero", raw: "0", nil_: true},
		{name: "iso sentinel", raw: "0000-00-00", nil_: true},
		{name: "slash sentinel", raw: "00/00/0000", nil_: true},
		{name: "preformatted slash date", raw: "15/03/2024", want: "15/03/2024"},
		{name: "preformatted iso date", raw: "2024-03-15", want: "2024-03-15"},
		{name: "impossible calendar date passes shape check", raw: "31/02/2024", want: "31/02/2024"},
		{name: "zero day component", raw: "00/05/2024", nil_: true},
		{name: "zero month component", raw: "05/00/2024", nil_: true},
		{name: "zero year component", raw: "2024-05-00", nil_: true},
		{name: "serial for 2024-01-01", raw: "45292", want: "2024-01-01"},
		{name: "serial one", raw: "1", want: "1899-12-31"},
		{name: "serial below one", raw: "0.5", nil_: true},
		{name: "negative serial", raw: "-3", nil_: true},
		{name: "fractional serial rounds", raw: "45292.6", want: "2024-01-02"},
		{name: "non numeric garbage", raw: "yesterday", nil_: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertExcelDate(tt.raw)
			if tt.nil_ {
				if got != nil {
					t.Fatalf("ConvertExcelDate(%q) = %q, want nil", tt.raw, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ConvertExcelDate(%q) = nil, want %q", tt.raw, tt.want)
			}
			if *got != tt.want {
				t.Errorf("ConvertExcelDate(%q) = %q, want %q", tt.raw, *got, tt.want)
			}
		})
	}
}

func TestConvertExcelTime(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		nil_ bool
	}{
		{name: "empty", raw: "", nil_: true},
		{name: "zero", raw: "0", nil_: true},
		{name: "preformatted with seconds", raw: "08:30:15", want: "08:30:15"},
		{name: "preformatted without seconds", raw: "08:30", want: "08:30"},
		{name: "noon fraction", raw: "0.5", want: "12:00:00"},
		{name: "morning fraction", raw: "0.354166666666667", want: "08:30:00"},
		{name: "garbage", raw: "soon", nil_: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertExcelTime(tt.raw)
			if tt.nil_ {
				if got != nil {
					t.Fatalf("ConvertExcelTime(%q) = %q, want nil", tt.raw, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ConvertExcelTime(%q) = nil, want %q", tt.raw, tt.want)
			}
			if *got != tt.want {
				t.Errorf("ConvertExcelTime(%q) = %q, want %q", tt.raw, *got, tt.want)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"", 0},
		{"  ", 0},
		{"42", 42},
		{"10.5", 10.5},
		{"1,250", 1},
		{"2,5", 2},
		{"12abc", 12},
		{"not a number", 0},
		{"-7", -7},
	}

	for _, tt := range tests {
		if got := ParseNumber(tt.raw); got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
