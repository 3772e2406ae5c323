package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hash Tables", "hash-tables"},
		{"C++", "c-plus-plus"},
		{"C#", "c-sharp"},
		{"TCP & UDP", "tcp-and-udp"},
		{"  Spaced  Out  ", "spaced-out"},
		{"Already-Slugged", "already-slugged"},
		{"B+ Trees", "b-plus-trees"},
		{"100% CPU!", "100-cpu"},
	}

	for _, tt := range tests {
		if got := Make(tt.in); got != tt.want {
			t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hash-tables", "Hash Tables"},
		{"c-plus-plus", "C++"},
		{"c-sharp", "C#"},
		{"b-plus-trees", "B+ Trees"},
		{"plus", "+"},
		{"sharp", "#"},
		{"dsa", "Dsa"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Title(tt.in); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMakeTitleRoundTrip(t *testing.T) {
	for _, title := range []string{"Hash Tables", "C++", "Raft Consensus"} {
		if got := Title(Make(title)); got != title {
			t.Errorf("Title(Make(%q)) = %q", title, got)
		}
	}
}
