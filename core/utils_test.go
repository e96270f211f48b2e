package core

import "testing"

func TestCleanString(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		lower bool
		want  string
	}{
		{"empty", "", false, ""},
		{"no change", "Kilimanjaro", false, "Kilimanjaro"},
		{"trims whitespace", "  Kilimanjaro\t\n", false, "Kilimanjaro"},
		{"lowers", "  JDoe@Test.COM ", true, "jdoe@test.com"},
		{"only whitespace", " \t\n", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.lower {
				got = CleanString(tt.s, true)
			} else {
				got = CleanString(tt.s)
			}
			if got != tt.want {
				t.Errorf("CleanString() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		fname string
		want  string
	}{
		{"plain", "proof.jpg", "proof.jpg"},
		{"spaces to underscores", "my tree photo.png", "my_tree_photo.png"},
		{"strips unix path", "../../etc/passwd", "passwd"},
		{"strips windows path", `..\..\windows\evil.pdf`, "evil.pdf"},
		{"drops unsafe chars", "re<cy>cle?.jpeg", "recycle.jpeg"},
		{"trims leading dots", "...hidden.docx", "hidden.docx"},
		{"nothing safe left", "???", ""},
		{"dot only", ".", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.fname); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q; want %q", tt.fname, got, tt.want)
			}
		})
	}
}
