package content

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World!!", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Already-a-slug", "already-a-slug"},
		{"Multiple   spaces & symbols", "multiple-spaces-symbols"},
		{"Café Déjà Vu", "caf-d-j-vu"},
		{"2024 Review: Q1", "2024-review-q1"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
