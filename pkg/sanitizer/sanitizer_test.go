package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Corner Coffee", "Corner Coffee"},
		{"surrounding whitespace", "  Corner Coffee  ", "Corner Coffee"},
		{"collapsed inner whitespace", "Corner \t\n Coffee", "Corner Coffee"},
		{"empty", "", ""},
		{"only whitespace", "   \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrimAndNormalizeIdempotent(t *testing.T) {
	input := "  a   b\tc  "
	once := TrimAndNormalize(input)
	if twice := TrimAndNormalize(once); twice != once {
		t.Errorf("not idempotent: %q -> %q", once, twice)
	}
}

func TestSanitizeCity(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Tel Aviv", "telaviv"},
		{"tel-aviv", "telaviv"},
		{" AUSTIN ", "austin"},
		{"Sao Paulo 2", "saopaulo"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeCity(tt.input); got != tt.want {
			t.Errorf("SanitizeCity(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeHandle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"@maya.eats", "maya.eats"},
		{"Maya Eats", "maya_eats"},
		{"  @STREET_food  ", "street_food"},
		{"a__b", "a_b"},
	}

	for _, tt := range tests {
		if got := SanitizeHandle(tt.input); got != tt.want {
			t.Errorf("SanitizeHandle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare domain gains scheme", "instagram.com/p/xyz", "https://instagram.com/p/xyz"},
		{"http upgraded", "http://instagram.com/p/xyz", "https://instagram.com/p/xyz"},
		{"www stripped", "https://www.instagram.com/p/xyz", "https://instagram.com/p/xyz"},
		{"trailing slash stripped", "https://instagram.com/p/xyz/", "https://instagram.com/p/xyz"},
		{"utm params dropped", "https://instagram.com/p/xyz?utm_source=app&id=7", "https://instagram.com/p/xyz?id=7"},
		{"empty", "", ""},
		{"garbage", "ht tp://///", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeURL(tt.input); got != tt.want {
				t.Errorf("SanitizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeURLIdempotent(t *testing.T) {
	input := "http://www.Instagram.com/p/XYZ/?utm_campaign=x&ref=7"
	once := SanitizeURL(input)
	if twice := SanitizeURL(once); twice != once {
		t.Errorf("not idempotent: %q -> %q", once, twice)
	}
}
