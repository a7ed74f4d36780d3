package validator

import "testing"

func TestIsHexColor(t *testing.T) {
	cases := map[string]bool{
		"#fff":     true,
		"#FFF":     true,
		"#a1B2c3":  true,
		"#abcd":    false,
		"#abcdef0": false,
		"fff":      false,
		"#ggg":     false,
		"":         false,
		"#12345":   false,
	}

	for input, expected := range cases {
		if got := IsHexColor(input); got != expected {
			t.Fatalf("IsHexColor(%q) = %v, want %v", input, got, expected)
		}
	}
}

func TestIsHTTPURL(t *testing.T) {
	cases := map[string]bool{
		"https://youtube.com/watch?v=x": true,
		"http://example.com":            true,
		"ftp://example.com/file":        false,
		"not a url":                     false,
		"":                              false,
	}

	for input, expected := range cases {
		if got := IsHTTPURL(input); got != expected {
			t.Fatalf("IsHTTPURL(%q) = %v, want %v", input, got, expected)
		}
	}
}

func TestSanitizeHTMLStripsScripts(t *testing.T) {
	out := SanitizeHTML(`<p>hello</p><script>alert(1)</script>`)
	if out != "<p>hello</p>" {
		t.Fatalf("unexpected sanitised output: %q", out)
	}
}

func TestValidateContentTypeWildcard(t *testing.T) {
	if !ValidateContentType("image/png; charset=binary", []string{"image/*"}) {
		t.Fatal("expected wildcard to accept image/png")
	}
	if ValidateContentType("video/mp4", []string{"image/*"}) {
		t.Fatal("expected wildcard to reject video/mp4")
	}
}

func TestValidateFileSize(t *testing.T) {
	if !ValidateFileSize(10, 10) {
		t.Fatal("expected size at the limit to pass")
	}
	if ValidateFileSize(0, 10) || ValidateFileSize(11, 10) {
		t.Fatal("expected empty and oversized files to fail")
	}
}
