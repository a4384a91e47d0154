package domain

import "testing"

func TestResolve(t *testing.T) {
	pageURL := "https://example.com/gallery/index.html"

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"relative", "a.jpg", "https://example.com/gallery/a.jpg"},
		{"root relative", "/img/a.jpg", "https://example.com/img/a.jpg"},
		{"absolute unchanged", "https://cdn.x/a.jpg", "https://cdn.x/a.jpg"},
		{"scheme relative", "//cdn.x/a.jpg", "https://cdn.x/a.jpg"},
		{"parent directory", "../shared/b.png", "https://example.com/shared/b.png"},
		{"query preserved", "thumb.php?id=4", "https://example.com/gallery/thumb.php?id=4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.ref, pageURL)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestResolve_PageURLWithoutScheme(t *testing.T) {
	if _, err := Resolve("a.jpg", "example.com/gallery/"); err == nil {
		t.Error("Resolve() with schemeless page URL, want error")
	}
}
