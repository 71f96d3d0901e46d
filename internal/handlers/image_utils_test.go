package handlers

import (
	"reflect"
	"testing"
)

func TestNormalizeImagesSkipsInvalid(t *testing.T) {
	values := []string{
		"[object Object]",
		"{not json}",
		"\"/static/a.jpg\"",
		"https://cdn.example.com/b.jpg",
		"",
		"null",
		`["https://cdn.example.com/c.jpg", {"name":"d","path":"https://cdn.example.com/d.jpg"}]`,
		`{"name":"https://cdn.example.com/e.jpg"}`,
		"https://cdn.example.com/b.jpg",
	}

	got := normalizeImages(values)
	want := []string{
		"/static/a.jpg",
		"https://cdn.example.com/b.jpg",
		"https://cdn.example.com/c.jpg",
		"https://cdn.example.com/d.jpg",
		"https://cdn.example.com/e.jpg",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNormalizeImagesEmpty(t *testing.T) {
	got := normalizeImages(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
