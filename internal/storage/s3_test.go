package storage

import (
	"errors"
	"strings"
	"testing"
)

func TestNewWithoutCredentials(t *testing.T) {
	c, err := New("", "us-east-1", "", "", "media", "")
	if err != nil || c != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", c, err)
	}
	if _, ok := c.KeyFromURL("https://s3.example.com/media/a.mp4"); ok {
		t.Error("nil client should not claim any URL")
	}
}

func TestKeyFromURL(t *testing.T) {
	c, err := New("https://s3.example.com/", "us-east-1", "ak", "sk", "media", "https://cdn.example.com")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		url    string
		key    string
		wantOK bool
	}{
		{"https://cdn.example.com/videos/a.mp4", "videos/a.mp4", true},
		{"https://s3.example.com/media/videos/b.mov?X-Amz=1", "videos/b.mov", true},
		{"https://s3.example.com/other/videos/b.mov", "", false},
		{"https://cdn.example.com/", "", false},
		{"https://elsewhere.example.com/a.mp4", "", false},
	}
	for _, tt := range tests {
		key, ok := c.KeyFromURL(tt.url)
		if key != tt.key || ok != tt.wantOK {
			t.Errorf("KeyFromURL(%q) = (%q, %v), want (%q, %v)", tt.url, key, ok, tt.key, tt.wantOK)
		}
	}

	if got := c.FileURL("x.mp4"); got != "https://cdn.example.com/x.mp4" {
		t.Errorf("FileURL: %q", got)
	}
}

func TestReadCapped(t *testing.T) {
	data, err := ReadCapped(strings.NewReader("12345"), 5)
	if err != nil || string(data) != "12345" {
		t.Fatalf("at cap: %q, %v", data, err)
	}
	if _, err := ReadCapped(strings.NewReader("123456"), 5); !errors.Is(err, ErrTooLarge) {
		t.Errorf("over cap: got %v, want ErrTooLarge", err)
	}
	data, err = ReadCapped(strings.NewReader("123456"), 0)
	if err != nil || len(data) != 6 {
		t.Errorf("no cap: %q, %v", data, err)
	}
}
