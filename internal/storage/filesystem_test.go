package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveWritesUnderInvocation(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	key, err := store.Save(context.Background(), "inv-1", "video0.mp4", []byte("mp4"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if key != "inv-1/video0.mp4" {
		t.Fatalf("key = %q, want inv-1/video0.mp4", key)
	}
	full, err := store.Path(key)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "mp4" {
		t.Fatalf("content = %q, want mp4", data)
	}
	if filepath.Dir(full) != filepath.Join(store.BasePath(), "inv-1") {
		t.Fatalf("file saved outside invocation dir: %s", full)
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "a/b.mp4", want: "a/b.mp4"},
		{in: "/a/b.mp4", want: "a/b.mp4"},
		{in: "./a//b.mp4", want: "a/b.mp4"},
		{in: `a\b.mp4`, want: "a/b.mp4"},
		{in: "a/../b.mp4", want: "b.mp4"},
		{in: "../etc/passwd", wantErr: true},
		{in: "..", wantErr: true},
		{in: " ", wantErr: true},
	}
	for _, tt := range tests {
		got, err := sanitizeKey(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("sanitizeKey(%q) = %q, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("sanitizeKey(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteHonorsCancelledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Write(ctx, "x.mp4", []byte("x")); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore(" "); err == nil {
		t.Fatal("expected error for empty base path")
	}
}
