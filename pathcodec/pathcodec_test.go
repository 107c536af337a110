package pathcodec

import (
	"errors"
	"testing"

	"github.com/bumbu-labs/treeforge/treeerr"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name          string
		priority      uint32
		segmentLength int
		want          string
		wantErr       bool
	}{
		{name: "zero", priority: 0, segmentLength: 3, want: "000"},
		{name: "mid", priority: 4, segmentLength: 3, want: "004"},
		{name: "hex digit", priority: 10, segmentLength: 3, want: "00A"},
		{name: "max valid", priority: 4095, segmentLength: 3, want: "FFF"},
		{name: "overflow", priority: 4096, segmentLength: 3, wantErr: true},
		{name: "segment length 1 max", priority: 15, segmentLength: 1, want: "F"},
		{name: "segment length 1 overflow", priority: 16, segmentLength: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.priority, tt.segmentLength)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Encode(%d, %d) = nil error, want error", tt.priority, tt.segmentLength)
				}
				if !errors.Is(err, treeerr.ErrInvalidPriority) {
					t.Errorf("Encode() error = %v, want ErrInvalidPriority", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Encode(%d, %d) unexpected error: %v", tt.priority, tt.segmentLength, err)
			}
			if got != tt.want {
				t.Errorf("Encode(%d, %d) = %q, want %q", tt.priority, tt.segmentLength, got, tt.want)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name       string
		parentPath string
		priority   uint32
		want       string
	}{
		{name: "root", parentPath: "", priority: 0, want: "000"},
		{name: "child", parentPath: "000", priority: 4, want: "000.004"},
		{name: "grandchild", parentPath: "000.000", priority: 0, want: "000.000.000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(tt.parentPath, tt.priority, 3)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Generate(%q, %d) = %q, want %q", tt.parentPath, tt.priority, got, tt.want)
			}
		})
	}
}

func TestDepth(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"000", 0},
		{"000.004", 1},
		{"000.000.000", 2},
		{"", 0},
	}
	for _, tt := range tests {
		if got := Depth(tt.path); got != tt.want {
			t.Errorf("Depth(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func TestIsAncestorPath(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"000", "000", true},
		{"000", "000.001", true},
		{"000", "000.001.002", true},
		{"000", "001", false},
		{"000", "0001", false}, // prefix without the separator must not match
		{"000.001", "000", false},
	}
	for _, tt := range tests {
		if got := IsAncestorPath(tt.a, tt.b); got != tt.want {
			t.Errorf("IsAncestorPath(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRootSegment(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"000", "000"},
		{"000.004", "000"},
		{"000.004.00A", "000"},
	}
	for _, tt := range tests {
		if got := RootSegment(tt.path); got != tt.want {
			t.Errorf("RootSegment(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestBase(t *testing.T) {
	if got := Base(3); got != 4096 {
		t.Errorf("Base(3) = %d, want 4096", got)
	}
	if got := Base(1); got != 16 {
		t.Errorf("Base(1) = %d, want 16", got)
	}
}
