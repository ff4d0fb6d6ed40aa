package main

import "testing"

func TestClusterPath(t *testing.T) {
	tests := []struct {
		path, cluster, want string
	}{
		{"out/terms.csv", "", "out/terms.csv"},
		{"out/terms.csv", "3", "out/terms-3.csv"},
		{"terms", "haptics", "terms-haptics"},
		{"", "3", ""},
	}
	for _, tt := range tests {
		if got := clusterPath(tt.path, tt.cluster); got != tt.want {
			t.Errorf("clusterPath(%q, %q) = %q, want %q", tt.path, tt.cluster, got, tt.want)
		}
	}
}

func TestStatus(t *testing.T) {
	for code, want := range map[int]string{0: "ok", 1: "failure", 2: "configuration", 3: "invariant", 4: "input"} {
		if got := status(code); got != want {
			t.Errorf("status(%d) = %q, want %q", code, got, want)
		}
	}
}
