package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectOpenArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"boardview"},
			want: []string{"boardview"},
		},
		{
			name: "export first token",
			in:   []string{"boardview", "1700000000000-roadmap.json"},
			want: []string{"boardview", "open", "1700000000000-roadmap.json"},
		},
		{
			name: "export after value flag",
			in:   []string{"boardview", "--dir", "./data", "roadmap.JSON"},
			want: []string{"boardview", "--dir", "./data", "open", "roadmap.JSON"},
		},
		{
			name: "export after equals flag",
			in:   []string{"boardview", "--dir=./data", "roadmap.json"},
			want: []string{"boardview", "--dir=./data", "open", "roadmap.json"},
		},
		{
			name: "export after bool flag",
			in:   []string{"boardview", "--pretty", "roadmap.json"},
			want: []string{"boardview", "--pretty", "open", "roadmap.json"},
		},
		{
			name: "export after double dash",
			in:   []string{"boardview", "--", "roadmap.json"},
			want: []string{"boardview", "--", "open", "roadmap.json"},
		},
		{
			name: "subcommand untouched",
			in:   []string{"boardview", "show", "roadmap.json"},
			want: []string{"boardview", "show", "roadmap.json"},
		},
		{
			name: "bare extension is not a file",
			in:   []string{"boardview", ".json"},
			want: []string{"boardview", ".json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := rewriteDirectOpenArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
