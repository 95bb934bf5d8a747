package downloader

import (
	"reflect"
	"testing"
)

func TestResolveFiles(t *testing.T) {
	tests := []struct {
		name      string
		selection []string
		want      []string
		wantErr   bool
	}{
		{
			name:      "all sentinel selects full catalog",
			selection: []string{"all"},
			want:      Catalog,
		},
		{
			name:      "selection normalized to catalog order",
			selection: []string{"instances.json", "run_spec.json"},
			want:      []string{"run_spec.json", "instances.json"},
		},
		{
			name:      "duplicates collapse",
			selection: []string{"stats.json", "stats.json"},
			want:      []string{"stats.json"},
		},
		{
			name:      "unknown file rejected",
			selection: []string{"nonsense.json"},
			wantErr:   true,
		},
		{
			name:      "all mixed with names rejected",
			selection: []string{"all", "stats.json"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveFiles(tt.selection)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ResolveFiles(%v) = %v, want error", tt.selection, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveFiles(%v): %v", tt.selection, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveFiles(%v) = %v, want %v", tt.selection, got, tt.want)
			}
		})
	}
}
