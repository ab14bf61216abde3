package models

import "testing"

func TestArtisanCanBeHired(t *testing.T) {
	tests := []struct {
		name    string
		artisan *Artisan
		want    bool
	}{
		{name: "missing", artisan: nil, want: false},
		{name: "unregistered", artisan: &Artisan{Verified: true}, want: false},
		{name: "registered only", artisan: &Artisan{Registered: true}, want: false},
		{name: "registered and verified", artisan: &Artisan{Registered: true, Verified: true}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.artisan.CanBeHired(); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
