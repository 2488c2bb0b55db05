package weather

import "testing"

func TestOvercast(t *testing.T) {
	tests := []struct {
		sky  string
		want bool
	}{
		{"overcast clouds", true},
		{"broken clouds", true},
		{"Mostly Cloudy", true},
		{"light rain", true},
		{"Chance Snow Showers", true},
		{"fog", true},
		{"thunderstorm", true},
		{"clear sky", false},
		{"Sunny", false},
		{"few clouds", true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.sky, func(t *testing.T) {
			if got := Overcast(tt.sky); got != tt.want {
				t.Errorf("Overcast(%q) = %v, want %v", tt.sky, got, tt.want)
			}
		})
	}
}
