package scraper

import "testing"

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"₹1,23,456.00", 123456},
		{"₹499", 499},
		{"Rs. 1,299", 1299},
		{"$120.50", 120.50},
		{"1299", 1299},
		{"", 0},
		{"free", 0},
		{"N/A", 0},
		{"₹0", 0},
		{"-50", 50},
		{"99999999", 0},
		{"10000000", 0},
		{"9999999", 9999999},
		{"1.2.3", 0},
	}

	for _, tt := range tests {
		got := NormalizePrice(tt.raw, 10000000)
		if got != tt.want {
			t.Errorf("NormalizePrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizePriceCeiling(t *testing.T) {
	if got := NormalizePrice("5000", 1000); got != 0 {
		t.Errorf("NormalizePrice above ceiling = %.2f; want 0", got)
	}
	if got := NormalizePrice("999", 1000); got != 999 {
		t.Errorf("NormalizePrice below ceiling = %.2f; want 999", got)
	}
}
