package category

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"tech", "tech"},
		{"  Tech ", "tech"},
		{"Technology", "tech"},
		{"sports", "sport"},
		{"finance", "business"},
		{"economy", "business"},
		{"politic", "politics"},
		{"astrology", Other},
		{"", Other},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKnown(t *testing.T) {
	t.Parallel()

	if !Known("tech") || !Known(" SPORT ") {
		t.Fatal("main categories should be known")
	}
	if Known("technology") {
		t.Fatal("aliases are not main categories")
	}
	if Known("astrology") {
		t.Fatal("unknown label should not be known")
	}
}

func TestDetectSubcategory(t *testing.T) {
	t.Parallel()

	text := "New AI model beats benchmark: training the neural network took weeks"
	if got := DetectSubcategory("tech", text, 0.2); got != "ai" {
		t.Fatalf("expected ai, got %q", got)
	}

	text = "Stocks rally as the index climbs and shares of every bond fund surge"
	if got := DetectSubcategory("business", text, 0.2); got != "markets" {
		t.Fatalf("expected markets, got %q", got)
	}
}

func TestDetectSubcategoryBelowThreshold(t *testing.T) {
	t.Parallel()

	text := "A long meandering essay about the weather and gardening and cooking with nothing topical in it at all"
	if got := DetectSubcategory("tech", text, 0.2); got != "" {
		t.Fatalf("expected no subcategory, got %q", got)
	}
}

func TestDetectSubcategoryUnknownCategory(t *testing.T) {
	t.Parallel()

	if got := DetectSubcategory("astrology", "ai model training", 0.2); got != "" {
		t.Fatalf("unknown main category should yield nothing, got %q", got)
	}
	if got := DetectSubcategory("tech", "", 0.2); got != "" {
		t.Fatalf("empty text should yield nothing, got %q", got)
	}
}
