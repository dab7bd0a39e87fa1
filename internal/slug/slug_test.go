package slug

import "testing"

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Rosie's Bakery":        "rosie-s-bakery",
		"  The  Corner Shop  ":  "the-corner-shop",
		"ACME & Sons, Ltd.":     "acme-sons-ltd",
		"café 24/7":             "café-24-7",
		"already-a-slug":        "already-a-slug",
		"!!!":                   "storefront",
		"":                      "storefront",
		"Trailing punctuation!": "trailing-punctuation",
	}
	for in, want := range cases {
		if got := Make(in); got != want {
			t.Errorf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWithSuffix(t *testing.T) {
	if got := WithSuffix("shop", 1); got != "shop" {
		t.Errorf("WithSuffix(shop, 1) = %q, want %q", got, "shop")
	}
	if got := WithSuffix("shop", 2); got != "shop-2" {
		t.Errorf("WithSuffix(shop, 2) = %q, want %q", got, "shop-2")
	}
}
