package browser

import (
	"errors"
	"testing"
)

func TestParseLocator(t *testing.T) {
	tests := []struct {
		name    string
		locator string
		want    By
	}{
		{"bare css", "#submit", CSS("#submit")},
		{"css with attribute", "input[type=text]", CSS("input[type=text]")},
		{"explicit css", "css=.btn.primary", CSS(".btn.primary")},
		{"explicit xpath", "xpath=//div[@id='x']", XPath("//div[@id='x']")},
		{"bare xpath", "//button[1]", XPath("//button[1]")},
		{"parenthesized xpath", "(//a)[2]", XPath("(//a)[2]")},
		{"id shorthand", "id=login", CSS("#login")},
		{"name shorthand", "name=q", CSS(`[name="q"]`)},
		{"link text", "link=Sign in", By{Using: ByLinkText, Value: "Sign in"}},
		{"partial link", "partial-link=Sign", By{Using: ByPartialLinkText, Value: "Sign"}},
		{"tag", "tag=select", By{Using: ByTagName, Value: "select"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocator(tt.locator)
			if err != nil {
				t.Fatalf("ParseLocator(%q) error: %v", tt.locator, err)
			}
			if got != tt.want {
				t.Errorf("ParseLocator(%q) = %+v, want %+v", tt.locator, got, tt.want)
			}
		})
	}
}

func TestParseLocatorEmpty(t *testing.T) {
	_, err := ParseLocator("")
	if !errors.Is(err, ErrInvalidSelector) {
		t.Errorf("expected ErrInvalidSelector, got %v", err)
	}
}
