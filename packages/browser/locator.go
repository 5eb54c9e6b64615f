package browser

import (
	"fmt"
	"strings"
)

// W3C location strategies.
const (
	ByCSS             = "css selector"
	ByXPath           = "xpath"
	ByLinkText        = "link text"
	ByPartialLinkText = "partial link text"
	ByTagName         = "tag name"
)

// By pairs a W3C location strategy with its selector value.
type By struct {
	Using string
	Value string
}

// CSS builds a css-selector locator.
func CSS(selector string) By {
	return By{Using: ByCSS, Value: selector}
}

// XPath builds an xpath locator.
func XPath(expression string) By {
	return By{Using: ByXPath, Value: expression}
}

// ParseLocator turns a scenario locator string into a By. An explicit
// strategy prefix ("css=", "xpath=", "id=", "name=", "link=",
// "partial-link=", "tag=") wins; otherwise expressions starting with
// "//" or "(" are treated as XPath and everything else as CSS.
func ParseLocator(locator string) (By, error) {
	if locator == "" {
		return By{}, fmt.Errorf("%w: empty locator", ErrInvalidSelector)
	}

	if strategy, value, found := strings.Cut(locator, "="); found {
		switch strategy {
		case "css":
			return CSS(value), nil
		case "xpath":
			return XPath(value), nil
		case "id":
			return CSS("#" + value), nil
		case "name":
			return CSS(fmt.Sprintf("[name=%q]", value)), nil
		case "link":
			return By{Using: ByLinkText, Value: value}, nil
		case "partial-link":
			return By{Using: ByPartialLinkText, Value: value}, nil
		case "tag":
			return By{Using: ByTagName, Value: value}, nil
		}
	}

	if strings.HasPrefix(locator, "//") || strings.HasPrefix(locator, "(") {
		return XPath(locator), nil
	}
	return CSS(locator), nil
}
