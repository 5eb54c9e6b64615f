package browser

// W3C key codepoints for SendKeys. Only the keys scenarios commonly
// press; the full table lives in the WebDriver spec.
const (
	KeyEnter     = "\ue007"
	KeyTab       = "\ue004"
	KeyEscape    = "\ue00c"
	KeyBackspace = "\ue003"
	KeyArrowUp   = "\ue013"
	KeyArrowDown = "\ue015"
	KeySpace     = "\ue00d"
)

// Key resolves a friendly key name to its W3C codepoint. Unknown names
// are returned unchanged so plain characters pass through.
func Key(name string) string {
	switch name {
	case "enter", "return":
		return KeyEnter
	case "tab":
		return KeyTab
	case "escape", "esc":
		return KeyEscape
	case "backspace":
		return KeyBackspace
	case "up":
		return KeyArrowUp
	case "down":
		return KeyArrowDown
	case "space":
		return KeySpace
	}
	return name
}
