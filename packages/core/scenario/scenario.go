package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Step actions.
const (
	ActionNavigate      = "navigate"
	ActionClick         = "click"
	ActionType          = "type"
	ActionClear         = "clear"
	ActionSelect        = "select"
	ActionHover         = "hover"
	ActionWaitVisible   = "wait_visible"
	ActionWaitClickable = "wait_clickable"
	ActionWaitTitle     = "wait_title"
	ActionAssertText    = "assert_text"
	ActionAssertTitle   = "assert_title"
	ActionAssertURL     = "assert_url"
	ActionAssertPresent = "assert_present"
	ActionScreenshot    = "screenshot"
	ActionScript        = "script"
	ActionSleep         = "sleep"
)

// Scenario is a single named browser test.
type Scenario struct {
	Name  string   `yaml:"name"`
	Tags  []string `yaml:"tags,omitempty"`
	Data  string   `yaml:"data,omitempty"`
	Steps []Step   `yaml:"steps"`
	Path  string   `yaml:"-"`
}

// Step is one action within a scenario. In YAML a step is a single-key
// mapping whose key is the action and whose value is either a scalar
// shorthand or a mapping of arguments:
//
//	- navigate: "{{base_url}}/login"
//	- type: {selector: "#user", text: "{{username}}"}
//	- assert_title: {contains: "Dashboard"}
type Step struct {
	Action   string
	Target   string // selector, URL, or screenshot name
	Text     string
	Equals   string
	Contains string
	Script   string
	Timeout  time.Duration
	Duration time.Duration // sleep only
}

type stepBody struct {
	Selector string `yaml:"selector"`
	URL      string `yaml:"url"`
	Name     string `yaml:"name"`
	Text     string `yaml:"text"`
	Equals   string `yaml:"equals"`
	Contains string `yaml:"contains"`
	Script   string `yaml:"script"`
	Timeout  string `yaml:"timeout"`
	Duration string `yaml:"duration"`
}

// UnmarshalYAML decodes the single-key step mapping.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: step must be a single-key mapping", node.Line)
	}

	s.Action = node.Content[0].Value
	body := node.Content[1]

	if body.Kind == yaml.ScalarNode {
		switch s.Action {
		case ActionSleep:
			d, err := time.ParseDuration(body.Value)
			if err != nil {
				return fmt.Errorf("line %d: invalid sleep duration %q: %w", body.Line, body.Value, err)
			}
			s.Duration = d
		case ActionScript:
			s.Script = body.Value
		case ActionAssertTitle, ActionAssertURL, ActionWaitTitle:
			s.Equals = body.Value
		default:
			s.Target = body.Value
		}
		return nil
	}

	var b stepBody
	if err := body.Decode(&b); err != nil {
		return fmt.Errorf("line %d: %w", body.Line, err)
	}

	switch {
	case b.Selector != "":
		s.Target = b.Selector
	case b.URL != "":
		s.Target = b.URL
	case b.Name != "":
		s.Target = b.Name
	}
	s.Text = b.Text
	s.Equals = b.Equals
	s.Contains = b.Contains
	s.Script = b.Script

	if b.Timeout != "" {
		d, err := time.ParseDuration(b.Timeout)
		if err != nil {
			return fmt.Errorf("line %d: invalid timeout %q: %w", body.Line, b.Timeout, err)
		}
		s.Timeout = d
	}
	if b.Duration != "" {
		d, err := time.ParseDuration(b.Duration)
		if err != nil {
			return fmt.Errorf("line %d: invalid duration %q: %w", body.Line, b.Duration, err)
		}
		s.Duration = d
	}

	return nil
}

// ParseFile parses all scenario documents in a file.
func ParseFile(path string) ([]*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	var scenarios []*Scenario
	for {
		var sc Scenario
		err := dec.Decode(&sc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		sc.Path = path
		if err := sc.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		scenarios = append(scenarios, &sc)
	}

	if len(scenarios) == 0 {
		return nil, fmt.Errorf("%s: no scenarios defined", path)
	}
	return scenarios, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return errors.New("scenario missing name")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", s.Name)
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("scenario %q step %d: %w", s.Name, i+1, err)
		}
	}
	return nil
}

// HasTag reports whether the scenario carries any of the given tags. An
// empty filter matches everything.
func (s *Scenario) HasTag(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, want := range tags {
		for _, have := range s.Tags {
			if want == have {
				return true
			}
		}
	}
	return false
}

func (s *Step) validate() error {
	switch s.Action {
	case ActionNavigate:
		if s.Target == "" {
			return errors.New("navigate requires a url")
		}
	case ActionClick, ActionClear, ActionHover, ActionWaitVisible,
		ActionWaitClickable, ActionAssertPresent:
		if s.Target == "" {
			return fmt.Errorf("%s requires a selector", s.Action)
		}
	case ActionType:
		if s.Target == "" {
			return errors.New("type requires a selector")
		}
		if s.Text == "" {
			return errors.New("type requires text")
		}
	case ActionSelect:
		if s.Target == "" {
			return errors.New("select requires a selector")
		}
		if s.Text == "" {
			return errors.New("select requires the option text")
		}
	case ActionAssertText:
		if s.Target == "" {
			return errors.New("assert_text requires a selector")
		}
		if s.Equals == "" && s.Contains == "" {
			return errors.New("assert_text requires equals or contains")
		}
	case ActionAssertTitle, ActionAssertURL, ActionWaitTitle:
		if s.Equals == "" && s.Contains == "" {
			return fmt.Errorf("%s requires equals or contains", s.Action)
		}
	case ActionScreenshot:
		// Name is optional; a timestamped one is generated when absent.
	case ActionScript:
		if s.Script == "" {
			return errors.New("script requires a script body")
		}
	case ActionSleep:
		if s.Duration <= 0 {
			return errors.New("sleep requires a positive duration")
		}
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}
	return nil
}
