package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uispec/uispec/packages/core/env"
	"github.com/uispec/uispec/packages/core/scenario"
	"github.com/uispec/uispec/packages/page"
	"github.com/uispec/uispec/packages/screenshot"
)

// executeStep resolves the step's placeholders and dispatches it.
// Failed assertions set Passed plus a Message; infrastructure failures
// set Error.
func (r *Runner) executeStep(ctx context.Context, pg *page.Page, capturer *screenshot.Capturer, resolver *env.Resolver, step scenario.Step) StepResult {
	target := resolver.Resolve(step.Target)
	text := resolver.Resolve(step.Text)
	equals := resolver.Resolve(step.Equals)
	contains := resolver.Resolve(step.Contains)

	result := StepResult{Action: step.Action, Target: target, Passed: true}
	start := time.Now()

	var err error
	switch step.Action {
	case scenario.ActionNavigate:
		err = pg.NavigateTo(ctx, r.resolveURL(target))

	case scenario.ActionClick:
		err = pg.Click(ctx, target)

	case scenario.ActionType:
		err = pg.TypeText(ctx, target, text)

	case scenario.ActionClear:
		err = pg.ClearText(ctx, target)

	case scenario.ActionSelect:
		err = pg.SelectByVisibleText(ctx, target, text)

	case scenario.ActionHover:
		err = pg.Hover(ctx, target)

	case scenario.ActionWaitVisible:
		err = pg.WaitForVisible(ctx, target, step.Timeout)

	case scenario.ActionWaitClickable:
		err = pg.WaitForClickable(ctx, target, step.Timeout)

	case scenario.ActionWaitTitle:
		err = pg.WaitForTitle(ctx, equals, contains, step.Timeout)

	case scenario.ActionAssertText:
		var actual string
		actual, err = pg.GetText(ctx, target)
		if err == nil {
			result.Passed, result.Message = assertString(actual, equals, contains)
		}

	case scenario.ActionAssertTitle:
		var actual string
		actual, err = pg.Title(ctx)
		if err == nil {
			result.Passed, result.Message = assertString(actual, equals, contains)
		}

	case scenario.ActionAssertURL:
		var actual string
		actual, err = pg.CurrentURL(ctx)
		if err == nil {
			result.Passed, result.Message = assertString(actual, equals, contains)
		}

	case scenario.ActionAssertPresent:
		var present bool
		present, err = pg.IsElementPresent(ctx, target)
		if err == nil && !present {
			result.Passed = false
			result.Message = fmt.Sprintf("element %q not present", target)
		}

	case scenario.ActionScreenshot:
		_, err = capturer.Capture(ctx, target)

	case scenario.ActionScript:
		_, err = pg.ExecuteScript(ctx, resolver.Resolve(step.Script))

	case scenario.ActionSleep:
		select {
		case <-time.After(step.Duration):
		case <-ctx.Done():
			err = ctx.Err()
		}

	default:
		err = fmt.Errorf("unknown action %q", step.Action)
	}

	if err != nil {
		result.Passed = false
		result.Error = err
	}
	result.Duration = time.Since(start)

	r.logger.Debug("step executed",
		"action", result.Action,
		"target", result.Target,
		"passed", result.Passed,
		"duration", result.Duration)
	return result
}

// resolveURL joins root-relative paths with the configured base URL so
// scenarios can navigate to "/login" without repeating the host.
func (r *Runner) resolveURL(target string) string {
	if r.cfg.BaseURL == "" || !strings.HasPrefix(target, "/") {
		return target
	}
	return strings.TrimRight(r.cfg.BaseURL, "/") + target
}

func assertString(actual, equals, contains string) (bool, string) {
	if equals != "" && actual != equals {
		return false, fmt.Sprintf("expected %q, got %q", equals, actual)
	}
	if contains != "" && !strings.Contains(actual, contains) {
		return false, fmt.Sprintf("expected to contain %q, got %q", contains, actual)
	}
	return true, ""
}
