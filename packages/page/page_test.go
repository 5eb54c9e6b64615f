package page

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uispec/uispec/packages/browser"
	"github.com/uispec/uispec/packages/browser/browsertest"
)

func newTestPage(session *browsertest.FakeSession) *Page {
	return New(session,
		WithTimeout(100*time.Millisecond),
		WithPollInterval(5*time.Millisecond))
}

func TestNavigateToWaitsForLoad(t *testing.T) {
	session := browsertest.NewFakeSession()
	p := newTestPage(session)

	require.NoError(t, p.NavigateTo(context.Background(), "https://example.test"))
	assert.Equal(t, []string{"https://example.test"}, session.Navigations)
	assert.Contains(t, session.ScriptCalls, "return document.readyState")
}

func TestClickWaitsForClickable(t *testing.T) {
	session := browsertest.NewFakeSession()
	session.Elements["#submit"] = &browsertest.FakeElement{Tag: "button"}
	p := newTestPage(session)

	require.NoError(t, p.Click(context.Background(), "#submit"))
	assert.Equal(t, 1, session.Elements["#submit"].ClickCount)
}

func TestClickTimesOutOnDisabledElement(t *testing.T) {
	session := browsertest.NewFakeSession()
	session.Elements["#submit"] = &browsertest.FakeElement{Tag: "button", IsDisabled: true}
	p := newTestPage(session)

	err := p.Click(context.Background(), "#submit")
	require.Error(t, err)
	assert.True(t, errors.Is(err, browser.ErrTimeout), "got %v", err)
}

func TestTypeTextClearsFirst(t *testing.T) {
	session := browsertest.NewFakeSession()
	input := &browsertest.FakeElement{Tag: "input"}
	session.Elements["#user"] = input
	p := newTestPage(session)

	require.NoError(t, p.TypeText(context.Background(), "#user", "alice"))
	assert.Equal(t, 1, input.ClearCount)
	assert.Equal(t, []string{"alice"}, input.Typed)
}

func TestGetText(t *testing.T) {
	session := browsertest.NewFakeSession()
	session.Elements[".banner"] = &browsertest.FakeElement{TextValue: "Welcome back"}
	p := newTestPage(session)

	text, err := p.GetText(context.Background(), ".banner")
	require.NoError(t, err)
	assert.Equal(t, "Welcome back", text)
}

func TestIsElementPresent(t *testing.T) {
	session := browsertest.NewFakeSession()
	session.Elements["#logout"] = &browsertest.FakeElement{}
	p := newTestPage(session)

	present, err := p.IsElementPresent(context.Background(), "#logout")
	require.NoError(t, err)
	assert.True(t, present)

	present, err = p.IsElementPresent(context.Background(), "#missing")
	require.NoError(t, err)
	assert.False(t, present)
}

func TestWaitForVisibleTimesOut(t *testing.T) {
	session := browsertest.NewFakeSession()
	session.Elements["#spinner"] = &browsertest.FakeElement{IsHidden: true}
	p := newTestPage(session)

	err := p.WaitForVisible(context.Background(), "#spinner", 30*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, browser.ErrTimeout), "got %v", err)
}

func TestWaitForTitle(t *testing.T) {
	session := browsertest.NewFakeSession()
	session.PageTitle = "Dashboard - Acme"
	p := newTestPage(session)

	require.NoError(t, p.WaitForTitle(context.Background(), "", "Dashboard", 0))

	err := p.WaitForTitle(context.Background(), "Settings", "", 30*time.Millisecond)
	assert.True(t, errors.Is(err, browser.ErrTimeout), "got %v", err)
}

func TestSelectByVisibleText(t *testing.T) {
	session := browsertest.NewFakeSession()
	optionA := &browsertest.FakeElement{Tag: "option", TextValue: " Alpha "}
	optionB := &browsertest.FakeElement{Tag: "option", TextValue: "Beta"}
	session.Elements["#plan"] = &browsertest.FakeElement{
		Tag:      "select",
		Children: []*browsertest.FakeElement{optionA, optionB},
	}
	p := newTestPage(session)

	require.NoError(t, p.SelectByVisibleText(context.Background(), "#plan", "Beta"))
	assert.Equal(t, 0, optionA.ClickCount)
	assert.Equal(t, 1, optionB.ClickCount)
}

func TestSelectByVisibleTextNoMatch(t *testing.T) {
	session := browsertest.NewFakeSession()
	session.Elements["#plan"] = &browsertest.FakeElement{
		Tag:      "select",
		Children: []*browsertest.FakeElement{{Tag: "option", TextValue: "Alpha"}},
	}
	p := newTestPage(session)

	err := p.SelectByVisibleText(context.Background(), "#plan", "Gamma")
	require.Error(t, err)
	assert.True(t, errors.Is(err, browser.ErrNoSuchElement), "got %v", err)
}

func TestSelectByValue(t *testing.T) {
	session := browsertest.NewFakeSession()
	option := &browsertest.FakeElement{Tag: "option", Attrs: map[string]string{"value": "pro"}}
	session.Elements["#plan"] = &browsertest.FakeElement{
		Tag:      "select",
		Children: []*browsertest.FakeElement{option},
	}
	p := newTestPage(session)

	require.NoError(t, p.SelectByValue(context.Background(), "#plan", "pro"))
	assert.Equal(t, 1, option.ClickCount)
}

func TestHoverDispatchesMouseEvent(t *testing.T) {
	session := browsertest.NewFakeSession()
	target := &browsertest.FakeElement{}
	session.Elements[".menu"] = target
	p := newTestPage(session)

	require.NoError(t, p.Hover(context.Background(), ".menu"))
	require.Len(t, session.ScriptArgs, 1)
	assert.Same(t, target, session.ScriptArgs[0][0])
}

func TestPressKeyResolvesFriendlyName(t *testing.T) {
	session := browsertest.NewFakeSession()
	input := &browsertest.FakeElement{Tag: "input"}
	session.Elements["#search"] = input
	p := newTestPage(session)

	require.NoError(t, p.PressKey(context.Background(), "#search", "enter"))
	assert.Equal(t, []string{browser.KeyEnter}, input.Typed)
}

func TestInvalidLocatorSurfacesEarly(t *testing.T) {
	p := newTestPage(browsertest.NewFakeSession())

	err := p.Click(context.Background(), "")
	assert.True(t, errors.Is(err, browser.ErrInvalidSelector), "got %v", err)
}
