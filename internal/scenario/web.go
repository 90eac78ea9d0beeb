package scenario

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/themizzi/sitecheck/internal/config"
	"github.com/themizzi/sitecheck/internal/expect"
	"github.com/themizzi/sitecheck/internal/models"
	"github.com/themizzi/sitecheck/internal/session"
)

// ScreenshotFile is the transient file written by the screenshot scenario
const ScreenshotFile = "test_screenshot.png"

var assertions = playwright.NewPlaywrightAssertions()

// GoogleSearch searches Google and expects results mentioning the query
func GoogleSearch(page *session.Page, targets config.TargetsConfig) error {
	p := page.Raw()

	if err := navigate(page, targets.GoogleURL); err != nil {
		return err
	}

	if err := assertions.Page(p).ToHaveTitle("Google"); err != nil {
		return assertionFailed("title", err)
	}

	searchBox := p.GetByRole(*playwright.AriaRoleCombobox, playwright.PageGetByRoleOptions{
		Name: "Search",
	})
	if err := searchBox.Fill("DevOps CI/CD"); err != nil {
		return session.WrapError("fill search box", err)
	}
	if err := searchBox.Press("Enter"); err != nil {
		return session.WrapError("submit search", err)
	}

	if _, err := p.WaitForSelector("#search"); err != nil {
		return session.WrapError("wait for results", err)
	}

	return contentContains(page, "DevOps", false)
}

// GitHubSearch searches GitHub and expects results mentioning pytest
func GitHubSearch(page *session.Page, targets config.TargetsConfig) error {
	p := page.Raw()

	if err := navigate(page, targets.GitHubURL); err != nil {
		return err
	}

	if err := assertions.Page(p).ToHaveURL(strings.TrimRight(targets.GitHubURL, "/") + "/"); err != nil {
		return assertionFailed("homepage url", err)
	}

	searchInput := p.GetByPlaceholder("Search GitHub")
	if err := searchInput.Click(); err != nil {
		return session.WrapError("open search", err)
	}
	if err := searchInput.Fill("pytest automation"); err != nil {
		return session.WrapError("fill search", err)
	}
	if err := searchInput.Press("Enter"); err != nil {
		return session.WrapError("submit search", err)
	}

	if _, err := p.WaitForSelector("[data-testid='results-list']"); err != nil {
		return session.WrapError("wait for results", err)
	}

	return contentContains(page, "pytest", true)
}

// FormSubmission fills and submits the httpbin order form
func FormSubmission(page *session.Page, targets config.TargetsConfig) error {
	p := page.Raw()

	if err := navigate(page, targets.HTTPBin("/forms/post")); err != nil {
		return err
	}

	fields := []struct {
		selector string
		value    string
	}{
		{"input[name='custname']", "Test User"},
		{"input[name='custtel']", "1234567890"},
		{"input[name='custemail']", "test@example.com"},
	}
	for _, f := range fields {
		if err := p.Locator(f.selector).Fill(f.value); err != nil {
			return session.WrapError("fill "+f.selector, err)
		}
	}

	if _, err := p.Locator("select[name='size']").SelectOption(playwright.SelectOptionValues{
		Values: playwright.StringSlice("medium"),
	}); err != nil {
		return session.WrapError("select size", err)
	}

	if err := p.Locator("input[name='topping'][value='bacon']").Check(); err != nil {
		return session.WrapError("check topping", err)
	}

	if err := p.Locator("button[type='submit']").Click(); err != nil {
		return session.WrapError("submit form", err)
	}

	if _, err := p.WaitForSelector("pre"); err != nil {
		return session.WrapError("wait for submission", err)
	}

	content, err := p.Content()
	if err != nil {
		return session.WrapError("read content", err)
	}
	return expect.SelectorContains(content, "pre", "Test User")
}

// Screenshot checks the example page rendered, then captures a full-page
// screenshot, verifies it and removes it
func Screenshot(page *session.Page, targets config.TargetsConfig) error {
	if err := navigate(page, targets.ExampleURL); err != nil {
		return err
	}
	if err := rendered(page); err != nil {
		return err
	}

	defer os.Remove(ScreenshotFile)
	return page.Screenshot(ScreenshotFile, true)
}

// NetworkInterception expects the page to issue requests to the httpbin host
func NetworkInterception(page *session.Page, targets config.TargetsConfig) error {
	sub := session.Subscribe(page)
	defer sub.Unsubscribe()

	if err := navigate(page, targets.HTTPBin("/get")); err != nil {
		return err
	}

	if sub.Count() == 0 {
		return fmt.Errorf("%w: no requests were captured", models.ErrAssertionFailed)
	}

	host := hostOf(targets.HTTPBinURL)
	if !sub.Any(host) {
		return fmt.Errorf("%w: no captured request mentions %s: %v", models.ErrAssertionFailed, host, sub.URLs())
	}
	return nil
}

// MobileViewport resizes to a phone viewport and reads it back
func MobileViewport(page *session.Page, targets config.TargetsConfig) error {
	const width, height = 375, 667

	if err := page.SetViewport(width, height); err != nil {
		return err
	}

	if err := navigate(page, targets.GoogleURL); err != nil {
		return err
	}

	gotWidth, gotHeight := page.Viewport()
	if gotWidth != width || gotHeight != height {
		return fmt.Errorf("%w: expected viewport %dx%d, got %dx%d", models.ErrAssertionFailed, width, height, gotWidth, gotHeight)
	}
	return nil
}

func navigate(page *session.Page, target string) error {
	if _, err := page.Raw().Goto(target); err != nil {
		return session.WrapError("goto "+target, err)
	}
	return nil
}

// rendered fails unless the current document has a title and at least one link
func rendered(page *session.Page) error {
	content, err := page.Raw().Content()
	if err != nil {
		return session.WrapError("read content", err)
	}

	title, err := expect.Title(content)
	if err != nil {
		return err
	}
	if title == "" {
		return fmt.Errorf("%w: %s has no title", models.ErrAssertionFailed, page.Raw().URL())
	}

	links, err := expect.Links(content)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return fmt.Errorf("%w: %q has no links", models.ErrAssertionFailed, title)
	}
	return nil
}

func contentContains(page *session.Page, want string, fold bool) error {
	content, err := page.Raw().Content()
	if err != nil {
		return session.WrapError("read content", err)
	}
	if fold {
		return expect.ContainsFold(content, want)
	}
	return expect.Contains(content, want)
}

func assertionFailed(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", models.ErrAssertionFailed, what, err)
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
