// Package expect holds content assertions shared by browser scenarios and API checks.
package expect

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/themizzi/sitecheck/internal/models"
)

// Parse parses an HTML document
func Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// Text returns the trimmed text of every element matching selector
func Text(html, selector string) (string, error) {
	doc, err := Parse(html)
	if err != nil {
		return "", err
	}
	selection := doc.Find(selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("%w: selector %q matched no elements", models.ErrAssertionFailed, selector)
	}
	return strings.TrimSpace(selection.Text()), nil
}

// HasSelector fails unless at least one element matches selector
func HasSelector(html, selector string) error {
	_, err := Text(html, selector)
	return err
}

// SelectorContains fails unless the text under selector contains want
func SelectorContains(html, selector, want string) error {
	text, err := Text(html, selector)
	if err != nil {
		return err
	}
	if !strings.Contains(text, want) {
		return fmt.Errorf("%w: expected %q under %q, got %q", models.ErrAssertionFailed, want, selector, truncate(text, 200))
	}
	return nil
}

// Contains fails unless the document text contains want
func Contains(html, want string) error {
	return contains(html, want, false)
}

// ContainsFold is Contains ignoring case
func ContainsFold(html, want string) error {
	return contains(html, want, true)
}

func contains(html, want string, fold bool) error {
	haystack, needle := html, want
	if fold {
		haystack, needle = strings.ToLower(html), strings.ToLower(want)
	}
	if !strings.Contains(haystack, needle) {
		return fmt.Errorf("%w: expected page content to contain %q", models.ErrAssertionFailed, want)
	}
	return nil
}

// Title returns the document title
func Title(html string) (string, error) {
	doc, err := Parse(html)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}

// Links returns the href of every anchor in the document
func Links(html string) ([]string, error) {
	doc, err := Parse(html)
	if err != nil {
		return nil, err
	}
	links := []string{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			links = append(links, href)
		}
	})
	return links, nil
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
