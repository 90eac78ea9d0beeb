// Package check declares HTTP assertions against the API under test.
package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/themizzi/sitecheck/internal/apiclient"
	"github.com/themizzi/sitecheck/internal/config"
	"github.com/themizzi/sitecheck/internal/expect"
	"github.com/themizzi/sitecheck/internal/models"
)

// Spec is one declarative HTTP check. Zero-valued expectations are skipped,
// except ExpectStatus which defaults to 200.
type Spec struct {
	Name              string
	Path              string
	ExpectStatus      int
	ExpectJSONKey     string
	ExpectContentType string
	ExpectSelector    string
}

// Defaults returns the built-in httpbin checks
func Defaults() []Spec {
	return []Spec{
		{
			Name:         "status_200",
			Path:         "/status/200",
			ExpectStatus: 200,
		},
		{
			Name:          "json_response",
			Path:          "/json",
			ExpectStatus:  200,
			ExpectJSONKey: "slideshow",
		},
		{
			Name:              "headers",
			Path:              "/headers",
			ExpectStatus:      200,
			ExpectContentType: "application/json",
		},
		{
			Name:           "html_heading",
			Path:           "/html",
			ExpectStatus:   200,
			ExpectSelector: "h1",
		},
	}
}

// FromConfig converts checks declared in the suite file
func FromConfig(cfgs []config.CheckConfig) []Spec {
	specs := make([]Spec, 0, len(cfgs))
	for _, c := range cfgs {
		specs = append(specs, Spec{
			Name:              c.Name,
			Path:              c.Path,
			ExpectStatus:      c.ExpectStatus,
			ExpectJSONKey:     c.ExpectJSONKey,
			ExpectContentType: c.ExpectContentType,
			ExpectSelector:    c.ExpectSelector,
		})
	}
	return specs
}

// Run fetches the check's path and evaluates the response
func (s Spec) Run(ctx context.Context, client apiclient.Client) error {
	resp, err := client.Get(ctx, s.Path)
	if err != nil {
		return err
	}
	return s.Evaluate(resp)
}

// Evaluate applies every expectation to resp
func (s Spec) Evaluate(resp *apiclient.Response) error {
	wantStatus := s.ExpectStatus
	if wantStatus == 0 {
		wantStatus = 200
	}
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%w: %s: API should return status %d, got %d", models.ErrAssertionFailed, s.Name, wantStatus, resp.StatusCode)
	}

	if s.ExpectContentType != "" && !strings.Contains(resp.ContentType(), strings.ToLower(s.ExpectContentType)) {
		return fmt.Errorf("%w: %s: expected content type %q, got %q", models.ErrAssertionFailed, s.Name, s.ExpectContentType, resp.ContentType())
	}

	if s.ExpectJSONKey != "" {
		var data map[string]any
		if err := resp.JSON(&data); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		if _, ok := data[s.ExpectJSONKey]; !ok {
			return fmt.Errorf("%w: %s: response should contain %q key", models.ErrAssertionFailed, s.Name, s.ExpectJSONKey)
		}
	}

	if s.ExpectSelector != "" {
		if err := expect.HasSelector(string(resp.Body), s.ExpectSelector); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
	}

	return nil
}
