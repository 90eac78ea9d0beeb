// Package scenario is the catalogue of browser checks run against public sites.
package scenario

import (
	"fmt"
	"sort"

	"github.com/themizzi/sitecheck/internal/config"
	"github.com/themizzi/sitecheck/internal/session"
)

// Tags used to select scenarios
const (
	TagSlow        = "slow"
	TagWeb         = "web"
	TagMobile      = "mobile"
	TagPerformance = "performance"
	TagLocal       = "local"
)

// Scenario is one browser check
type Scenario struct {
	Name      string
	Tags      []string
	Overrides []config.Override
	Run       func(page *session.Page, targets config.TargetsConfig) error
}

// HasTag reports whether the scenario carries tag
func (s Scenario) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// All returns every scenario in catalogue order
func All() []Scenario {
	return []Scenario{
		{Name: "google_search", Tags: []string{TagSlow, TagWeb}, Run: GoogleSearch},
		{Name: "github_search", Tags: []string{TagSlow, TagWeb}, Run: GitHubSearch},
		{Name: "form_submission", Tags: []string{TagSlow, TagWeb, TagLocal}, Run: FormSubmission},
		{Name: "screenshot", Tags: []string{TagSlow, TagWeb, TagLocal}, Run: Screenshot},
		{Name: "network_interception", Tags: []string{TagSlow, TagWeb, TagLocal}, Run: NetworkInterception},
		{Name: "mobile_viewport", Tags: []string{TagSlow, TagMobile}, Run: MobileViewport},
		{
			Name:      "page_load_performance",
			Tags:      []string{TagSlow, TagPerformance, TagLocal},
			Overrides: []config.Override{config.WithoutVideo()},
			Run:       PageLoadPerformance,
		},
		{
			Name:      "multiple_requests_performance",
			Tags:      []string{TagSlow, TagPerformance, TagLocal},
			Overrides: []config.Override{config.WithoutVideo()},
			Run:       MultipleRequestsPerformance,
		},
	}
}

// Names returns the catalogue names in sorted order
func Names() []string {
	all := All()
	names := make([]string, 0, len(all))
	for _, s := range all {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// ByName looks a scenario up by name
func ByName(name string) (Scenario, error) {
	for _, s := range All() {
		if s.Name == name {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("unknown scenario %q", name)
}

// Select returns the named scenarios, or the whole catalogue when names is empty,
// keeping only those carrying every tag in tags.
func Select(names, tags []string) ([]Scenario, error) {
	candidates := All()
	if len(names) > 0 {
		candidates = candidates[:0:0]
		for _, name := range names {
			s, err := ByName(name)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, s)
		}
	}

	selected := []Scenario{}
	for _, s := range candidates {
		keep := true
		for _, tag := range tags {
			if !s.HasTag(tag) {
				keep = false
				break
			}
		}
		if keep {
			selected = append(selected, s)
		}
	}
	return selected, nil
}
