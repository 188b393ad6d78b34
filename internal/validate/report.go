package validate

import (
	"encoding/json"
	"sort"

	"github.com/williampepple1/catalog-crawler/internal/config"
)

// Profile is the validation setup of one site.
type Profile struct {
	Site           string
	ReportKey      string
	MandatoryKeys  []string
	DerivedMetrics bool
}

// ProfilesFrom builds one profile per configured site, ordered by site name.
func ProfilesFrom(sites map[string]*config.SiteConfig) []Profile {
	names := make([]string, 0, len(sites))
	for name := range sites {
		names = append(names, name)
	}
	sort.Strings(names)

	profiles := make([]Profile, 0, len(names))
	for _, name := range names {
		v := sites[name].Validation
		profiles = append(profiles, Profile{
			Site:           name,
			ReportKey:      v.ReportKey,
			MandatoryKeys:  v.MandatoryKeys,
			DerivedMetrics: v.DerivedMetrics,
		})
	}
	return profiles
}

// SiteReport holds the results for one site. RateDiff and Variants are only
// set for profiles with derived metrics.
type SiteReport struct {
	Key            string
	InvalidEntries []any
	RateDiff       map[string]RateDifference
	Variants       map[string][]VariantCheck
}

// Report is the consolidated validation result. Sites whose records could
// not be read or checked appear only in Errors.
type Report struct {
	Sites  []SiteReport
	Errors map[string]string
}

// Loader returns the persisted records of a site.
type Loader func(site string) ([]any, error)

// Build validates every profile in turn. A failing site never affects the
// others.
func Build(profiles []Profile, load Loader) *Report {
	report := &Report{Errors: map[string]string{}}
	for _, p := range profiles {
		records, err := load(p.Site)
		if err != nil {
			report.Errors[p.ReportKey] = err.Error()
			continue
		}
		site, err := Check(p, records)
		if err != nil {
			report.Errors[p.ReportKey] = err.Error()
			continue
		}
		report.Sites = append(report.Sites, *site)
	}
	return report
}

// Check runs the checks of one profile over records.
func Check(p Profile, records []any) (*SiteReport, error) {
	invalid, err := ValidateMandatoryKeys(records, p.MandatoryKeys)
	if err != nil {
		return nil, err
	}
	site := &SiteReport{Key: p.ReportKey, InvalidEntries: invalid}
	if !p.DerivedMetrics {
		return site, nil
	}
	if site.RateDiff, err = CalculateRateDifference(records); err != nil {
		return nil, err
	}
	if site.Variants, err = CheckVariantsImagesPrices(records); err != nil {
		return nil, err
	}
	return site, nil
}

// MarshalJSON writes the report as a single object keyed
// <key>_invalid_data, <key>_rate_diff and <key>_variants, plus errors when
// any site failed.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Sites)*3+1)
	for _, s := range r.Sites {
		out[s.Key+"_invalid_data"] = map[string]any{"invalid_entries": s.InvalidEntries}
		if s.RateDiff != nil {
			out[s.Key+"_rate_diff"] = s.RateDiff
		}
		if s.Variants != nil {
			out[s.Key+"_variants"] = s.Variants
		}
	}
	if len(r.Errors) > 0 {
		out["errors"] = r.Errors
	}
	return json.Marshal(out)
}
