package store

import (
	"sort"
)

// ProjectGroup is one project inside a country, labeled "PROJECT - NAME",
// holding its sorted record identifiers.
type ProjectGroup struct {
	Label   string   `json:"label"`
	Records []string `json:"records"`
}

// CountryGroup is the top level of the browsing tree.
type CountryGroup struct {
	Country  string         `json:"country"`
	Projects []ProjectGroup `json:"projects"`
}

// BuildNavigation groups documents by country, then by project, each leaf a
// sorted list of record identifiers. Countries and project labels are
// sorted lexicographically so renders are stable. Pure transform, safe to
// recompute on every request.
func BuildNavigation(docs []DocumentInfo) []CountryGroup {
	byCountry := make(map[string]map[string][]string)
	for _, doc := range docs {
		label := doc.Project + " - " + doc.Name
		if byCountry[doc.Country] == nil {
			byCountry[doc.Country] = make(map[string][]string)
		}
		record := doc.RecordID()
		if !contains(byCountry[doc.Country][label], record) {
			byCountry[doc.Country][label] = append(byCountry[doc.Country][label], record)
		}
	}

	countries := make([]string, 0, len(byCountry))
	for country := range byCountry {
		countries = append(countries, country)
	}
	sort.Strings(countries)

	nav := make([]CountryGroup, 0, len(countries))
	for _, country := range countries {
		labels := make([]string, 0, len(byCountry[country]))
		for label := range byCountry[country] {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		projects := make([]ProjectGroup, 0, len(labels))
		for _, label := range labels {
			records := byCountry[country][label]
			sort.Strings(records)
			projects = append(projects, ProjectGroup{Label: label, Records: records})
		}
		nav = append(nav, CountryGroup{Country: country, Projects: projects})
	}

	return nav
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
