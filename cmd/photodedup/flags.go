package main

import (
	"fmt"
	"strings"

	"github.com/jamesainslie/photodedup/pkg/photodedup/config"
	"github.com/jamesainslie/photodedup/pkg/photodedup/filter"
)

// Flags that only shape a single run and have no config key.
var (
	typeGroups  string
	templateStr string
	reverse     bool
	showImages  bool
)

// buildFilter creates a filter.Filter from the configuration. A --type
// selection replaces the configured extensions; with neither, the image
// group is used.
func buildFilter(cfg *config.Config, types string) (*filter.Filter, error) {
	opts := []filter.Option{
		filter.WithIgnorePrefixes(cfg.Scan.IgnorePrefixes...),
	}
	if len(cfg.Scan.Extensions) > 0 {
		opts = append(opts, filter.WithExtensions(cfg.Scan.Extensions...))
	}

	if types != "" {
		groups := parseCommaSeparated(types)
		for _, g := range groups {
			if _, ok := filter.TypeGroups[strings.ToLower(g)]; !ok {
				return nil, fmt.Errorf("unknown type group %q: available groups are %v", g, filter.TypeGroupNames())
			}
		}
		opts = append(opts, filter.WithTypeGroups(groups...))
	}

	if len(cfg.Scan.Exclude) > 0 {
		opts = append(opts, filter.WithExclude(cfg.Scan.Exclude...))
	}

	minSize, err := cfg.MinSizeBytes()
	if err != nil {
		return nil, err
	}
	if minSize > 0 {
		opts = append(opts, filter.WithMinSize(minSize))
	}

	return filter.New(opts...)
}

// sortOrder resolves the group order. Size and count sort largest first by
// default and path sorts A-Z; --reverse flips the natural order.
func sortOrder(field string, reversed bool) (filter.SortField, bool, error) {
	if field == "" {
		field = config.DefaultSort
	}
	sortField, err := filter.ParseSortField(field)
	if err != nil {
		return filter.SortSize, false, err
	}

	descending := !reversed
	if sortField == filter.SortPath {
		descending = reversed
	}
	return sortField, descending, nil
}

// parseCommaSeparated splits a comma-separated string and trims whitespace.
func parseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
