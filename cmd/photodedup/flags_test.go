package main

import (
	"errors"
	"slices"
	"testing"

	"github.com/jamesainslie/photodedup/pkg/photodedup/config"
	"github.com/jamesainslie/photodedup/pkg/photodedup/filter"
)

func testConfig() *config.Config {
	return &config.Config{
		Scan: config.ScanConfig{
			Extensions:     []string{".jpg", ".png"},
			IgnorePrefixes: []string{"_", "."},
			MinSize:        "0",
		},
	}
}

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*config.Config)
		types      string
		wantExts   []string
		wantMin    int64
		wantIgnore []string
		wantErr    bool
	}{
		{
			name:       "configured values",
			wantExts:   []string{".jpg", ".png"},
			wantIgnore: []string{"_", "."},
		},
		{
			name:       "type group replaces extensions",
			types:      "raw",
			wantExts:   filter.TypeGroups["raw"],
			wantIgnore: []string{"_", "."},
		},
		{
			name:       "no extensions falls back to image group",
			mutate:     func(c *config.Config) { c.Scan.Extensions = nil },
			wantExts:   filter.TypeGroups[filter.DefaultTypeGroup],
			wantIgnore: []string{"_", "."},
		},
		{
			name:    "unknown type group",
			types:   "image,video",
			wantErr: true,
		},
		{
			name:       "min size",
			mutate:     func(c *config.Config) { c.Scan.MinSize = "1K" },
			wantExts:   []string{".jpg", ".png"},
			wantMin:    1024,
			wantIgnore: []string{"_", "."},
		},
		{
			name:    "invalid min size",
			mutate:  func(c *config.Config) { c.Scan.MinSize = "lots" },
			wantErr: true,
		},
		{
			name:    "invalid exclude pattern",
			mutate:  func(c *config.Config) { c.Scan.Exclude = []string{"[unclosed"} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			f, err := buildFilter(cfg, tt.types)
			if tt.wantErr {
				if err == nil {
					t.Fatal("buildFilter() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildFilter() error = %v", err)
			}

			if !slices.Equal(f.Extensions, tt.wantExts) {
				t.Errorf("Extensions = %v, want %v", f.Extensions, tt.wantExts)
			}
			if f.MinSize != tt.wantMin {
				t.Errorf("MinSize = %d, want %d", f.MinSize, tt.wantMin)
			}
			if !slices.Equal(f.IgnorePrefixes, tt.wantIgnore) {
				t.Errorf("IgnorePrefixes = %v, want %v", f.IgnorePrefixes, tt.wantIgnore)
			}
		})
	}
}

func TestSortOrder(t *testing.T) {
	tests := []struct {
		field          string
		reversed       bool
		wantField      filter.SortField
		wantDescending bool
	}{
		{field: "", wantField: filter.SortSize, wantDescending: true},
		{field: "size", wantField: filter.SortSize, wantDescending: true},
		{field: "size", reversed: true, wantField: filter.SortSize, wantDescending: false},
		{field: "count", wantField: filter.SortCount, wantDescending: true},
		{field: "count", reversed: true, wantField: filter.SortCount, wantDescending: false},
		{field: "path", wantField: filter.SortPath, wantDescending: false},
		{field: "path", reversed: true, wantField: filter.SortPath, wantDescending: true},
		{field: "PATH", wantField: filter.SortPath, wantDescending: false},
	}

	for _, tt := range tests {
		got, desc, err := sortOrder(tt.field, tt.reversed)
		if err != nil {
			t.Errorf("sortOrder(%q, %v) error = %v", tt.field, tt.reversed, err)
			continue
		}
		if got != tt.wantField || desc != tt.wantDescending {
			t.Errorf("sortOrder(%q, %v) = (%v, %v), want (%v, %v)",
				tt.field, tt.reversed, got, desc, tt.wantField, tt.wantDescending)
		}
	}

	if _, _, err := sortOrder("age", false); !errors.Is(err, filter.ErrInvalidSortField) {
		t.Errorf("sortOrder(age) error = %v, want ErrInvalidSortField", err)
	}
}

func TestParseCommaSeparated(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{input: "", want: nil},
		{input: "image", want: []string{"image"}},
		{input: "image, raw", want: []string{"image", "raw"}},
		{input: " web ,, all ", want: []string{"web", "all"}},
	}

	for _, tt := range tests {
		got := parseCommaSeparated(tt.input)
		if !slices.Equal(got, tt.want) {
			t.Errorf("parseCommaSeparated(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSelectFormatter(t *testing.T) {
	if _, err := selectFormatter("pretty", ""); err != nil {
		t.Errorf("selectFormatter(pretty) error = %v", err)
	}
	if _, err := selectFormatter("", ""); err != nil {
		t.Errorf("selectFormatter(\"\") error = %v", err)
	}
	if _, err := selectFormatter("template", ""); err == nil {
		t.Error("selectFormatter(template) without template: error = nil, want error")
	}
	if _, err := selectFormatter("template", "{{.Source}}"); err != nil {
		t.Errorf("selectFormatter(template) error = %v", err)
	}
	if _, err := selectFormatter("xml", ""); err == nil {
		t.Error("selectFormatter(xml) error = nil, want error")
	}
}
