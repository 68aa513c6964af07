package main

import (
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/blcs-lang/blcspp/pkg/blcspp"
)

type e2eFixture struct {
	Tests []e2eCase `yaml:"tests"`
}

type e2eCase struct {
	Name           string   `yaml:"name"`
	Input          string   `yaml:"input"`
	ExpectContains []string `yaml:"expect_contains"`
	ExpectError    bool     `yaml:"expect_error"`
}

func TestEndToEndFixtures(t *testing.T) {
	raw, err := os.ReadFile("testdata/e2e.yaml")
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	var fixture e2eFixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		t.Fatalf("unmarshaling fixture: %v", err)
	}
	if len(fixture.Tests) == 0 {
		t.Fatal("fixture contained no cases")
	}

	for _, tc := range fixture.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			results, err := blcspp.PreprocessString(tc.Input, blcspp.Options{})

			if tc.ExpectError {
				if err == nil {
					t.Fatalf("expected an error, got output %q", results[0].Text)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			// The fixture's virtual entry file never "##use"s anything,
			// so it is always the sole discovered file.
			entry := results[0]
			for _, want := range tc.ExpectContains {
				if !strings.Contains(entry.Text, want) {
					t.Errorf("output %q missing expected substring %q", entry.Text, want)
				}
			}
		})
	}
}
