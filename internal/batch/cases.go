// Package batch analyzes many code/traceback pairs read from YAML case files.
package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
)

// ErrNoCases is returned when the patterns matched no case at all.
var ErrNoCases = errors.New("no cases found")

// Case is one entry of a case file.
//
//	name: empty-average
//	code: |
//	  def avg(xs): ...
//	error: |
//	  Traceback (most recent call last): ...
type Case struct {
	Name      string `yaml:"name"`
	Code      string `yaml:"code"`
	Traceback string `yaml:"error"`
	// Source is the file the case was read from.
	Source string `yaml:"-"`
}

// caseFile accepts either a single case or a list under "cases".
type caseFile struct {
	Case  `yaml:",inline"`
	Cases []Case `yaml:"cases"`
}

// LoadCases expands each pattern (doublestar syntax, e.g. "cases/**/*.yaml")
// and reads every matching file. Files are read in sorted order and each
// file's cases keep their order. A pattern without glob characters must name
// an existing file.
func LoadCases(patterns ...string) ([]Case, error) {
	seen := make(map[string]struct{})
	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		if len(matches) == 0 && !hasMeta(pattern) {
			return nil, fmt.Errorf("case file %s: %w", pattern, os.ErrNotExist)
		}
		sort.Strings(matches)
		for _, m := range matches {
			clean := filepath.Clean(m)
			if _, dup := seen[clean]; dup {
				continue
			}
			seen[clean] = struct{}{}
			files = append(files, clean)
		}
	}

	var cases []Case
	for _, f := range files {
		fc, err := readCaseFile(f)
		if err != nil {
			return nil, err
		}
		cases = append(cases, fc...)
	}
	if len(cases) == 0 {
		return nil, ErrNoCases
	}
	return cases, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

func readCaseFile(path string) ([]Case, error) {
	// #nosec G304 - path comes from user-supplied patterns
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var fc caseFile
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	list := fc.Cases
	if fc.Code != "" || fc.Traceback != "" {
		list = append([]Case{fc.Case}, list...)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i := range list {
		list[i].Source = path
		if list[i].Name == "" {
			if len(list) == 1 {
				list[i].Name = stem
			} else {
				list[i].Name = fmt.Sprintf("%s#%d", stem, i+1)
			}
		}
	}
	return list, nil
}
