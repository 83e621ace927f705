// Package solution describes the solution as the host runner sees it: its
// coordinates, citation record, declared arguments and the conda
// environment the host provisions before install and run are invoked.
package solution

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

//go:embed solution.yml
var manifest []byte

// Citation is a single reference the solution asks users to cite.
type Citation struct {
	Text string `yaml:"text"`
	DOI  string `yaml:"doi,omitempty"`
}

// Environment is the conda environment the host creates for the solution.
type Environment struct {
	Channels     []string `yaml:"channels"`
	Dependencies []string `yaml:"dependencies"`
}

// Dependencies groups everything the host has to provision.
type Dependencies struct {
	Environment Environment `yaml:"environment"`
}

// Solution holds the declared metadata of the solution.
type Solution struct {
	Group            string       `yaml:"group"`
	Name             string       `yaml:"name"`
	Version          string       `yaml:"version"`
	SolutionCreators []string     `yaml:"solution_creators,omitempty"`
	Title            string       `yaml:"title"`
	Description      string       `yaml:"description"`
	Tags             []string     `yaml:"tags,omitempty"`
	Cite             []Citation   `yaml:"cite,omitempty"`
	AlbumAPIVersion  string       `yaml:"album_api_version"`
	Args             []ArgSpec    `yaml:"args,omitempty"`
	Dependencies     Dependencies `yaml:"dependencies"`
}

// Default returns the solution manifest compiled into the binary.
func Default() (Solution, error) {
	return Parse(manifest)
}

// MustDefault is Default for callers that treat a broken embedded manifest as a bug.
func MustDefault() Solution {
	s, err := Default()
	if err != nil {
		panic(fmt.Sprintf("solution: embedded manifest: %v", err))
	}
	return s
}

// Parse decodes and validates a YAML manifest.
func Parse(data []byte) (Solution, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Solution{}, fmt.Errorf("solution: manifest is empty")
	}
	var s Solution
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Solution{}, fmt.Errorf("solution: decode manifest: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Solution{}, err
	}
	return s, nil
}

// Validate checks the manifest for the fields the host relies on.
func (s Solution) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Group) == "" {
		errs = append(errs, fmt.Errorf("group is required"))
	}
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, fmt.Errorf("name is required"))
	}
	if !validVersion(s.Version) {
		errs = append(errs, fmt.Errorf("version %q is not a semantic version", s.Version))
	}
	if !validVersion(s.AlbumAPIVersion) {
		errs = append(errs, fmt.Errorf("album_api_version %q is not a semantic version", s.AlbumAPIVersion))
	}
	seen := make(map[string]bool, len(s.Args))
	for _, arg := range s.Args {
		if err := arg.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[arg.Name] {
			errs = append(errs, fmt.Errorf("argument %q declared twice", arg.Name))
		}
		seen[arg.Name] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("solution: invalid manifest: %w", errors.Join(errs...))
	}
	return nil
}

// Coordinates returns the group:name:version identifier.
func (s Solution) Coordinates() string {
	return fmt.Sprintf("%s:%s:%s", s.Group, s.Name, s.Version)
}

// RequiresAPI reports whether a host speaking hostVersion can run the solution.
func (s Solution) RequiresAPI(hostVersion string) (bool, error) {
	if !validVersion(hostVersion) {
		return false, fmt.Errorf("solution: host api version %q is not a semantic version", hostVersion)
	}
	return semver.Compare(canonical(hostVersion), canonical(s.AlbumAPIVersion)) >= 0, nil
}

// EnvironmentFile renders the conda environment file handed to the host.
func (s Solution) EnvironmentFile() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s.Dependencies.Environment); err != nil {
		return nil, fmt.Errorf("solution: encode environment: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("solution: encode environment: %w", err)
	}
	return buf.Bytes(), nil
}

func validVersion(v string) bool {
	return strings.TrimSpace(v) != "" && semver.IsValid(canonical(v))
}

// semver wants a leading "v"; manifests are written without one.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
