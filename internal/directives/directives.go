// Package directives implements the per-document YAML-version flag and
// tag-handle table that the deserializer builds while consuming %YAML/%TAG
// directive tokens, and that the resolver consults to expand tag handles.
//
// The handle table covers named handles and the duplicate-directive
// rejection as a reusable type, rather than the inline checks a combined
// scan-and-parse loop might fold into its directive-fetch path.
package directives

import "fmt"

// Version is the document's effective YAML version.
type Version struct {
	Major, Minor int8
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

var (
	V1_1 = Version{1, 1}
	V1_2 = Version{1, 2}
)

const defaultSecondaryPrefix = "tag:yaml.org,2002:"

// Set holds one document's directive state. New returns the state of a
// document that saw no directives at all (version 1.2, default handles); the
// zero value has a zero Version and empty handle prefixes.
type Set struct {
	versionSet bool
	Version    Version

	primarySet bool
	primary    string

	secondarySet bool
	secondary    string

	named map[string]string
}

// New returns a Set with YAML 1.2 defaults and the standard "!"/"!!" handles.
func New() *Set {
	return &Set{
		Version:   V1_2,
		primary:   "!",
		secondary: defaultSecondaryPrefix,
	}
}

// SetVersion records a %YAML directive. Returns an error if a version was
// already set for this document, or if the version is unsupported (only
// 1.1 and 1.2 are accepted).
func (s *Set) SetVersion(major, minor int8) error {
	if s.versionSet {
		return fmt.Errorf("duplicate %%YAML directive")
	}
	if major != 1 || (minor != 1 && minor != 2) {
		return fmt.Errorf("unsupported YAML version %d.%d", major, minor)
	}
	s.versionSet = true
	if minor == 1 {
		s.Version = V1_1
	} else {
		s.Version = V1_2
	}
	return nil
}

// SetHandle records a %TAG directive for handle ("!", "!!", or "!name!").
func (s *Set) SetHandle(handle, prefix string) error {
	switch {
	case handle == "!":
		if s.primarySet {
			return fmt.Errorf("duplicate %%TAG directive for primary handle")
		}
		s.primarySet = true
		s.primary = prefix
	case handle == "!!":
		if s.secondarySet {
			return fmt.Errorf("duplicate %%TAG directive for secondary handle")
		}
		s.secondarySet = true
		s.secondary = prefix
	default:
		name := handle
		if len(name) >= 2 && name[0] == '!' && name[len(name)-1] == '!' {
			name = name[1 : len(name)-1]
		}
		if s.named == nil {
			s.named = make(map[string]string)
		}
		if _, ok := s.named[name]; ok {
			return fmt.Errorf("duplicate %%TAG directive for handle %q", handle)
		}
		s.named[name] = prefix
	}
	return nil
}

// PrimaryPrefix implements resolve.Handles.
func (s *Set) PrimaryPrefix() string { return s.primary }

// SecondaryPrefix implements resolve.Handles.
func (s *Set) SecondaryPrefix() string { return s.secondary }

// NamedPrefix implements resolve.Handles.
func (s *Set) NamedPrefix(name string) (string, bool) {
	p, ok := s.named[name]
	return p, ok
}
