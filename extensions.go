package vkcore

import "slices"

const (
	// PortabilitySubset must be enabled on devices that advertise it (MoltenVK).
	PortabilitySubset      = "VK_KHR_portability_subset"
	portabilityEnumeration = "VK_KHR_portability_enumeration"
)

type Extensions interface {
	HasRequired() (bool, []string)
	HasWanted() (bool, []string)
	Enabled() []string
}

//ExtensionSet negotiates one category of names (instance extensions, layers or
//device extensions) against what the platform actually reports
type ExtensionSet struct {
	wanted   []string
	required []string
	actual   []string
}

func NewExtensionSet(wanted, required, actual []string) *ExtensionSet {
	return &ExtensionSet{
		wanted:   wanted,
		required: required,
		actual:   actual,
	}
}

// HasRequired reports whether every required name is available, along with
// the missing ones.
func (e *ExtensionSet) HasRequired() (bool, []string) {
	missing := missingFrom(e.required, e.actual)
	return len(missing) == 0, missing
}

func (e *ExtensionSet) HasWanted() (bool, []string) {
	missing := missingFrom(e.wanted, e.actual)
	return len(missing) == 0, missing
}

func (e *ExtensionSet) Has(name string) bool {
	return slices.Contains(e.actual, name)
}

// Enabled lists the names to enable: every required name and the wanted names
// that are available, without duplicates.
func (e *ExtensionSet) Enabled() []string {
	names := make([]string, 0, len(e.required)+len(e.wanted))
	for _, name := range e.required {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	for _, name := range e.wanted {
		if e.Has(name) && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

func missingFrom(names, actual []string) []string {
	var missing []string
	for _, name := range names {
		if !slices.Contains(actual, name) {
			missing = append(missing, name)
		}
	}
	return missing
}
