package dataset

import "fmt"

// PolicyKind selects one of the three label-inclusion policies applied to a
// source directory.
type PolicyKind int

const (
	// Unrestricted keeps any detection whose label is in the catalog.
	Unrestricted PolicyKind = iota
	// SingleClass forces every detection in the group to one class,
	// regardless of what the detector returned.
	SingleClass
	// RequiredPair keeps only detections matching one of two classes and
	// warns when either is missing from the final label file.
	RequiredPair
)

// RequiredPairSpec declares that images from one source directory must
// contain both classes.
type RequiredPairSpec struct {
	Group  string
	ClassA string
	ClassB string
}

// LabelPolicy is the label-inclusion rule for one source group.
type LabelPolicy struct {
	Kind   PolicyKind
	Class  string // SingleClass only
	ClassA string // RequiredPair only
	ClassB string // RequiredPair only
}

// PolicyFor resolves the policy for a source directory name: a directory
// named after a catalog class is single-class (unless a required pair claims
// it), a directory with a required-pair declaration keeps only that pair, and
// anything else is unrestricted.
func PolicyFor(group string, catalog *Catalog, pairs []RequiredPairSpec) LabelPolicy {
	for _, p := range pairs {
		if p.Group == group {
			return LabelPolicy{Kind: RequiredPair, ClassA: p.ClassA, ClassB: p.ClassB}
		}
	}
	if catalog.Contains(group) {
		return LabelPolicy{Kind: SingleClass, Class: group}
	}
	return LabelPolicy{Kind: Unrestricted}
}

// ClassesToRequest returns the class subset to ask the detector for under
// this policy.
func (p LabelPolicy) ClassesToRequest(catalog *Catalog) []string {
	switch p.Kind {
	case SingleClass:
		return []string{p.Class}
	case RequiredPair:
		return []string{p.ClassA, p.ClassB}
	default:
		return catalog.Names()
	}
}

// Resolve maps a detector-returned label to the label to record, or false
// when the detection must be dropped. SingleClass overrides the detector's
// label; RequiredPair keeps only its two classes; Unrestricted keeps any
// catalog class.
func (p LabelPolicy) Resolve(detected string, catalog *Catalog) (string, bool) {
	switch p.Kind {
	case SingleClass:
		return p.Class, true
	case RequiredPair:
		if detected == p.ClassA || detected == p.ClassB {
			return detected, true
		}
		return "", false
	default:
		if catalog.Contains(detected) {
			return detected, true
		}
		return "", false
	}
}

// ValidatePairs checks required-pair declarations against the catalog and the
// set of scanned group names. Any violation is a configuration error and
// aborts the run before processing starts.
func ValidatePairs(pairs []RequiredPairSpec, catalog *Catalog, groups map[string]bool) error {
	for _, p := range pairs {
		if !catalog.Contains(p.ClassA) || !catalog.Contains(p.ClassB) {
			return fmt.Errorf("required pair for %q names unknown class (%q, %q); known classes: %v",
				p.Group, p.ClassA, p.ClassB, catalog.Names())
		}
		if !groups[p.Group] {
			return fmt.Errorf("required pair directory %q does not match any input directory", p.Group)
		}
	}
	return nil
}
