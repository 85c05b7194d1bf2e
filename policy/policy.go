// Package policy maps document types to the ordered approval steps a
// submitted version has to collect.
package policy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownDocumentType = errors.New("unknown document type")

// Step is one slot of an approval chain.
type Step struct {
	StepNo     int    `json:"step_no" mapstructure:"step_no"`
	Role       string `json:"role" mapstructure:"role"`
	IsFinal    bool   `json:"is_final" mapstructure:"is_final"`
	IsOptional bool   `json:"is_optional" mapstructure:"is_optional"`
}

type Policy struct {
	DocType string `json:"doc_type"`
	Steps   []Step `json:"steps"`
}

// Registry is an immutable doc type -> policy table. Build it once and hand
// it to whoever needs lookups.
type Registry struct {
	policies map[string][]Step
}

func NewRegistry(policies ...Policy) (*Registry, error) {
	r := &Registry{policies: make(map[string][]Step, len(policies))}
	for _, p := range policies {
		docType := normalize(p.DocType)
		if docType == "" {
			return nil, errors.New("policy: empty document type")
		}
		if _, dup := r.policies[docType]; dup {
			return nil, fmt.Errorf("policy: duplicate document type %s", docType)
		}
		steps, err := normalizeSteps(docType, p.Steps)
		if err != nil {
			return nil, err
		}
		r.policies[docType] = steps
	}
	return r, nil
}

// StepsFor returns a copy of the ordered steps configured for docType.
func (r *Registry) StepsFor(docType string) ([]Step, error) {
	steps, ok := r.policies[normalize(docType)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocumentType, docType)
	}
	out := make([]Step, len(steps))
	copy(out, steps)
	return out, nil
}

// DocTypes lists configured document types in sorted order.
func (r *Registry) DocTypes() []string {
	out := make([]string, 0, len(r.policies))
	for k := range r.policies {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RequiredSteps filters steps down to the ones that block completion.
func RequiredSteps(steps []Step) []Step {
	var out []Step
	for _, s := range steps {
		if !s.IsOptional {
			out = append(out, s)
		}
	}
	return out
}

func normalize(docType string) string {
	return strings.ToUpper(strings.TrimSpace(docType))
}

// normalizeSteps sorts and validates a chain. Anything configured after the
// final step cannot block completion and is demoted to optional.
func normalizeSteps(docType string, in []Step) ([]Step, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("policy %s: no steps", docType)
	}
	steps := make([]Step, len(in))
	copy(steps, in)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].StepNo < steps[j].StepNo })

	finalSeen := false
	for i := range steps {
		s := &steps[i]
		s.Role = strings.TrimSpace(s.Role)
		if s.Role == "" {
			return nil, fmt.Errorf("policy %s: step %d has no role", docType, s.StepNo)
		}
		if s.StepNo <= 0 {
			return nil, fmt.Errorf("policy %s: step numbers start at 1", docType)
		}
		if i > 0 && steps[i-1].StepNo == s.StepNo {
			return nil, fmt.Errorf("policy %s: duplicate step %d", docType, s.StepNo)
		}
		if s.IsFinal {
			if finalSeen {
				return nil, fmt.Errorf("policy %s: more than one final step", docType)
			}
			if s.IsOptional {
				return nil, fmt.Errorf("policy %s: final step %d cannot be optional", docType, s.StepNo)
			}
			finalSeen = true
			continue
		}
		if finalSeen {
			s.IsOptional = true
		}
	}
	if len(RequiredSteps(steps)) == 0 {
		return nil, fmt.Errorf("policy %s: no required step", docType)
	}
	return steps, nil
}
