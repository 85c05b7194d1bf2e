package policy

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// LoadRegistry reads policies from a YAML file shaped as
//
//	policies:
//	  SDD:
//	    - {step_no: 1, role: Architect}
//	    - {step_no: 2, role: Architect, is_final: true}
//
// An empty path or a missing file yields the default registry.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return DefaultRegistry(), nil
		}
		return nil, fmt.Errorf("read policy file %s: %w", path, err)
	}

	// viper lower-cases keys; NewRegistry upper-cases them back.
	var raw map[string][]Step
	if err := v.UnmarshalKey("policies", &raw); err != nil {
		return nil, fmt.Errorf("decode policy file %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("policy file %s: no policies defined", path)
	}

	policies := make([]Policy, 0, len(raw))
	for docType, steps := range raw {
		policies = append(policies, Policy{DocType: docType, Steps: steps})
	}
	return NewRegistry(policies...)
}
