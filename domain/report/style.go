package report

import (
	"sort"

	"tabstat/domain/core"
)

// Style is a resolved, flat token -> value mapping (aliases already expanded).
type Style struct {
	Name   string            `json:"name"`
	Tokens map[string]string `json:"tokens"`
}

// Resolve returns the value of a token.
func (s Style) Resolve(token string) (string, error) {
	v, ok := s.Tokens[token]
	if !ok || v == "" {
		return "", core.NewStyleError("token %q not defined by style %q", token, s.Name)
	}
	return v, nil
}

// ResolveAll resolves every token, failing on the first one missing.
func (s Style) ResolveAll(tokens ...string) (map[string]string, error) {
	out := make(map[string]string, len(tokens))
	for _, t := range tokens {
		v, err := s.Resolve(t)
		if err != nil {
			return nil, err
		}
		out[t] = v
	}
	return out, nil
}

// TokenNames lists the defined tokens in sorted order.
func (s Style) TokenNames() []string {
	names := make([]string, 0, len(s.Tokens))
	for k := range s.Tokens {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
