package installer

import (
	"fmt"
	"sort"
	"strings"
)

// InstallState collects the answers as environment variables.
type InstallState struct {
	EnvVars map[string]string
}

func NewInstallState() *InstallState {
	return &InstallState{
		EnvVars: make(map[string]string),
	}
}

func (s *InstallState) Get(key string) string {
	return s.EnvVars[key]
}

// Render returns the answers as a sorted .env body. Empty values are skipped.
func (s *InstallState) Render() string {
	keys := make([]string, 0, len(s.EnvVars))
	for k, v := range s.EnvVars {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := s.EnvVars[k]
		if strings.ContainsAny(v, " \t#\"'") {
			v = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(&b, "%s=%s\n", k, v)
	}
	return b.String()
}
