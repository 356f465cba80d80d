package config

import (
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/williamray70/localbridge/internal/errs"
)

// Filesystem layout.
const (
	TranslateGlob = "channels/*.yaml"
	InboundGlob   = "channels/Inbound/*.yaml"
	OutboundGlob  = "channels/Outbound/*.yaml"
	StatsFile     = "channel-stats.json"
	TransformerDir = "transformers"
)

func listYAML(confRoot, glob string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(confRoot, glob))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// LoadTranslateConfigs scans confRoot/channels/*.yaml. Per-file errors are
// collected and returned alongside whatever configs loaded successfully —
// one bad file never blocks the others.
func LoadTranslateConfigs(confRoot string) ([]*TranslateConfig, []error) {
	files, err := listYAML(confRoot, TranslateGlob)
	if err != nil {
		return nil, []error{err}
	}

	var cfgs []*TranslateConfig
	var errsOut []error
	for _, f := range files {
		var c TranslateConfig
		if err := decodeFile(f, &c); err != nil {
			errsOut = append(errsOut, &errs.ConfigError{File: f, Reason: "decode", Cause: err})
			continue
		}
		if err := c.validate(); err != nil {
			errsOut = append(errsOut, &errs.ConfigError{Channel: c.Name, File: f, Reason: "validate", Cause: err})
			continue
		}
		cfgs = append(cfgs, &c)
	}
	return cfgs, errsOut
}

// LoadInboundConfigs scans confRoot/channels/Inbound/*.yaml.
func LoadInboundConfigs(confRoot string) ([]*InboundConfig, []error) {
	files, err := listYAML(confRoot, InboundGlob)
	if err != nil {
		return nil, []error{err}
	}

	var cfgs []*InboundConfig
	var errsOut []error
	for _, f := range files {
		var c InboundConfig
		if err := decodeFile(f, &c); err != nil {
			errsOut = append(errsOut, &errs.ConfigError{File: f, Reason: "decode", Cause: err})
			continue
		}
		if err := c.validate(); err != nil {
			errsOut = append(errsOut, &errs.ConfigError{Channel: c.Name, File: f, Reason: "validate", Cause: err})
			continue
		}
		cfgs = append(cfgs, &c)
	}
	return cfgs, errsOut
}

// LoadOutboundConfigs scans confRoot/channels/Outbound/*.yaml.
func LoadOutboundConfigs(confRoot string) ([]*OutboundConfig, []error) {
	files, err := listYAML(confRoot, OutboundGlob)
	if err != nil {
		return nil, []error{err}
	}

	var cfgs []*OutboundConfig
	var errsOut []error
	for _, f := range files {
		var c OutboundConfig
		if err := decodeFile(f, &c); err != nil {
			errsOut = append(errsOut, &errs.ConfigError{File: f, Reason: "decode", Cause: err})
			continue
		}
		if err := c.validate(); err != nil {
			errsOut = append(errsOut, &errs.ConfigError{Channel: c.Name, File: f, Reason: "validate", Cause: err})
			continue
		}
		cfgs = append(cfgs, &c)
	}
	return cfgs, errsOut
}

func decodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}

// ResolveScriptPath resolves a WRAPI script path: relative to
// the YAML directory first, then confRoot/transformers/, then CWD.
func ResolveScriptPath(confRoot, yamlDir, script string) (string, error) {
	candidates := []string{
		filepath.Join(yamlDir, script),
		filepath.Join(confRoot, TransformerDir, script),
		script,
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", os.ErrNotExist
}
