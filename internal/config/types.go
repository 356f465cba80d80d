// Package config loads and validates the three channel config records
// (Translate, Inbound, Outbound) from YAML, following a
// load-then-validate-then-default idiom.
package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FlexBool accepts true/false/yes/no, case-insensitive.
type FlexBool bool

// UnmarshalYAML implements yaml.Unmarshaler for FlexBool.
func (b *FlexBool) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(value.Value)) {
	case "true", "yes":
		*b = true
	case "false", "no":
		*b = false
	default:
		return fmt.Errorf("config: invalid boolean %q", value.Value)
	}
	return nil
}

// DestinationList accepts both `- path: X` block form and `- X` shorthand.
type DestinationList []string

// UnmarshalYAML implements yaml.Unmarshaler for DestinationList.
func (d *DestinationList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("config: destinations must be a list")
	}
	out := make([]string, 0, len(value.Content))
	for _, item := range value.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			out = append(out, item.Value)
		case yaml.MappingNode:
			var m struct {
				Path string `yaml:"path"`
			}
			if err := item.Decode(&m); err != nil {
				return err
			}
			out = append(out, m.Path)
		default:
			return fmt.Errorf("config: invalid destination entry")
		}
	}
	*d = out
	return nil
}

// TransformerConfig configures a Translate channel's transformation step.
type TransformerConfig struct {
	Type            string   `yaml:"type"` // "wrapi" | "java"
	Script          string   `yaml:"script,omitempty"`
	Class           string   `yaml:"class,omitempty"`
	CreateMissing   FlexBool `yaml:"createMissing"`
	ValidateProfile FlexBool `yaml:"validateProfile"`
}

// ErrorHandlingConfig configures the Translate channel's retry/error policy.
type ErrorHandlingConfig struct {
	RetryCount   int      `yaml:"retryCount"`
	RetryDelayMs int      `yaml:"retryDelayMs"`
	MoveToError  FlexBool `yaml:"moveToError"`
}

// ArchiveConfig configures the Translate/Outbound archive step.
type ArchiveConfig struct {
	Enabled  FlexBool `yaml:"enabled"`
	Compress FlexBool `yaml:"compress"`
}

// TranslateConfig is a Translate channel's full configuration.
type TranslateConfig struct {
	Name    string   `yaml:"name"`
	Enabled FlexBool `yaml:"enabled"`

	InputDir   string `yaml:"inputDir"`
	ErrorDir   string `yaml:"errorDir,omitempty"`
	ArchiveDir string `yaml:"archiveDir,omitempty"`

	Destinations DestinationList `yaml:"destinations,omitempty"`
	OutputDir    string          `yaml:"outputDir,omitempty"` // legacy mirror/alias

	InputPattern   string `yaml:"inputPattern"`
	PollIntervalMs int    `yaml:"pollIntervalMs"`
	BatchSize      int    `yaml:"batchSize"`

	Transformer   TransformerConfig   `yaml:"transformer"`
	ErrorHandling ErrorHandlingConfig `yaml:"errorHandling"`
	Archive       ArchiveConfig       `yaml:"archive"`
}

// ChannelName returns the channel's unique (per-kind) name.
func (c *TranslateConfig) ChannelName() string { return c.Name }

// IsEnabled reports whether the channel should be started by loadAndStart.
func (c *TranslateConfig) IsEnabled() bool { return bool(c.Enabled) }

// validate checks required fields and applies defaults, in place.
func (c *TranslateConfig) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(c.InputDir) == "" {
		return fmt.Errorf("inputDir is required")
	}

	// Legacy outputDir / destinations reconciliation.
	if len(c.Destinations) == 0 && c.OutputDir != "" {
		c.Destinations = DestinationList{c.OutputDir}
	}
	if len(c.Destinations) == 0 {
		return fmt.Errorf("destinations (or legacy outputDir) is required")
	}
	c.OutputDir = c.Destinations[0]

	if c.InputPattern == "" {
		c.InputPattern = "*.hl7"
	}
	if c.PollIntervalMs < 200 {
		c.PollIntervalMs = 1000
	}
	if c.BatchSize < 1 {
		c.BatchSize = 10
	}
	if c.Transformer.Type == "" {
		c.Transformer.Type = "wrapi"
	}
	return nil
}

// InboundConfig is an Inbound channel's full configuration.
type InboundConfig struct {
	Name    string   `yaml:"name"`
	Enabled FlexBool `yaml:"enabled"`

	Port       int    `yaml:"port"`
	SaveDir    string `yaml:"saveDir"`
	FilePrefix string `yaml:"filePrefix,omitempty"`
	FileSuffix string `yaml:"fileSuffix"`
	AutoAck    FlexBool `yaml:"autoAck"`
}

// ChannelName returns the channel's unique (per-kind) name.
func (c *InboundConfig) ChannelName() string { return c.Name }

// IsEnabled reports whether the channel should be started by loadAndStart.
func (c *InboundConfig) IsEnabled() bool { return bool(c.Enabled) }

func (c *InboundConfig) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be in [1,65535], got %d", c.Port)
	}
	if strings.TrimSpace(c.SaveDir) == "" {
		return fmt.Errorf("saveDir is required")
	}
	if c.FileSuffix == "" {
		c.FileSuffix = ".hl7"
	}
	c.AutoAck = true
	return nil
}

// OutboundConfig is an Outbound channel's full configuration.
type OutboundConfig struct {
	Name    string   `yaml:"name"`
	Enabled FlexBool `yaml:"enabled"`

	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	SourceDir  string `yaml:"sourceDir"`
	Pattern    string `yaml:"pattern"`
	WaitForAck FlexBool `yaml:"waitForAck"`

	ConnectTimeoutMs int `yaml:"connectTimeoutMs"`
	ReadTimeoutMs    int `yaml:"readTimeoutMs"`
	PollIntervalMs   int `yaml:"pollIntervalMs"`
	ConcurrentSends  int `yaml:"concurrentSends"`

	// MaxSendsPerSecond caps the channel's aggregate send rate across all
	// ConcurrentSends workers, so a large backlog doesn't overrun a
	// receiving endpoint's own throughput. 0 means unlimited.
	MaxSendsPerSecond float64 `yaml:"maxSendsPerSecond,omitempty"`

	ErrorDir   string        `yaml:"errorDir,omitempty"`
	ArchiveDir string        `yaml:"archiveDir,omitempty"`
	Archive    ArchiveConfig `yaml:"archive"`
}

// ChannelName returns the channel's unique (per-kind) name.
func (c *OutboundConfig) ChannelName() string { return c.Name }

// IsEnabled reports whether the channel should be started by loadAndStart.
func (c *OutboundConfig) IsEnabled() bool { return bool(c.Enabled) }

func (c *OutboundConfig) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be in [1,65535], got %d", c.Port)
	}
	if strings.TrimSpace(c.SourceDir) == "" {
		return fmt.Errorf("sourceDir is required")
	}
	if c.Pattern == "" {
		c.Pattern = "*.hl7"
	}
	if c.ConnectTimeoutMs <= 0 {
		c.ConnectTimeoutMs = 5000
	}
	if c.ReadTimeoutMs <= 0 {
		c.ReadTimeoutMs = 5000
	}
	if c.PollIntervalMs < 200 {
		c.PollIntervalMs = 1000
	}
	if c.ConcurrentSends < 1 {
		c.ConcurrentSends = 1
	}
	return nil
}
