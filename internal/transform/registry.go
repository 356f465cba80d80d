// Package transform resolves a TransformerConfig into a runnable
// Transformer instance, separating "what transformer type was configured"
// from how the WRAPI engine executes a script.
package transform

import (
	"fmt"
	"os"

	"github.com/williamray70/localbridge/internal/config"
	"github.com/williamray70/localbridge/internal/wrapi"
)

// Transformer applies a configured transformation to raw HL7 text.
type Transformer interface {
	Transform(raw []byte) (out []byte, warnings []string, err error)
}

// New resolves cfg into a Transformer, loading and parsing the WRAPI script
// up front so that script syntax errors are fatal at channel start rather
// than surfacing on the first file processed.
func New(cfg config.TransformerConfig, confRoot, yamlDir string) (Transformer, error) {
	switch cfg.Type {
	case "", "wrapi":
		scriptPath, err := config.ResolveScriptPath(confRoot, yamlDir, cfg.Script)
		if err != nil {
			return nil, fmt.Errorf("resolving wrapi script %q: %w", cfg.Script, err)
		}
		text, err := os.ReadFile(scriptPath)
		if err != nil {
			return nil, fmt.Errorf("reading wrapi script %q: %w", scriptPath, err)
		}
		script, err := wrapi.Parse(string(text))
		if err != nil {
			return nil, fmt.Errorf("parsing wrapi script %q: %w", scriptPath, err)
		}
		return &wrapiTransformer{script: script, createMissing: bool(cfg.CreateMissing)}, nil
	case "java":
		// Pluggable Java-class transformers are an external collaborator
		// this engine has no JVM bridge for, so a "java" transformer is a
		// recognized-but-unsupported registry entry. Failing at load time
		// (rather than silently passing messages through) keeps the
		// channel's behavior honest with its config.
		return nil, fmt.Errorf("transformer type %q (class %q) is not supported by this engine", cfg.Type, cfg.Class)
	default:
		return nil, fmt.Errorf("unknown transformer type %q", cfg.Type)
	}
}

type wrapiTransformer struct {
	script        *wrapi.Script
	createMissing bool
}

func (t *wrapiTransformer) Transform(raw []byte) ([]byte, []string, error) {
	out, warnings, err := t.script.Execute(string(raw), t.createMissing)
	if err != nil {
		return nil, warnings, err
	}
	return []byte(out), warnings, nil
}
