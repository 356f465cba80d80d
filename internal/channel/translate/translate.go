// Package translate implements the Translate channel engine: poll an input
// directory, parse each HL7 file, run the configured transformer, write the
// result to every destination, then archive or delete the input. The
// retry shape generalizes a job-retry/backoff pattern from "backup job" to
// "read -> transform -> write-all as a unit".
package translate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/williamray70/localbridge/validate"

	"github.com/williamray70/localbridge/internal/archive"
	"github.com/williamray70/localbridge/internal/audit"
	"github.com/williamray70/localbridge/internal/config"
	"github.com/williamray70/localbridge/internal/hl7codec"
	"github.com/williamray70/localbridge/internal/ids"
	"github.com/williamray70/localbridge/internal/stats"
	"github.com/williamray70/localbridge/internal/transform"
)

// Channel is one running Translate channel instance.
type Channel struct {
	cfg    config.TranslateConfig
	codec  *hl7codec.Codec
	xform  transform.Transformer
	valid  validate.Validator // nil unless transformer.validateProfile
	st     *stats.Store
	log    zerolog.Logger
}

// New builds a Channel, resolving and parsing its WRAPI script up front so
// that a syntax error fails channel start rather than the first file.
func New(cfg config.TranslateConfig, confRoot, yamlDir string, st *stats.Store, log zerolog.Logger) (*Channel, error) {
	xform, err := transform.New(cfg.Transformer, confRoot, yamlDir)
	if err != nil {
		return nil, fmt.Errorf("translate %q: %w", cfg.Name, err)
	}

	var v validate.Validator
	if bool(cfg.Transformer.ValidateProfile) {
		// Structural header-completeness check only (required-field
		// presence, not content semantics) — semantic validation is an
		// explicit non-goal.
		v = validate.New(validate.MSHRules().Rules()...)
	}

	return &Channel{
		cfg:   cfg,
		codec: hl7codec.New(),
		xform: xform,
		valid: v,
		st:    st,
		log:   log.With().Str("channel", cfg.Name).Str("kind", "translate").Logger(),
	}, nil
}

// Run polls inputDir until ctx is canceled.
func (c *Channel) Run(ctx context.Context) error {
	interval := time.Duration(c.cfg.PollIntervalMs) * time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}

		files, err := c.listBatch()
		if err != nil {
			c.log.Error().Err(err).Msg("listing input directory failed")
			continue
		}
		for _, f := range files {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			c.processOne(ctx, f)
		}
	}
}

func (c *Channel) listBatch() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(c.cfg.InputDir, c.cfg.InputPattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	if len(matches) > c.cfg.BatchSize {
		matches = matches[:c.cfg.BatchSize]
	}
	return matches, nil
}

// processOne runs the read->transform->write-all sequence as a unit, with
// retryCount retries spaced by retryDelayMs.
func (c *Channel) processOne(ctx context.Context, path string) {
	corrID := ids.New()
	log := c.log.With().Str("file", filepath.Base(path)).Str("trace", corrID).Logger()

	var lastErr error
	attempts := c.cfg.ErrorHandling.RetryCount + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(c.cfg.ErrorHandling.RetryDelayMs) * time.Millisecond):
			}
		}

		if err := c.tryOnce(path, log); err != nil {
			lastErr = err
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("translate attempt failed")
			continue
		}
		lastErr = nil
		break
	}

	if lastErr != nil {
		c.disposeError(path, lastErr, log)
	}
}

func (c *Channel) tryOnce(path string, log zerolog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	if msg, perr := c.codec.Parse(data); perr == nil {
		hdr := c.codec.HeaderSummary(msg)
		log = log.With().
			Str("sendingApp", hdr.SendingApplication).
			Str("sendingFacility", hdr.SendingFacility).
			Str("patientId", hdr.PatientID).
			Str("messageCode", hdr.MessageCode).
			Str("triggerEvent", hdr.TriggerEvent).
			Logger()

		if c.valid != nil {
			result := c.valid.Validate(msg)
			for _, w := range result.Warnings() {
				log.Warn().Str("rule", w.Rule).Str("location", w.Location).Msg(w.Message)
			}
			for _, e := range result.Errors() {
				log.Warn().Str("rule", e.Rule).Str("location", e.Location).Msg(e.Message)
			}
		}

		if rec, aerr := audit.Capture(msg, time.Now()); aerr == nil {
			log.Info().
				Str("auditControlId", rec.ControlID).
				Str("auditMessageCode", rec.MessageCode).
				Str("auditTriggerEvent", rec.TriggerEvent).
				Str("auditPatientId", rec.PatientID).
				Time("auditCapturedAt", rec.CapturedAt).
				Msg("audit record captured")
		} else {
			log.Warn().Err(aerr).Msg("audit capture failed")
		}
	}

	out, warnings, err := c.xform.Transform(data)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	for _, w := range warnings {
		log.Warn().Msg(w)
	}

	name := filepath.Base(path)
	written, err := writeAll(c.cfg.Destinations, name, out)
	if err != nil {
		for _, w := range written {
			_ = os.Remove(w)
		}
		return fmt.Errorf("writing destinations: %w", err)
	}

	if bool(c.cfg.Archive.Enabled) && c.cfg.ArchiveDir != "" {
		if err := archive.Store(path, c.cfg.ArchiveDir, name, bool(c.cfg.Archive.Compress)); err != nil {
			return fmt.Errorf("archiving input: %w", err)
		}
	} else if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing input: %w", err)
	}

	if err := c.st.IncProcessed(c.cfg.Name); err != nil {
		log.Warn().Err(err).Msg("stats flush failed")
	}
	log.Info().Msg("file translated")
	return nil
}

// writeAll writes data to <dest>/<name> for every destination in order,
// create-or-truncate. On the first failure it stops and returns the paths
// already written so the caller can roll them back — destination writes
// either all land or none do.
func writeAll(destinations []string, name string, data []byte) ([]string, error) {
	var written []string
	for _, dest := range destinations {
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return written, err
		}
		target := filepath.Join(dest, name)
		tmp := target + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return written, err
		}
		if err := os.Rename(tmp, target); err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}

// disposeError writes the sidecar and moves path to errorDir (or deletes it
// if errorDir is unset).
func (c *Channel) disposeError(path string, cause error, log zerolog.Logger) {
	if err := c.st.IncErrors(c.cfg.Name); err != nil {
		log.Warn().Err(err).Msg("stats flush failed")
	}

	if c.cfg.ErrorDir == "" {
		if err := os.Remove(path); err != nil {
			log.Error().Err(err).Msg("failed to remove input after error with no errorDir configured")
		}
		log.Error().Err(cause).Msg("file failed, deleted (no errorDir configured)")
		return
	}

	if err := os.MkdirAll(c.cfg.ErrorDir, 0o755); err != nil {
		log.Error().Err(err).Msg("failed to create errorDir")
		return
	}

	name := filepath.Base(path)
	sidecar := filepath.Join(c.cfg.ErrorDir, name+".error.txt")
	body := fmt.Sprintf("channel: %s\nfile: %s\ntimestamp: %s\nexception: %T\nmessage: %s\n",
		c.cfg.Name, name, time.Now().Format(time.RFC3339), cause, cause.Error())
	if err := os.WriteFile(sidecar, []byte(body), 0o644); err != nil {
		log.Error().Err(err).Msg("failed to write error sidecar")
	}

	target := filepath.Join(c.cfg.ErrorDir, name)
	_ = os.Remove(target) // replace existing
	if err := os.Rename(path, target); err != nil {
		log.Error().Err(err).Msg("failed to move input to errorDir")
	}
	log.Error().Err(cause).Msg("file moved to errorDir")
}
