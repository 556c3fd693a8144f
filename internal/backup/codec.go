// Package backup bundles the application's store entries into a single
// portable artifact and restores such artifacts.
//
// Artifacts are obfuscated with the XOR transform, not encrypted. The
// checksum and owner id detect accidents, not tampering.
package backup

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/logging"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/obfuscate"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/storage"
)

const (
	FormatVersion = "1.0"
	FileExtension = ".aip"
)

// Entry names bundled into an artifact.
const (
	EntryTasks     = "tasks"
	EntryHistory   = "pomodoroHistory"
	EntryDailyGoal = "dailyGoal"
	EntrySettings  = "settings"
	EntryAppStats  = "appStats"
)

var EntryNames = []string{EntryTasks, EntryHistory, EntryDailyGoal, EntrySettings, EntryAppStats}

type Artifact struct {
	Version    string                     `json:"version"`
	ExportedAt time.Time                  `json:"exportedAt"`
	OwnerKeyID string                     `json:"ownerKeyId"`
	Entries    map[string]json.RawMessage `json:"entries"`
	Checksum   string                     `json:"checksum"`
}

// Package is an exported artifact plus its encoded text form.
type Package struct {
	Artifact
	Text         string `json:"-"`
	FilenameHint string `json:"-"`
}

type Result struct {
	Imported    []string `json:"imported"`
	Warnings    []string `json:"warnings,omitempty"`
	BackupSlots []string `json:"backupSlots,omitempty"`
}

type Options struct {
	Store      *storage.Store
	OwnerKey   string
	Names      []string
	Validators map[string]Validator
	Now        func() time.Time
	Logger     *logging.Logger
}

type Codec struct {
	store      *storage.Store
	ownerKey   string
	ownerID    string
	names      []string
	validators map[string]Validator
	now        func() time.Time
	logger     *logging.Logger
}

func New(opts Options) (*Codec, error) {
	if opts.Store == nil {
		return nil, errors.New("backup: store is required")
	}
	if opts.OwnerKey == "" {
		return nil, obfuscate.ErrEmptyKey
	}
	names := opts.Names
	if len(names) == 0 {
		names = EntryNames
	}
	validators := opts.Validators
	if validators == nil {
		validators = DefaultValidators()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Codec{
		store:      opts.Store,
		ownerKey:   opts.OwnerKey,
		ownerID:    OwnerKeyID(opts.OwnerKey),
		names:      append([]string(nil), names...),
		validators: validators,
		now:        now,
		logger:     opts.Logger.WithComponent("backup"),
	}, nil
}

// OwnerKeyID is a short public fingerprint of the owner key.
func OwnerKeyID(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// Checksum hashes the canonical JSON of entries: keys sorted, values compacted.
func Checksum(entries map[string]json.RawMessage) (string, error) {
	canonical := make(map[string]json.RawMessage, len(entries))
	for name, raw := range entries {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", fmt.Errorf("entry %q: %w", name, err)
		}
		canonical[name] = buf.Bytes()
	}
	encoded, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

func (c *Codec) Export(ctx context.Context) (Package, error) {
	entries := make(map[string]json.RawMessage, len(c.names))
	for _, name := range c.names {
		raw, found, err := c.store.LoadRaw(ctx, name)
		if err != nil {
			c.logger.Warn("entry skipped from export", "entry", name, "error", err)
			continue
		}
		if !found {
			continue
		}
		entries[name] = raw
	}
	if len(entries) == 0 {
		return Package{}, &ExportError{Reason: "nothing to export"}
	}

	checksum, err := Checksum(entries)
	if err != nil {
		return Package{}, &ExportError{Reason: "checksum", Err: err}
	}
	now := c.now()
	artifact := Artifact{
		Version:    FormatVersion,
		ExportedAt: now.UTC(),
		OwnerKeyID: c.ownerID,
		Entries:    entries,
		Checksum:   checksum,
	}
	plain, err := json.Marshal(artifact)
	if err != nil {
		return Package{}, &ExportError{Reason: "encode artifact", Err: err}
	}
	text, err := obfuscate.Encode(string(plain), c.ownerKey)
	if err != nil {
		return Package{}, &ExportError{Reason: "obfuscate artifact", Err: err}
	}

	c.logger.Info("exported backup", "entries", len(entries))
	return Package{
		Artifact:     artifact,
		Text:         text,
		FilenameHint: fmt.Sprintf("%s_backup_%s_%s%s", c.store.Namespace(), c.ownerID, now.Format(model.DateLayout), FileExtension),
	}, nil
}

// Decode turns artifact text back into an Artifact. Plain JSON artifacts are
// accepted as well as obfuscated ones.
func (c *Codec) Decode(text string) (Artifact, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Artifact{}, &ImportError{Reason: "artifact is empty"}
	}
	plain := text
	if !strings.HasPrefix(text, "{") {
		decoded, err := obfuscate.Decode(text, c.ownerKey)
		if err != nil {
			return Artifact{}, &ImportError{Reason: "artifact is not valid backup text", Err: err}
		}
		plain = decoded
	}
	var artifact Artifact
	if err := json.Unmarshal([]byte(plain), &artifact); err != nil {
		return Artifact{}, &ImportError{Reason: "artifact is corrupt or was exported with another key", Err: err}
	}
	return artifact, nil
}

// Import restores the entries of an artifact. Each existing value is copied
// to a backup slot before it is overwritten. Bad entries are skipped with a
// warning; the import fails only when nothing could be restored.
func (c *Codec) Import(ctx context.Context, text string) (Result, error) {
	artifact, err := c.Decode(text)
	if err != nil {
		return Result{}, err
	}

	var res Result
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		res.Warnings = append(res.Warnings, msg)
		c.logger.Warn("import warning", "detail", msg)
	}

	if artifact.Version != FormatVersion {
		warn("artifact version %q differs from %q", artifact.Version, FormatVersion)
	}
	if artifact.OwnerKeyID != "" && artifact.OwnerKeyID != c.ownerID {
		warn("artifact was exported by a different owner (%s)", artifact.OwnerKeyID)
	}
	if len(artifact.Entries) == 0 {
		return Result{}, &ImportError{Reason: "artifact has no entries", Warnings: res.Warnings}
	}
	if artifact.Checksum != "" {
		sum, sumErr := Checksum(artifact.Entries)
		if sumErr != nil || sum != artifact.Checksum {
			warn("artifact checksum does not match its contents")
		}
	}

	stamp := strconv.FormatInt(c.now().UnixMilli(), 10)
	names := make([]string, 0, len(artifact.Entries))
	for name := range artifact.Entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		raw := artifact.Entries[name]
		validate, known := c.validators[name]
		if !known || !c.bundles(name) {
			warn("unknown entry %q skipped", name)
			continue
		}
		if err := validate(raw); err != nil {
			warn("entry %q skipped: %v", name, err)
			continue
		}

		existing, found, loadErr := c.store.LoadRaw(ctx, name)
		var decodeErr *storage.DecodeError
		switch {
		case loadErr != nil && errors.As(loadErr, &decodeErr):
			warn("existing %q was unreadable and is not backed up", name)
		case loadErr != nil:
			warn("entry %q skipped: cannot read current value: %v", name, loadErr)
			continue
		case found:
			slot := "backup_" + name + "_" + stamp
			if err := c.store.SaveRaw(ctx, slot, existing); err != nil {
				warn("entry %q skipped: cannot back up current value: %v", name, err)
				continue
			}
			res.BackupSlots = append(res.BackupSlots, slot)
		}

		if err := c.store.SaveRaw(ctx, name, raw); err != nil {
			warn("entry %q skipped: %v", name, err)
			continue
		}
		res.Imported = append(res.Imported, name)
	}

	if len(res.Imported) == 0 {
		return Result{}, &ImportError{Reason: "no entries could be restored", Warnings: res.Warnings}
	}
	c.logger.Info("imported backup", "entries", len(res.Imported), "warnings", len(res.Warnings))
	return res, nil
}

func (c *Codec) bundles(name string) bool {
	for _, n := range c.names {
		if n == name {
			return true
		}
	}
	return false
}

func (c *Codec) Footprint(ctx context.Context) (storage.Footprint, error) {
	return c.store.Footprint(ctx)
}
