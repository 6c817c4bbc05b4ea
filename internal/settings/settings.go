package settings

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"path"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/sjson"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
	"github.com/thoreinstein/claude-base-setup/internal/paths"
	"github.com/thoreinstein/claude-base-setup/pkg/fileutil"
)

// InjectionMode selects which script the prompt-submit hook runs.
type InjectionMode int

const (
	// ModeUnknown is reported when the hook command is neither known script.
	ModeUnknown InjectionMode = iota
	// ModeKeyword matches rules by keyword, with no network access.
	ModeKeyword
	// ModeSemantic asks a model to pick the relevant rules.
	ModeSemantic
)

// Hook script paths, relative to the project directory.
const (
	KeywordScript  = ".claude/hooks/smart-inject-rules.sh"
	SemanticScript = ".claude/hooks/smart-inject-llm.sh"
)

const (
	hookPath    = "hooks.UserPromptSubmit.0.hooks.0"
	commandPath = hookPath + ".command"
	indent      = "  "
	settingPerm = 0o644
)

// Script returns the hook command for the mode, or "" for ModeUnknown.
func (m InjectionMode) Script() string {
	switch m {
	case ModeKeyword:
		return KeywordScript
	case ModeSemantic:
		return SemanticScript
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (m InjectionMode) String() string {
	switch m {
	case ModeKeyword:
		return "keyword"
	case ModeSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// ModeForCommand maps a hook command back to its mode. Commands are compared
// by script file name so an absolute or rewritten path still resolves.
func ModeForCommand(command string) InjectionMode {
	switch path.Base(command) {
	case path.Base(KeywordScript):
		return ModeKeyword
	case path.Base(SemanticScript):
		return ModeSemantic
	default:
		return ModeUnknown
	}
}

// SetInjectionMode points the prompt-submit hook of root/settings.json at the
// mode's script.
//
// It returns true when the file was rewritten. A missing settings file, or one
// without the nested hook object, is left alone and reported as (false, nil).
// A document that is not valid JSON returns an error wrapping
// ErrInvalidSettings.
func SetInjectionMode(root string, mode InjectionMode) (bool, error) {
	script := mode.Script()
	if script == "" {
		return false, errors.Newf("cannot set injection mode %s", mode)
	}

	file := paths.SettingsFile(root)
	raw, err := fileutil.ReadFileWithLimit(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errors.Wrapf(err, "reading %s", file)
	}

	doc, err := parse(raw)
	if err != nil {
		return false, errors.Wrapf(err, "%s", file)
	}

	if !gjson.GetBytes(doc, hookPath).IsObject() {
		return false, nil
	}

	doc, err = sjson.SetBytes(doc, commandPath, script)
	if err != nil {
		return false, errors.Wrap(err, "setting hook command")
	}

	out, err := format(doc)
	if err != nil {
		return false, err
	}

	if err := fileutil.AtomicWriteFile(file, out, fileutil.ModeOr(file, settingPerm)); err != nil {
		return false, errors.Wrapf(err, "writing %s", file)
	}
	return true, nil
}

// ReadInjectionMode returns the mode and raw command of the prompt-submit hook
// in root/settings.json. A document without the hook yields ModeUnknown and an
// empty command. A missing file returns an error matching fs.ErrNotExist.
func ReadInjectionMode(root string) (InjectionMode, string, error) {
	file := paths.SettingsFile(root)
	raw, err := fileutil.ReadFileWithLimit(file)
	if err != nil {
		return ModeUnknown, "", errors.Wrapf(err, "reading %s", file)
	}

	doc, err := parse(raw)
	if err != nil {
		return ModeUnknown, "", errors.Wrapf(err, "%s", file)
	}

	cmd := gjson.GetBytes(doc, commandPath)
	if cmd.Type != gjson.String {
		return ModeUnknown, "", nil
	}
	return ModeForCommand(cmd.Str), cmd.Str, nil
}

// parse strips comments and trailing commas and validates the result.
func parse(raw []byte) ([]byte, error) {
	doc := jsonc.ToJSON(raw)
	if !gjson.ValidBytes(doc) {
		return nil, errors.Wrap(errors.ErrInvalidSettings, "not valid JSON")
	}
	return doc, nil
}

// format re-indents doc with two spaces and a trailing newline.
func format(doc []byte) ([]byte, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, doc); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidSettings, err.Error())
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", indent); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidSettings, err.Error())
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
