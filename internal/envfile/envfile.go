// Package envfile persists NAME=value pairs in a dotenv file without
// disturbing the rest of its content.
package envfile

import (
	"bytes"
	"io/fs"
	"os"
	"regexp"

	"github.com/joho/godotenv"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
	"github.com/thoreinstein/claude-base-setup/pkg/fileutil"
)

// Well-known names written by the installer.
const (
	KeyAPIKey = "ANTHROPIC_API_KEY"
	KeyModel  = "ANTHROPIC_MODEL"

	// DefaultModel is written alongside a newly saved API key.
	DefaultModel = "claude-3-5-haiku-latest"
)

// newFilePerm is used when Upsert creates the file. It holds a credential.
const newFilePerm os.FileMode = 0o600

// Upsert sets name to value in the env file at path.
//
// Every line beginning with "name=" is replaced up to its line terminator, so
// CRLF endings and all other lines survive byte-for-byte. When no such line
// exists, "name=value\n" is appended, preceded by a newline whenever an
// existing file does not end in one. That includes an empty file. A missing
// file is created holding just the new line.
// The value is inserted literally.
func Upsert(path, name, value string) error {
	if name == "" {
		return errors.New("env name must not be empty")
	}

	content, err := os.ReadFile(path)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "reading %s", path)
	}

	line := []byte(name + "=" + value)
	pattern := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(name) + `=[^\r\n]*`)

	var out []byte
	if pattern.Match(content) {
		out = pattern.ReplaceAllLiteral(content, line)
	} else {
		out = make([]byte, 0, len(content)+len(line)+2)
		out = append(out, content...)
		if exists && !bytes.HasSuffix(content, []byte("\n")) {
			out = append(out, '\n')
		}
		out = append(out, line...)
		out = append(out, '\n')
	}

	if err := fileutil.AtomicWriteFile(path, out, fileutil.ModeOr(path, newFilePerm)); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// Read parses the env file at path. A missing file yields an empty map.
func Read(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	values, err := godotenv.Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return values, nil
}
