package installer

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/claude-base-setup/internal/backup"
	"github.com/thoreinstein/claude-base-setup/internal/cli/prompt"
	"github.com/thoreinstein/claude-base-setup/internal/envfile"
	"github.com/thoreinstein/claude-base-setup/internal/errors"
	"github.com/thoreinstein/claude-base-setup/internal/logging"
	"github.com/thoreinstein/claude-base-setup/internal/paths"
	"github.com/thoreinstein/claude-base-setup/internal/settings"
	"github.com/thoreinstein/claude-base-setup/internal/templates"
)

type harness struct {
	inst    *Installer
	project string
	root    string
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	asked   []string
	backups *backup.Manager
}

func newHarness(t *testing.T, tmpl afero.Fs, answer string) *harness {
	t.Helper()
	h := &harness{
		project: t.TempDir(),
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
		backups: backup.NewManager(backup.WithBackupDir(t.TempDir())),
	}
	h.root = paths.ConfigRoot(h.project)
	h.inst = New(tmpl,
		WithOutput(h.stdout, h.stderr),
		WithBackupManager(h.backups),
		WithPrompter(prompt.PrompterFunc(func(_ context.Context, q string) (string, error) {
			h.asked = append(h.asked, q)
			return answer, nil
		})),
	)
	return h
}

func (h *harness) run(t *testing.T, opts Options) (*Result, error) {
	t.Helper()
	opts.ProjectDir = h.project
	return h.inst.Run(logging.NewContext(context.Background(), logging.ForTest(t)), opts)
}

func (h *harness) install(t *testing.T) {
	t.Helper()
	_, err := h.run(t, Options{SkipAPIKey: true})
	require.NoError(t, err)
	h.stdout.Reset()
}

// snapshot maps every file under dir to its content and mode.
func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			files[rel+"/"] = info.Mode().String()
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[rel] = info.Mode().String() + " " + string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func hookCommand(t *testing.T, root string) string {
	t.Helper()
	_, command, err := settings.ReadInjectionMode(root)
	require.NoError(t, err)
	return command
}

func assertHooksExecutable(t *testing.T, root string) {
	t.Helper()
	entries, err := os.ReadDir(paths.HooksDir(root))
	require.NoError(t, err)
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".sh") {
			continue
		}
		info, err := e.Info()
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm(), e.Name())
	}
}

func assertExitCode(t *testing.T, err error, code int, target error) {
	t.Helper()
	require.Error(t, err)
	var exitErr *errors.ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %T", err)
	assert.Equal(t, code, exitErr.Code)
	assert.True(t, errors.Is(err, target), "expected %v in chain of %v", target, err)
}

// partialTemplates is a template source without rules/ and commands/.
func partialTemplates() afero.Fs {
	return afero.FromIOFS{FS: fstest.MapFS{
		"hooks/smart-inject-rules.sh": {Data: []byte("#!/bin/sh\necho rules\n"), Mode: 0o644},
		"hooks/smart-inject-llm.sh":   {Data: []byte("#!/bin/sh\necho llm\n"), Mode: 0o644},
		"agents/reviewer.md":          {Data: []byte("# reviewer v2\n")},
		"settings.json":               {Data: []byte(`{"hooks":{"UserPromptSubmit":[{"hooks":[{"command":"x"}]}]}}`)},
		"CLAUDE.md":                   {Data: []byte("# Project\n")},
	}}
}

func TestOptions_Intent(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want Intent
	}{
		{"default", Options{}, IntentInstall},
		{"force", Options{Force: true}, IntentInstall},
		{"skip key", Options{SkipAPIKey: true}, IntentInstall},
		{"update", Options{Update: []string{"agents"}}, IntentUpdate},
		{"update with force", Options{Force: true, Update: []string{"hooks"}}, IntentUpdate},
		{"remove", Options{Remove: true}, IntentRemove},
		{"remove beats update", Options{Remove: true, Update: []string{"hooks"}}, IntentRemove},
		{"help beats everything", Options{Help: true, Remove: true, Update: []string{"rules"}, Force: true}, IntentHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.Intent())
		})
	}
}

func TestRun_Help(t *testing.T) {
	h := newHarness(t, templates.FS(), "")

	result, err := h.run(t, Options{Help: true, Remove: true})
	require.NoError(t, err)
	assert.Equal(t, IntentHelp, result.Intent)
	assert.NoDirExists(t, h.root)
	assert.Empty(t, h.stdout.String())
}

func TestInstall_SkipAPIKey(t *testing.T) {
	h := newHarness(t, templates.FS(), "should-not-be-read")

	result, err := h.run(t, Options{SkipAPIKey: true})
	require.NoError(t, err)

	assert.Equal(t, IntentInstall, result.Intent)
	assert.Equal(t, settings.ModeKeyword, result.Mode)
	assert.False(t, result.KeySaved)
	assert.Empty(t, h.asked, "prompt must not be shown")

	for _, name := range paths.Subtrees() {
		assert.DirExists(t, filepath.Join(h.root, name))
	}
	assert.FileExists(t, filepath.Join(h.root, paths.ContextFileName))
	assert.Equal(t, settings.KeywordScript, hookCommand(t, h.root))
	assert.NoFileExists(t, paths.EnvFile(h.project))
	assertHooksExecutable(t, h.root)

	out := h.stdout.String()
	assert.Contains(t, out, "Initializing Claude Code base setup")
	assert.Contains(t, out, "Skipped API key prompt (--skip-api-key)")
	assert.Contains(t, out, "Ready!")
}

func TestInstall_MirrorsTemplates(t *testing.T) {
	h := newHarness(t, templates.FS(), "")
	_, err := h.run(t, Options{SkipAPIKey: true})
	require.NoError(t, err)

	err = afero.Walk(templates.FS(), templates.Root, func(path string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() || path == paths.SettingsName {
			return err
		}
		want, err := afero.ReadFile(templates.FS(), path)
		require.NoError(t, err)
		assert.Equal(t, string(want), readFile(t, filepath.Join(h.root, filepath.FromSlash(path))), path)
		return nil
	})
	require.NoError(t, err)
}

func TestInstall_WithCredential(t *testing.T) {
	h := newHarness(t, templates.FS(), "  sk-ant-test  \n")

	result, err := h.run(t, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{APIKeyQuestion}, h.asked)
	assert.True(t, result.KeySaved)
	assert.Equal(t, settings.ModeSemantic, result.Mode)
	assert.Equal(t, "ANTHROPIC_API_KEY=sk-ant-test\nANTHROPIC_MODEL=claude-3-5-haiku-latest\n",
		readFile(t, paths.EnvFile(h.project)))
	assert.Equal(t, settings.SemanticScript, hookCommand(t, h.root))

	out := h.stdout.String()
	assert.Contains(t, out, "API key saved to .env")
	assert.Contains(t, out, "Model set to claude-3-5-haiku-latest")
	assert.NotContains(t, out, "sk-ant-test")
}

func TestInstall_CredentialPreservesExistingEnv(t *testing.T) {
	h := newHarness(t, templates.FS(), "sk-ant-new")
	envPath := paths.EnvFile(h.project)
	require.NoError(t, os.WriteFile(envPath, []byte("DATABASE_URL=postgres://x\nANTHROPIC_API_KEY=old"), 0o600))

	_, err := h.run(t, Options{Model: "claude-sonnet-4-5"})
	require.NoError(t, err)

	assert.Equal(t,
		"DATABASE_URL=postgres://x\nANTHROPIC_API_KEY=sk-ant-new\nANTHROPIC_MODEL=claude-sonnet-4-5\n",
		readFile(t, envPath))
}

func TestInstall_EmptyAnswer(t *testing.T) {
	h := newHarness(t, templates.FS(), "   ")

	result, err := h.run(t, Options{})
	require.NoError(t, err)

	assert.Len(t, h.asked, 1)
	assert.False(t, result.KeySaved)
	assert.Equal(t, settings.ModeKeyword, result.Mode)
	assert.NoFileExists(t, paths.EnvFile(h.project))
	assert.Equal(t, settings.KeywordScript, hookCommand(t, h.root))
	assert.Contains(t, h.stdout.String(), "Skipped. Using keyword-based injection.")
}

func TestInstall_LinePrompterEOF(t *testing.T) {
	h := newHarness(t, templates.FS(), "")
	var shown bytes.Buffer
	h.inst.prompter = prompt.NewLinePrompterWithIO(strings.NewReader(""), &shown)

	result, err := h.run(t, Options{})
	require.NoError(t, err)
	assert.Equal(t, APIKeyQuestion, shown.String())
	assert.Equal(t, settings.ModeKeyword, result.Mode)
}

func TestInstall_PromptError(t *testing.T) {
	h := newHarness(t, templates.FS(), "")
	h.inst.prompter = prompt.NewLinePrompterWithIO(strings.NewReader("sk-ant-x\n"), &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.inst.Run(ctx, Options{ProjectDir: h.project})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, errors.ExitSystem, errors.ExitCode(err))
	assert.NoFileExists(t, paths.EnvFile(h.project))
}

func TestInstall_ExistingRootWithoutForce(t *testing.T) {
	h := newHarness(t, templates.FS(), "sk-ant-x")
	h.install(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.root, "notes.md"), []byte("mine"), 0o644))
	before := snapshot(t, h.root)

	_, err := h.run(t, Options{})
	assertExitCode(t, err, errors.ExitUser, errors.ErrAlreadyInitialized)

	var exitErr *errors.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Contains(t, exitErr.Suggestion, "--force")
	assert.Contains(t, exitErr.Suggestion, "--update-commands")

	assert.Equal(t, before, snapshot(t, h.root))
	assert.Empty(t, h.asked)
	assert.NoFileExists(t, paths.EnvFile(h.project))
}

func TestInstall_Force(t *testing.T) {
	h := newHarness(t, templates.FS(), "")
	h.install(t)

	extra := filepath.Join(h.root, "notes.md")
	require.NoError(t, os.WriteFile(extra, []byte("mine"), 0o644))
	rule := filepath.Join(h.root, "rules", "testing.md")
	require.NoError(t, os.WriteFile(rule, []byte("edited"), 0o644))

	result, err := h.run(t, Options{Force: true, SkipAPIKey: true})
	require.NoError(t, err)

	assert.True(t, result.Removed)
	assert.Empty(t, result.BackupID)
	assert.NoFileExists(t, extra)
	want, err := afero.ReadFile(templates.FS(), "rules/testing.md")
	require.NoError(t, err)
	assert.Equal(t, string(want), readFile(t, rule))
	assertHooksExecutable(t, h.root)
	assert.Contains(t, h.stdout.String(), "Removed existing .claude directory.")
}

func TestInstall_ForceWithoutExistingRoot(t *testing.T) {
	h := newHarness(t, templates.FS(), "")

	result, err := h.run(t, Options{Force: true, SkipAPIKey: true, Backup: true})
	require.NoError(t, err)
	assert.False(t, result.Removed)
	assert.Empty(t, result.BackupID)
	assert.DirExists(t, h.root)
}

func TestInstall_ForceWithBackup(t *testing.T) {
	h := newHarness(t, templates.FS(), "")
	h.install(t)
	extra := filepath.Join(h.root, "notes.md")
	require.NoError(t, os.WriteFile(extra, []byte("mine"), 0o644))

	result, err := h.run(t, Options{Force: true, SkipAPIKey: true, Backup: true})
	require.NoError(t, err)
	require.NotEmpty(t, result.BackupID)

	manifest, err := h.backups.Get(h.project, result.BackupID)
	require.NoError(t, err)
	assert.Equal(t, "force", manifest.Reason)
	assert.NoError(t, h.backups.Verify(h.project, result.BackupID))

	saved := filepath.Join(h.backups.Dir(h.project), result.BackupID, "files", "notes.md")
	assert.Equal(t, "mine", readFile(t, saved))
	assert.NoFileExists(t, extra)
}

func TestInstall_MissingTemplates(t *testing.T) {
	missing := afero.NewBasePathFs(afero.NewOsFs(), filepath.Join(t.TempDir(), "gone"))
	h := newHarness(t, missing, "")

	_, err := h.run(t, Options{SkipAPIKey: true})
	assertExitCode(t, err, errors.ExitUser, errors.ErrTemplatesNotFound)
	assert.NoDirExists(t, h.root)
}

func TestUpdate_NotInitialized(t *testing.T) {
	h := newHarness(t, templates.FS(), "")

	_, err := h.run(t, Options{Update: []string{"hooks"}})
	assertExitCode(t, err, errors.ExitUser, errors.ErrNotInitialized)
	assert.NoDirExists(t, h.root)
}

func TestUpdate_RestoresSubtreeAndPreservesSettings(t *testing.T) {
	h := newHarness(t, templates.FS(), "")
	h.install(t)

	settingsPath := paths.SettingsFile(h.root)
	require.NoError(t, os.WriteFile(settingsPath, []byte(`{"custom": true}`+"\n"), 0o644))
	claudeMD := filepath.Join(h.root, paths.ContextFileName)
	require.NoError(t, os.WriteFile(claudeMD, []byte("my notes"), 0o644))

	agent := filepath.Join(h.root, "agents", "test-writer.md")
	require.NoError(t, os.WriteFile(agent, []byte("edited"), 0o644))
	added := filepath.Join(h.root, "agents", "mine.md")
	require.NoError(t, os.WriteFile(added, []byte("mine"), 0o644))
	rule := filepath.Join(h.root, "rules", "testing.md")
	require.NoError(t, os.WriteFile(rule, []byte("edited rule"), 0o644))

	envPath := paths.EnvFile(h.project)
	require.NoError(t, os.WriteFile(envPath, []byte("ANTHROPIC_API_KEY=k\n"), 0o600))

	result, err := h.run(t, Options{Update: []string{"agents"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"agents"}, result.Updated)
	assert.Empty(t, result.Skipped)

	want, err := afero.ReadFile(templates.FS(), "agents/test-writer.md")
	require.NoError(t, err)
	assert.Equal(t, string(want), readFile(t, agent))
	assert.NoFileExists(t, added)

	assert.Equal(t, `{"custom": true}`+"\n", readFile(t, settingsPath))
	assert.Equal(t, "my notes", readFile(t, claudeMD))
	assert.Equal(t, "edited rule", readFile(t, rule))
	assert.Equal(t, "ANTHROPIC_API_KEY=k\n", readFile(t, envPath))

	out := h.stdout.String()
	assert.Contains(t, out, "Updated: agents")
	assert.Contains(t, out, "Your settings.json and CLAUDE.md were preserved.")
	assert.Empty(t, h.asked)
}

func TestUpdate_LeavesOtherSubtreesByteIdentical(t *testing.T) {
	for _, name := range paths.UpdatableSubtrees() {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, templates.FS(), "")
			h.install(t)
			require.NoError(t, os.WriteFile(filepath.Join(h.root, "extra.txt"), []byte("x"), 0o600))

			before := snapshot(t, h.root)
			_, err := h.run(t, Options{Update: []string{name}})
			require.NoError(t, err)
			after := snapshot(t, h.root)

			prefix := name + string(filepath.Separator)
			for path, v := range before {
				if path == name+"/" || strings.HasPrefix(path, prefix) {
					continue
				}
				assert.Equal(t, v, after[path], path)
			}
		})
	}
}

func TestUpdate_CanonicalOrder(t *testing.T) {
	h := newHarness(t, templates.FS(), "")
	h.install(t)

	result, err := h.run(t, Options{Update: []string{"commands", "rules", "hooks", "commands"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"hooks", "rules", "commands"}, result.Updated)
	assert.Contains(t, h.stdout.String(), "Updated: hooks, rules, commands")
}

func TestUpdate_HooksRestoresExecutable(t *testing.T) {
	h := newHarness(t, templates.FS(), "")
	h.install(t)
	script := filepath.Join(paths.HooksDir(h.root), "smart-inject-rules.sh")
	require.NoError(t, os.Chmod(script, 0o600))

	_, err := h.run(t, Options{Update: []string{"hooks"}})
	require.NoError(t, err)
	assertHooksExecutable(t, h.root)
}

func TestUpdate_MissingTemplateSubtree(t *testing.T) {
	h := newHarness(t, partialTemplates(), "")
	h.install(t)

	result, err := h.run(t, Options{Update: []string{"hooks", "rules", "agents", "commands"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"hooks", "agents"}, result.Updated)
	assert.Equal(t, []string{"rules", "commands"}, result.Skipped)
	assert.Contains(t, h.stderr.String(), "rules")
	assert.Contains(t, h.stderr.String(), "subtree not found in templates")
	assertHooksExecutable(t, h.root)
}

func TestUpdate_SkippedSubtreeReportedOnce(t *testing.T) {
	h := newHarness(t, partialTemplates(), "")
	h.install(t)

	var logs bytes.Buffer
	ctx := logging.NewContext(context.Background(),
		logging.New(logging.Options{Level: logging.LevelFromVerbosity(0), Output: &logs}))

	_, err := h.inst.Run(ctx, Options{ProjectDir: h.project, Update: []string{"rules"}})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(h.stderr.String(), "Could not update rules"))
	assert.Empty(t, logs.String())
}

func TestUpdate_NothingUpdated(t *testing.T) {
	h := newHarness(t, partialTemplates(), "")
	h.install(t)

	result, err := h.run(t, Options{Update: []string{"rules"}})
	require.NoError(t, err)
	assert.Empty(t, result.Updated)
	assert.Equal(t, []string{"rules"}, result.Skipped)
	assert.Contains(t, h.stdout.String(), "No components updated.")
}

func TestUpdate_UnknownSubtree(t *testing.T) {
	h := newHarness(t, templates.FS(), "")
	h.install(t)
	before := snapshot(t, h.root)

	for _, name := range []string{"skills", "../etc", "plugins"} {
		t.Run(name, func(t *testing.T) {
			_, err := h.run(t, Options{Update: []string{"hooks", name}})
			assertExitCode(t, err, errors.ExitUser, errors.ErrUnknownSubtree)
			assert.Equal(t, before, snapshot(t, h.root))
		})
	}
}

func TestUpdate_WithBackup(t *testing.T) {
	h := newHarness(t, templates.FS(), "")
	h.install(t)

	result, err := h.run(t, Options{Update: []string{"rules"}, Backup: true})
	require.NoError(t, err)
	require.NotEmpty(t, result.BackupID)

	latest, err := h.backups.Latest(h.project)
	require.NoError(t, err)
	assert.Equal(t, result.BackupID, latest.ID)
	assert.Equal(t, "update", latest.Reason)
}

func TestRemove(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		h := newHarness(t, templates.FS(), "")

		result, err := h.run(t, Options{Remove: true})
		require.NoError(t, err)
		assert.False(t, result.Removed)
		assert.Contains(t, h.stdout.String(), "Nothing to remove.")
	})

	t.Run("existing root keeps env", func(t *testing.T) {
		h := newHarness(t, templates.FS(), "sk-ant-keep")
		_, err := h.run(t, Options{})
		require.NoError(t, err)
		envBefore := readFile(t, paths.EnvFile(h.project))

		result, err := h.run(t, Options{Remove: true})
		require.NoError(t, err)

		assert.True(t, result.Removed)
		assert.NoDirExists(t, h.root)
		assert.Equal(t, envBefore, readFile(t, paths.EnvFile(h.project)))
		assert.Contains(t, h.stdout.String(), "Removed .claude directory.")
		assert.Contains(t, h.stdout.String(), ".env file (if created) was not removed.")
	})

	t.Run("backup first", func(t *testing.T) {
		h := newHarness(t, templates.FS(), "")
		h.install(t)
		before := snapshot(t, h.root)

		result, err := h.run(t, Options{Remove: true, Backup: true})
		require.NoError(t, err)
		require.NotEmpty(t, result.BackupID)
		assert.NoDirExists(t, h.root)

		require.NoError(t, h.backups.Verify(h.project, result.BackupID))
		manifest, err := h.backups.Get(h.project, result.BackupID)
		require.NoError(t, err)

		var files int
		for path := range before {
			if !strings.HasSuffix(path, "/") {
				files++
			}
		}
		assert.Equal(t, files, manifest.Size())
	})
}

func TestRemove_BackupFailureAborts(t *testing.T) {
	h := newHarness(t, templates.FS(), "")
	h.install(t)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	h.inst.backups = backup.NewManager(backup.WithBackupDir(filepath.Join(blocker, "backups")))

	_, err := h.run(t, Options{Remove: true, Backup: true})
	require.Error(t, err)
	assert.Equal(t, errors.ExitSystem, errors.ExitCode(err))
	assert.DirExists(t, h.root)
}

func TestNew_Defaults(t *testing.T) {
	inst := New(templates.FS())
	require.NotNil(t, inst.prompter)
	answer, err := inst.prompter.Prompt(context.Background(), APIKeyQuestion)
	require.NoError(t, err)
	assert.Empty(t, answer)
	assert.Nil(t, inst.backups)
	assert.NotNil(t, inst.report)
}

func TestResult_EnvKeysMatchEnvfile(t *testing.T) {
	h := newHarness(t, templates.FS(), "sk-ant-abc")
	_, err := h.run(t, Options{})
	require.NoError(t, err)

	values, err := envfile.Read(paths.EnvFile(h.project))
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-abc", values[envfile.KeyAPIKey])
	assert.Equal(t, envfile.DefaultModel, values[envfile.KeyModel])
}
