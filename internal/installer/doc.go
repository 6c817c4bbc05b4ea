// Package installer drives the top-level flows of claude-base-setup.
//
// A run resolves one intent from its [Options] (help, remove, selective
// update, or install) and applies it to a project's configuration root:
//
//	inst := installer.New(templates.FS(), installer.WithPrompter(prompt.NewLinePrompter()))
//	result, err := inst.Run(ctx, installer.Options{ProjectDir: dir, SkipAPIKey: true})
//
// Conflicts (installing over an existing root without Force, updating a
// project that was never initialized) are returned as [errors.ExitError]
// values with exit code 1 before anything on disk changes. A missing
// template source and I/O failures carry exit code 2.
//
// Status lines are written to the configured output; the logger is taken
// from the context passed to [Installer.Run].
package installer
