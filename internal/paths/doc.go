// Package paths resolves the on-disk locations claude-base-setup works with.
//
// Two families of paths exist:
//
//   - Project paths: the configuration root (<project>/.claude), the env file
//     (<project>/.env), and the files inside the configuration root. These
//     are always derived from an explicit project directory; nothing here
//     reads the process working directory except [ResolveProjectDir] when it
//     is given an empty argument.
//   - Tool paths: the XDG config and data directories used for the tool's
//     own config file and backups. These wrap github.com/adrg/xdg.
//
// # Project Layout
//
//	<project>/
//	├── .env
//	└── .claude/
//	    ├── CLAUDE.md
//	    ├── settings.json
//	    ├── hooks/
//	    ├── rules/
//	    ├── agents/
//	    ├── commands/
//	    ├── skills/
//	    └── component-recipes/
package paths
