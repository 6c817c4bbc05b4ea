package installer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// reporter writes the human-readable status lines of a run.
type reporter struct {
	out    io.Writer
	errOut io.Writer
}

func newReporter(out, errOut io.Writer) *reporter {
	return &reporter{out: out, errOut: errOut}
}

func defaultReporter() *reporter {
	return newReporter(os.Stdout, os.Stderr)
}

func (r *reporter) println(lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(r.out, line)
	}
}

func (r *reporter) blank() {
	fmt.Fprintln(r.out)
}

func (r *reporter) installing() {
	r.println(color.New(color.Bold).Sprint("🔧 Initializing Claude Code base setup..."))
	r.blank()
}

func (r *reporter) removedExisting() {
	r.println("🗑️  Removed existing .claude directory.")
	r.blank()
}

func (r *reporter) created() {
	r.println(
		color.GreenString("✅ Created .claude/ directory with:"),
		"   📁 hooks/     - Smart context injection",
		"   📁 rules/     - Behavioral guidelines",
		"   📁 agents/    - Task workers",
		"   📁 commands/  - Slash commands (/review, /test, /commit)",
		"   📄 settings.json",
		"   📄 CLAUDE.md",
	)
	r.blank()
}

func (r *reporter) skippedPrompt() {
	r.println(
		"⏭️  Skipped API key prompt (--skip-api-key).",
		"   Using keyword-based injection.",
	)
	r.blank()
}

func (r *reporter) promptIntro() {
	r.println(
		"🔑 Smart injection uses Claude Haiku for semantic rule matching.",
		"   This requires an Anthropic API key.",
	)
	r.blank()
}

func (r *reporter) keySaved(model string) {
	r.blank()
	r.println(
		color.GreenString("   ✅ API key saved to .env"),
		color.GreenString("   ✅ Model set to %s", model),
		color.GreenString("   ✅ Enabled LLM-powered smart injection"),
		color.CyanString("   💡 Add .env to your .gitignore if not already there."),
		color.CyanString("   💡 Change ANTHROPIC_MODEL in .env to use a different model."),
	)
	r.blank()
}

func (r *reporter) keySkipped() {
	r.blank()
	r.println(
		"   ⏭️  Skipped. Using keyword-based injection.",
		color.CyanString("   💡 Set ANTHROPIC_API_KEY env var later to enable LLM-powered injection."),
	)
	r.blank()
}

func (r *reporter) ready() {
	r.println(color.New(color.Bold).Sprint("🚀 Ready! Claude Code will now use these rules and agents."))
	r.blank()
}

func (r *reporter) backedUp(id, dir string) {
	r.println(fmt.Sprintf("💾 Backed up .claude to %s (%s)", dir, id))
	r.blank()
}

func (r *reporter) updating() {
	r.println("🔄 Updating selected components...")
	r.blank()
}

func (r *reporter) subtreeFailed(name string, err error) {
	fmt.Fprintln(r.errOut, color.RedString("❌ Could not update %s: %v", name, err))
}

func (r *reporter) updated(names []string) {
	r.println(color.GreenString("✅ Updated: %s", strings.Join(names, ", ")))
	r.blank()
	r.println(color.CyanString("💡 Your settings.json and CLAUDE.md were preserved."))
	r.blank()
}

func (r *reporter) nothingUpdated() {
	r.println(color.YellowString("⚠️  No components updated."))
	r.blank()
}

func (r *reporter) nothingToRemove() {
	r.println("ℹ️  .claude directory does not exist. Nothing to remove.")
	r.blank()
}

func (r *reporter) removed() {
	r.println(color.GreenString("✅ Removed .claude directory."))
	r.blank()
	r.println(color.CyanString("💡 Note: .env file (if created) was not removed."))
	r.blank()
}
