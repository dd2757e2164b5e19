// Package report renders confirmed updates: styled blocks on the console
// and plain-text blocks in the optional report file.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1024mb/gog-installer-update-checker/internal/reconcile"
)

// oldGenTag marks a first-generation installer whose product moved to the
// new packaging.
const oldGenTag = "{OLD GEN INSTALLER}"

var (
	styleName   = lipgloss.NewStyle().Bold(true)
	styleID     = lipgloss.NewStyle().Faint(true)
	styleLocal  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	styleRemote = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleTag    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")) // red
)

// Sort orders findings by product name, case-sensitively, so repeated runs
// produce identical reports.
func Sort(findings []*reconcile.Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].ProductName != findings[j].ProductName {
			return findings[i].ProductName < findings[j].ProductName
		}
		return findings[i].ProductID < findings[j].ProductID
	})
}

// localVersionLine builds the version comparison line, tagging a
// first-generation installer when the catalog already moved on.
func localVersionLine(f *reconcile.Finding, tag string) string {
	local := f.LocalVersion
	if f.LocalLegacy && !f.RemoteLegacy {
		local += " " + tag
	}
	return local + " -> " + f.RemoteVersion
}

// buildsLine reports the build comparison. Missing sides carry the
// "Unknown" placeholder set by the reconciler.
func buildsLine(f *reconcile.Finding) string {
	return f.LocalBuild + " -> " + f.RemoteBuild
}

// PrintConsole writes the styled findings to w.
func PrintConsole(w io.Writer, findings []*reconcile.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d installer(s) have an update available:\n\n", len(findings))
	for _, f := range findings {
		fmt.Fprintf(w, "%s %s\n", styleName.Render(f.ProductName), styleID.Render("("+f.ProductID+")"))

		local := styleLocal.Render(f.LocalVersion)
		if f.LocalLegacy && !f.RemoteLegacy {
			local += " " + styleTag.Render(oldGenTag)
		}
		fmt.Fprintf(w, "  %s -> %s\n", local, styleRemote.Render(f.RemoteVersion))

		fmt.Fprintf(w, "  %s\n", buildsLine(f))
		fmt.Fprintln(w)
	}
}

// WriteFile writes the findings as plain-text blocks to path.
func WriteFile(path string, findings []*reconcile.Finding) error {
	var b strings.Builder
	for _, f := range findings {
		b.WriteString(f.ProductName + " (" + f.ProductID + ")\n")
		b.WriteString(localVersionLine(f, oldGenTag) + "\n")
		b.WriteString(buildsLine(f) + "\n")
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing report to %q: %w", path, err)
	}
	return nil
}
