package enrich

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// WriteReport writes the plain-text failure report for a pass: one
// "category | name | reason" line per failed item. The report is
// informational only; nothing reads it back.
func WriteReport(fs afero.Fs, path string, failures []Failure) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# enrichment failures: %s\n", time.Now().Format(time.RFC3339))
	for _, f := range failures {
		fmt.Fprintf(&b, "%s | %s | %s\n", f.Category, f.Name, f.Reason)
	}
	if err := afero.WriteFile(fs, path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write failure report: %w", err)
	}
	return nil
}
