package integrations

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-epub"
)

const defaultAuthor = "Companion"

type EPubBuilder struct {
	outputDir string
	author    string
}

func NewEPubBuilder(outputDir string) *EPubBuilder {
	return &EPubBuilder{outputDir: outputDir, author: defaultAuthor}
}

// Export compiles lore entries, in the given order, into a single EPub
// file and returns its path.
func (p *EPubBuilder) Export(title, lang string, entries []LoreEntry) (string, error) {
	if len(entries) == 0 {
		return "", fmt.Errorf("no lore entries to compile")
	}
	if strings.TrimSpace(title) == "" {
		title = entries[0].Title
	}

	// Ensure output directory exists
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	e, err := epub.NewEpub(title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}

	e.SetAuthor(p.author)
	if lang != "" {
		e.SetLang(lang)
	}

	for i, entry := range entries {
		sectionTitle := entry.Title
		if sectionTitle == "" {
			sectionTitle = fmt.Sprintf("Entry %d", i+1)
		}
		if _, err := e.AddSection(renderEntry(sectionTitle, entry), sectionTitle, "", ""); err != nil {
			return "", fmt.Errorf("failed to add entry %s: %w", entry.Hash, err)
		}
	}

	safeTitle := sanitizeFilename(title)
	if safeTitle == "" {
		safeTitle = "lore"
	}
	outputPath := filepath.Join(p.outputDir, safeTitle+".epub")

	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}

	return outputPath, nil
}

// renderEntry builds the XHTML body of one section. Blank lines separate
// paragraphs.
func renderEntry(title string, entry LoreEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(title))
	if entry.Subtitle != "" {
		fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(entry.Subtitle))
	}

	body := strings.ReplaceAll(entry.Body, "\r\n", "\n")
	for _, para := range strings.Split(body, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(line)
		}
		fmt.Fprintf(&b, "<p>%s</p>\n", strings.Join(lines, "<br/>"))
	}
	return b.String()
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	// Replace invalid characters with underscores
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	// Trim spaces and dots from ends
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	return result
}
