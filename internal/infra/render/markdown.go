// Package render writes the per-item document sent alongside the chat
// message: a Markdown file with the item's metadata and translated content.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"newsrelay/internal/domain/entity"
)

// Renderer writes item documents into a fixed output directory.
type Renderer struct {
	outputDir string
}

// NewRenderer creates a renderer, ensuring the output directory exists.
func NewRenderer(outputDir string) (*Renderer, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", outputDir, err)
	}
	return &Renderer{outputDir: outputDir}, nil
}

// Render writes the document for item and returns its path. Filenames follow
// {Kind}_{date}_{slug}.md with the slug restricted to [A-Za-z0-9-_].
func (r *Renderer) Render(item *entity.ProcessedItem) (string, error) {
	path := filepath.Join(r.outputDir, r.filename(item))

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", item.Title)
	fmt.Fprintf(&b, "**Опубликовано:** %s\n\n", item.PublishDate.Format("02.01.2006 15:04"))
	fmt.Fprintf(&b, "**Тип:** %s\n\n", kindLabel(item.Kind))
	fmt.Fprintf(&b, "**Оригинал:** %s\n\n", item.URL)
	if item.DiscussionURL != "" && item.DiscussionURL != item.URL {
		fmt.Fprintf(&b, "**Обсуждение:** %s\n\n", item.DiscussionURL)
	}
	b.WriteString("---\n\n")

	content := item.Content
	if content == "" {
		content = "(пустой текст)"
	}
	b.WriteString(content)
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write document %s: %w", path, err)
	}
	return path, nil
}

func (r *Renderer) filename(item *entity.ProcessedItem) string {
	slug := item.Slug
	if slug == "" {
		slug = item.ItemID
	}
	return fmt.Sprintf("%s_%s_%s.md",
		kindLabel(item.Kind),
		item.PublishDate.Format("2006-01-02"),
		sanitizeSlug(slug))
}

func kindLabel(kind entity.SourceKind) string {
	switch kind {
	case entity.KindResearch:
		return "Research"
	case entity.KindNewsletter:
		return "Newsletter"
	default:
		return "Story"
	}
}

// sanitizeSlug maps every byte outside [A-Za-z0-9-_] to '-'.
func sanitizeSlug(slug string) string {
	var b strings.Builder
	for _, ch := range slug {
		switch {
		case ch >= 'a' && ch <= 'z',
			ch >= 'A' && ch <= 'Z',
			ch >= '0' && ch <= '9',
			ch == '-', ch == '_':
			b.WriteRune(ch)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
