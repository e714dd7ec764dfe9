// Package docs indexes the operator's official documentation (SOPs,
// templates, policies, guidelines) into the documents collection so the
// chat agent can retrieve it as RAG context.
package docs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/sportzvillage/svassist/internal/indexer"
	"github.com/sportzvillage/svassist/internal/logging"
	"github.com/sportzvillage/svassist/internal/search"
)

// Category tag every indexed documentation chunk carries, used to scope
// retrieval to official documentation.
const Category = "sv_documentation"

// docTypes maps documentation subdirectories to their descriptions.
var docTypes = map[string]string{
	"processes":  "Standard Operating Procedures",
	"templates":  "Report and Communication Templates",
	"policies":   "Quality Standards and Policies",
	"guidelines": "Best Practices and Guidelines",
}

// Manager indexes markdown documentation and retrieves relevant
// passages for prompt assembly.
type Manager struct {
	dir    string
	ix     *indexer.Indexer
	engine *search.Engine
	md     goldmark.Markdown
	log    *logging.Logger
}

func NewManager(dir string, ix *indexer.Indexer, engine *search.Engine, log *logging.Logger) *Manager {
	return &Manager{
		dir:    dir,
		ix:     ix,
		engine: engine,
		md:     goldmark.New(),
		log:    log,
	}
}

// IndexAll walks the documentation directory and indexes every
// markdown file: typed subdirectories first, then loose files at the
// root (typed "general"). A file that fails to index is logged and
// skipped.
func (m *Manager) IndexAll(ctx context.Context) error {
	indexed := 0

	for docType := range docTypes {
		matches, err := doublestar.FilepathGlob(filepath.Join(m.dir, docType, "**", "*.md"))
		if err != nil {
			return fmt.Errorf("scanning %s docs: %w", docType, err)
		}
		for _, path := range matches {
			if err := m.indexFile(ctx, path, docType); err != nil {
				m.log.Warn("skipping document", "path", path, "err", err)
				continue
			}
			indexed++
		}
	}

	rootFiles, err := doublestar.FilepathGlob(filepath.Join(m.dir, "*.md"))
	if err != nil {
		return fmt.Errorf("scanning root docs: %w", err)
	}
	for _, path := range rootFiles {
		if err := m.indexFile(ctx, path, "general"); err != nil {
			m.log.Warn("skipping document", "path", path, "err", err)
			continue
		}
		indexed++
	}

	m.log.Info("documentation indexing completed", "files", indexed)
	return nil
}

func (m *Manager) indexFile(ctx context.Context, path, docType string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	title := m.extractTitle(content)
	if title == "" {
		title = titleFromStem(stem)
	}

	docID := fmt.Sprintf("sv_doc_%s_%s", docType, stem)
	metadata := map[string]string{
		"title":    title,
		"filename": filepath.Base(path),
		"doc_type": docType,
		"category": Category,
		"source":   "official_sv_docs",
	}
	return m.ix.StoreDocument(ctx, docID, string(content), metadata)
}

// titleFromStem turns a filename stem like "monthly_report" into
// "Monthly Report".
func titleFromStem(stem string) string {
	words := strings.Fields(strings.ReplaceAll(stem, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// extractTitle returns the text of the document's first level-1
// heading, or "" when there is none.
func (m *Manager) extractTitle(source []byte) string {
	root := m.md.Parser().Parse(text.NewReader(source))
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 1 {
			continue
		}
		var buf bytes.Buffer
		_ = ast.Walk(h, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
			if t, ok := c.(*ast.Text); ok && entering {
				buf.Write(t.Segment.Value(source))
			}
			return ast.WalkContinue, nil
		})
		return strings.TrimSpace(buf.String())
	}
	return ""
}

// Relevant returns the documentation passages matching the query as a
// formatted context block, optionally restricted to one doc type. The
// empty string means nothing matched (or retrieval is degraded).
func (m *Manager) Relevant(ctx context.Context, query, docType string, maxDocs int) string {
	if maxDocs <= 0 {
		maxDocs = 3
	}
	hits, err := m.engine.SearchDocuments(ctx, query, Category, docType, maxDocs)
	if err != nil {
		m.log.Warn("documentation retrieval failed", "err", err)
		return ""
	}
	if len(hits) == 0 {
		return ""
	}

	var parts []string
	for _, h := range hits {
		title := h.Metadata["title"]
		if title == "" {
			title = "Documentation"
		}
		parts = append(parts, fmt.Sprintf("[%s]\n%s", title, h.Content))
	}
	return strings.Join(parts, "\n\n")
}
