// Package article loads plain-text and Markdown articles from files.
package article

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuiread/internal/model"
)

const maxLineBytes = 1 << 20

// Load reads an article from path. Paragraphs are separated by blank lines.
func Load(path string) (model.Article, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return model.Article{}, fmt.Errorf("failed to resolve path: %w", err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return model.Article{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only article.
			_ = cerr
		}
	}()
	return Parse(abs, file)
}

// Parse builds an article from r. A leading "# " heading becomes the title;
// otherwise the file name is used.
func Parse(path string, r io.Reader) (model.Article, error) {
	art := model.Article{
		ID:   SubjectID(path),
		Path: path,
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		art.Paragraphs = append(art.Paragraphs, strings.Join(current, " "))
		current = nil
	}
	for scanner.Scan() {
		line := strings.Join(strings.Fields(scanner.Text()), " ")
		if line == "" {
			flush()
			continue
		}
		if art.Title == "" && len(art.Paragraphs) == 0 && len(current) == 0 && strings.HasPrefix(line, "# ") {
			art.Title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			continue
		}
		current = append(current, line)
	}
	if err := scanner.Err(); err != nil {
		return model.Article{}, err
	}
	flush()

	if len(art.Paragraphs) == 0 {
		return model.Article{}, fmt.Errorf("article is empty")
	}
	if art.Title == "" {
		base := filepath.Base(path)
		art.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return art, nil
}

// SubjectID derives a stable reward subject id from an absolute path.
func SubjectID(absPath string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(absPath))).String()
}
