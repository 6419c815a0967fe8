// Command minify writes minified copies of the page templates and static
// assets into a dist directory, which the server prefers in production.
//
//	go run ./cmd/minify -out dist templates static
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

var mediaTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
}

func main() {
	out := flag.String("out", "dist", "Output directory")
	flag.Parse()

	dirs := flag.Args()
	if len(dirs) == 0 {
		dirs = []string{"templates", "static"}
	}

	m := newMinifier()
	for _, dir := range dirs {
		stats, err := minifyTree(m, dir, *out)
		if err != nil {
			log.Fatalf("Error minifying %s: %v", dir, err)
		}
		for _, s := range stats {
			fmt.Println(s)
		}
	}
	fmt.Printf("Minified files are in %s/\n", *out)
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.AddFunc("application/javascript", js.Minify)
	return m
}

// minifyTree minifies every known asset under src into the same relative
// path under out. Other files are copied unchanged.
func minifyTree(m *minify.M, src, out string) ([]string, error) {
	var stats []string
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		dst := filepath.Join(out, path)
		mediaType, ok := mediaTypes[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return copyFile(path, dst)
		}
		stat, err := minifyFile(m, path, dst, mediaType)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		stats = append(stats, stat)
		return nil
	})
	return stats, err
}

func minifyFile(m *minify.M, srcPath, dstPath, mediaType string) (string, error) {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return "", err
	}

	minified, err := m.Bytes(mediaType, src)
	if err != nil {
		return "", err
	}

	if err := writeFile(dstPath, minified); err != nil {
		return "", err
	}

	ratio := 0.0
	if len(src) > 0 {
		ratio = float64(len(src)-len(minified)) / float64(len(src)) * 100
	}
	return fmt.Sprintf("%s: %d bytes -> %d bytes (%.1f%% reduction)", srcPath, len(src), len(minified), ratio), nil
}

func copyFile(srcPath, dstPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	return writeFile(dstPath, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
