package report

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// MarkdownContentType is the media type of downloaded documents.
const MarkdownContentType = "text/markdown; charset=utf-8"

// maxNameAttempts bounds the " (n)" suffixes tried before giving up.
const maxNameAttempts = 1000

// ErrNameExhausted is returned when every candidate file name is taken.
var ErrNameExhausted = errors.New("no free file name for document")

// Save writes doc into dir under its suggested file name and returns the
// path written. An existing file is never overwritten: " (2)", " (3)" and
// so on are inserted before the extension until a free name is found.
//
// Design decision: The body is written to a temporary file in the same
// directory and then linked into place, so a crash never leaves a
// truncated document under the final name. On filesystems without hard
// links (FAT, exFAT, some network shares) the document is written to an
// exclusively created file instead.
func Save(dir string, doc Document) (path string, err error) {
	return save(dir, doc, os.Link)
}

// save is Save with a replaceable link function.
func save(dir string, doc Document, link func(oldname, newname string) error) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ytanalyzer-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// Removes the temp file on every path; after a successful link the
		// document lives on under its final name.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.WriteString(doc.Body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return "", fmt.Errorf("failed to set document permissions: %w", err)
	}

	name := doc.Filename
	if name == "" {
		name = Filename(doc.Title, doc.GeneratedAt)
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	linkable := true
	for i := 1; i <= maxNameAttempts; i++ {
		candidate := name
		if i > 1 {
			candidate = stem + " (" + strconv.Itoa(i) + ")" + ext
		}
		target := filepath.Join(dir, candidate)

		if linkable {
			// os.Link fails if target exists, which makes the existence
			// check and the placement a single step.
			err := link(tmpName, target)
			if err == nil {
				return target, nil
			}
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			linkable = false
		}

		err := writeExclusive(target, doc.Body)
		if err == nil {
			return target, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to save document: %w", err)
		}
	}
	return "", ErrNameExhausted
}

// writeExclusive creates path, failing with fs.ErrExist if it exists, and
// writes body into it. A partly written file is removed.
func writeExclusive(path, body string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600) //nolint:gosec // path is built from a sanitized name
	if err != nil {
		return err
	}
	if _, err := f.WriteString(body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// ServeAttachment writes doc as a file download. Non-ASCII file names are
// encoded in the Content-Disposition header as RFC 2231 UTF-8 parameters.
func ServeAttachment(w http.ResponseWriter, doc Document) {
	name := doc.Filename
	if name == "" {
		name = Filename(doc.Title, doc.GeneratedAt)
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", MarkdownContentType)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Bytes())
}
