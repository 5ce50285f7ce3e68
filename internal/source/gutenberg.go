package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Book is a public-domain novel available from Project Gutenberg.
type Book struct {
	Filename string
	Title    string
	URL      string
}

// Catalogue lists the novels fetched by the download command. Dialogue-heavy
// books keep the dialogue bucket well stocked.
var Catalogue = []Book{
	{
		Filename: "pride-and-prejudice.txt",
		Title:    "Pride and Prejudice",
		URL:      "https://www.gutenberg.org/cache/epub/1342/pg1342.txt",
	},
	{
		Filename: "a-tale-of-two-cities.txt",
		Title:    "A Tale of Two Cities",
		URL:      "https://www.gutenberg.org/cache/epub/98/pg98.txt",
	},
	{
		Filename: "sherlock-holmes.txt",
		Title:    "The Adventures of Sherlock Holmes",
		URL:      "https://www.gutenberg.org/cache/epub/1661/pg1661.txt",
	},
	{
		Filename: "frankenstein.txt",
		Title:    "Frankenstein",
		URL:      "https://www.gutenberg.org/cache/epub/84/pg84.txt",
	},
	{
		Filename: "alice-in-wonderland.txt",
		Title:    "Alice's Adventures in Wonderland",
		URL:      "https://www.gutenberg.org/cache/epub/11/pg11.txt",
	},
	{
		Filename: "the-time-machine.txt",
		Title:    "The Time Machine",
		URL:      "https://www.gutenberg.org/cache/epub/35/pg35.txt",
	},
	{
		Filename: "the-war-of-the-worlds.txt",
		Title:    "The War of the Worlds",
		URL:      "https://www.gutenberg.org/cache/epub/36/pg36.txt",
	},
	{
		Filename: "dracula.txt",
		Title:    "Dracula",
		URL:      "https://www.gutenberg.org/cache/epub/345/pg345.txt",
	},
}

// Downloader fetches catalogue books into a directory.
type Downloader struct {
	httpClient *http.Client
	dir        string
	userAgent  string
}

// NewDownloader creates a downloader writing into dir.
func NewDownloader(dir, userAgent string, client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Downloader{httpClient: client, dir: dir, userAgent: userAgent}
}

// Path returns where book is stored.
func (d *Downloader) Path(book Book) string {
	return filepath.Join(d.dir, book.Filename)
}

// Exists reports whether book was already downloaded.
func (d *Downloader) Exists(book Book) bool {
	_, err := os.Stat(d.Path(book))
	return err == nil
}

// Download fetches book. The file only appears once the body is complete.
func (d *Downloader) Download(ctx context.Context, book Book) error {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("create books directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, book.URL, nil)
	if err != nil {
		return err
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(d.dir, ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), d.Path(book))
}
