package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// document is the on-disk layout: one key per bucket, in taxonomy order.
type document struct {
	StartChapter   []string `yaml:"start_chapter"`
	EndChapter     []string `yaml:"end_chapter"`
	Solitary       []string `yaml:"solitary"`
	Dialogue       []string `yaml:"dialogue"`
	StartParagraph []string `yaml:"start_paragraph"`
	EndParagraph   []string `yaml:"end_paragraph"`
	MidParagraph   []string `yaml:"mid_paragraph"`
}

func (d *document) fields() map[Bucket]*[]string {
	return map[Bucket]*[]string{
		StartChapter:   &d.StartChapter,
		EndChapter:     &d.EndChapter,
		Solitary:       &d.Solitary,
		Dialogue:       &d.Dialogue,
		StartParagraph: &d.StartParagraph,
		EndParagraph:   &d.EndParagraph,
		MidParagraph:   &d.MidParagraph,
	}
}

// Marshal encodes a corpus as YAML.
func Marshal(c *Corpus) ([]byte, error) {
	var doc document
	fields := doc.fields()
	for _, b := range Buckets {
		*fields[b] = c.Sentences(b)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encode corpus: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode corpus: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a corpus produced by Marshal. Unknown bucket names are
// rejected; missing ones decode as empty.
func Unmarshal(data []byte) (*Corpus, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}

	c := New()
	fields := doc.fields()
	for _, b := range Buckets {
		for _, sentence := range *fields[b] {
			c.Add(b, sentence)
		}
	}
	return c, nil
}

// Save writes the corpus to path, replacing any previous file.
func Save(c *Corpus, path string) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create corpus directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".corpus-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close corpus: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace corpus: %w", err)
	}
	return nil
}

// Load reads a corpus saved with Save.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CorpusUnavailableError{Path: path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &CorpusUnavailableError{Path: path, Err: errors.New("file is empty")}
	}

	c, err := Unmarshal(data)
	if err != nil {
		return nil, &CorpusUnavailableError{Path: path, Err: err}
	}
	return c, nil
}
