package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/golang/glog"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/poseidon1214/Neptune-sub002/core/gibbs"
)

// OpenCompressed opens filename for reading and decompresses it
// according to its extension: .gz for gzip, .zst for zstd, and no
// decompression otherwise.
func OpenCompressed(filename string) (io.ReadCloser, error) {
	f, e := os.Open(filename)
	if e != nil {
		return nil, e
	}
	switch filepath.Ext(filename) {
	case ".gz":
		r, e := gzip.NewReader(f)
		if e != nil {
			f.Close()
			return nil, fmt.Errorf("gzip %s: %w", filename, e)
		}
		return &readCloser{r, func() error { r.Close(); return f.Close() }}, nil
	case ".zst":
		r, e := zstd.NewReader(f)
		if e != nil {
			f.Close()
			return nil, fmt.Errorf("zstd %s: %w", filename, e)
		}
		return &readCloser{r, func() error { r.Close(); return f.Close() }}, nil
	}
	return f, nil
}

// CreateCompressed creates filename for writing and compresses it by
// its extension, as OpenCompressed does.
func CreateCompressed(filename string) (io.WriteCloser, error) {
	f, e := os.Create(filename)
	if e != nil {
		return nil, e
	}
	var w io.WriteCloser
	switch filepath.Ext(filename) {
	case ".gz":
		w = gzip.NewWriter(f)
	case ".zst":
		if w, e = zstd.NewWriter(f); e != nil {
			f.Close()
			return nil, fmt.Errorf("zstd %s: %w", filename, e)
		}
	default:
		return f, nil
	}
	return &writeCloser{w, func() error {
		if e := w.Close(); e != nil {
			f.Close()
			return e
		}
		return f.Close()
	}}, nil
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r *readCloser) Close() error { return r.close() }

type writeCloser struct {
	io.Writer
	close func() error
}

func (w *writeCloser) Close() error { return w.close() }

func LoadVocab(filename string) (*gibbs.Vocabulary, error) {
	r, e := OpenCompressed(filename)
	if e != nil {
		return nil, e
	}
	defer r.Close()
	vocab := gibbs.NewVocabulary()
	if e := vocab.Load(r); e != nil {
		return nil, fmt.Errorf("loading vocab %s: %w", filename, e)
	}
	return vocab, nil
}

func LoadVocabOrDie(filename string) *gibbs.Vocabulary {
	log.Infof("Loading vocab %s ... ", filename)
	vocab, e := LoadVocab(filename)
	if e != nil {
		log.Fatalf("Failed loading vocab file %s: %v", filename, e)
	}
	log.Infof("Done loading vocabulary, %d words.", vocab.Len())
	return vocab
}

func LoadModelOrDie(dir string) *gibbs.Model {
	m, e := gibbs.LoadModel(dir)
	if e != nil {
		log.Fatalf("Cannot load model %s: %v", dir, e)
	}
	return m
}

// ForEachDocument calls p with the whitespace separated words of each
// line of filename.  Lines with fewer than minLen words, or more than
// maxLen words, are skipped if minLen or maxLen is positive.
func ForEachDocument(filename string, minLen, maxLen int,
	p func(line int, words []string) error) error {
	r, e := OpenCompressed(filename)
	if e != nil {
		return e
	}
	defer r.Close()

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	scanned, accepted := 0, 0
	for s.Scan() {
		scanned++
		words := strings.Fields(s.Text())
		if (minLen > 0 && len(words) < minLen) || (maxLen > 0 && len(words) > maxLen) {
			continue
		}
		accepted++
		if e := p(scanned-1, words); e != nil {
			return e
		}
	}
	if e := s.Err(); e != nil {
		return fmt.Errorf("reading %s: %w", filename, e)
	}
	log.Infof("Done reading %s: %d out of %d documents.", filename, accepted, scanned)
	return nil
}

func LoadCorpusOrDie(filename string, minLen, maxLen int) [][]string {
	log.Infof("Loading corpus %s ... ", filename)
	var corpus [][]string
	if e := ForEachDocument(filename, minLen, maxLen, func(_ int, words []string) error {
		corpus = append(corpus, words)
		return nil
	}); e != nil {
		log.Fatalf("Failed loading corpus %s: %v", filename, e)
	}
	return corpus
}

type Trans map[string]string

// TranslatedVocab replaces words of v by their translations, e.g.
// advertiser ids by company names, for display.
func TranslatedVocab(v *gibbs.Vocabulary, tr Trans) *gibbs.Vocabulary {
	log.Infof("Translating vocabulary ... ")
	for i, s := range v.Tokens {
		if t, exist := tr[s]; exist {
			v.Tokens[i] = t
		} else {
			log.Warningf("Cannot translate %s", s)
		}
	}
	log.Infof("Done with translating vocabulary.")
	return v
}

// LoadTranslation reads lines of "word translation...".
func LoadTranslation(filename string) (Trans, error) {
	r, e := OpenCompressed(filename)
	if e != nil {
		return nil, e
	}
	defer r.Close()

	trans := make(Trans)
	s := bufio.NewScanner(r)
	for s.Scan() {
		fs := strings.Fields(s.Text())
		if len(fs) == 0 {
			continue
		}
		if len(fs) < 2 {
			return nil, fmt.Errorf("%v has less than 2 fields", fs)
		}
		if _, exist := trans[fs[0]]; exist {
			return nil, fmt.Errorf("duplicated word %s in %s", fs[0], filename)
		}
		trans[fs[0]] = strings.Join(fs[1:], " ")
	}
	if e := s.Err(); e != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, e)
	}
	return trans, nil
}

func LoadTranslationOrDie(filename string) Trans {
	log.Infof("Loading translation %s ...", filename)
	trans, e := LoadTranslation(filename)
	if e != nil {
		log.Fatalf("Failed loading translation: %v", e)
	}
	log.Infof("Done loading translation, %d entries.", len(trans))
	return trans
}
