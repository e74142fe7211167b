// infer explains every document of a corpus file, one document of
// white space separated words per line, and writes one JSON object per
// document in input order.  Input and output may be gzip or zstd
// compressed by their file extensions.
/*
  $GOPATH/bin/infer \
    -model=/tmp/make_toy_model123/model \
    -corpus=./corpus.gz \
    -output=./topics.jsonl.zst \
    -workers=8
*/
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"io"
	"os"
	"runtime"

	log "github.com/golang/glog"
	"github.com/poseidon1214/Neptune-sub002/core/utils"
	"github.com/poseidon1214/Neptune-sub002/srv"
	"golang.org/x/sync/errgroup"
)

// Documents explained together before their results are written.
const batchSize = 1024

type result struct {
	Line int `json:"line"`
	*srv.Explanation
}

func main() {
	cfg := srv.DefaultConfig()
	cfg.RegisterAsFlag(flag.CommandLine)
	flagModel := flag.String("model", "", "model directory, overrides -config")
	flagCorpus := flag.String("corpus", "", "corpus file")
	flagOutput := flag.String("output", "", "output file, defaults to stdout")
	flagMinDocLen := flag.Int("minlen", 1, "minimum document length")
	flagMaxDocLen := flag.Int("maxlen", -1, "maximum document length, at most max_document_length of -config")
	flagWorkers := flag.Int("workers", runtime.NumCPU(), "concurrent inferences")
	flag.Parse()
	defer log.Flush()

	if len(*flagModel) > 0 {
		cfg.ModelDir = *flagModel
	}
	engine, e := srv.NewEngine(cfg)
	if e != nil {
		log.Fatalf("Cannot create engine: %v", e)
	}
	maxLen := *flagMaxDocLen
	if maxLen <= 0 || maxLen > cfg.MaxDocumentLength {
		maxLen = cfg.MaxDocumentLength
	}

	var out io.WriteCloser = nopCloser{os.Stdout}
	if len(*flagOutput) > 0 {
		if out, e = utils.CreateCompressed(*flagOutput); e != nil {
			log.Fatalf("Cannot create %s: %v", *flagOutput, e)
		}
	}

	if e := Infer(engine, *flagCorpus, *flagMinDocLen, maxLen,
		*flagWorkers, out); e != nil {
		log.Fatalf("%v", e)
	}
	if e := out.Close(); e != nil {
		log.Fatalf("Cannot close output: %v", e)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Infer writes a result of each accepted document of corpus to w.
func Infer(engine *srv.Engine, corpus string, minLen, maxLen, workers int,
	w io.Writer) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	var lines []int
	var docs [][]string
	flush := func() error {
		results := make([]result, len(docs))
		var g errgroup.Group
		g.SetLimit(workers)
		for i := range docs {
			i := i
			g.Go(func() error {
				x, e := engine.InferAndExplain(bagOfWords(docs[i]))
				results[i] = result{lines[i], x}
				return e
			})
		}
		if e := g.Wait(); e != nil {
			return e
		}
		for i := range results {
			if e := enc.Encode(&results[i]); e != nil {
				return e
			}
		}
		lines, docs = lines[:0], docs[:0]
		return nil
	}

	if e := utils.ForEachDocument(corpus, minLen, maxLen, func(line int, words []string) error {
		lines = append(lines, line)
		docs = append(docs, words)
		if len(docs) >= batchSize {
			return flush()
		}
		return nil
	}); e != nil {
		return e
	}
	if e := flush(); e != nil {
		return e
	}
	return bw.Flush()
}

func bagOfWords(words []string) *srv.BagOfWords {
	b := &srv.BagOfWords{Tokens: make([]srv.Token, len(words))}
	for i, w := range words {
		b.Tokens[i] = srv.Token{Text: w, TF: 1}
	}
	return b
}
