// evaluate computes the perplexity of a corpus given a model, and
// optionally optimizes the hyperparameters of the model from the topic
// assignments of the corpus.  By default, topics of every document are
// sampled by the model.  With -assigned, every word of the corpus is a
// "word:topic" pair assigned by an external trainer, and only the
// optimization is done.
// Usage:
/*
  $GOPATH/bin/evaluate \
    -model=/tmp/make_toy_model123/model \
    -corpus=./corpus.gz \
    -optim_iter=10 \
    -output=/tmp/optimized_model
*/
package main

import (
	"flag"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"

	log "github.com/golang/glog"
	"github.com/poseidon1214/Neptune-sub002/core/gibbs"
	"github.com/poseidon1214/Neptune-sub002/core/hist"
	"github.com/poseidon1214/Neptune-sub002/core/utils"
	"github.com/poseidon1214/Neptune-sub002/srv"
	"golang.org/x/sync/errgroup"
)

func main() {
	flagModel := flag.String("model", "", "The model directory")
	flagVocab := flag.String("vocab", "", "The vocabulary file, defaults to <model>/lda.vocab")
	flagCorpus := flag.String("corpus", "", "Corpus file")
	flagAssigned := flag.Bool("assigned", false, "Corpus words are word:topic pairs")
	flagMinDocLen := flag.Int("minlen", 1, "minimum document length")
	flagMaxDocLen := flag.Int("maxlen", -1, "maximum document length")
	flagCache := flag.Int("cache", 1024, "Smoothing model cache in MB")
	flagTotal := flag.Int("total_iter", 15, "Gibbs sampling iterations per document")
	flagBurnIn := flag.Int("burn_in_iter", 10, "Burn-in iterations per document")
	flagWorkers := flag.Int("workers", runtime.NumCPU(), "concurrent samplings")
	flagShape := flag.Float64("shape", 0.0, "Shape")
	flagScale := flag.Float64("scale", 1e7, "Scale")
	flagOptimIter := flag.Int("optim_iter", 0, "Iterations of optimization, 0 for none")
	flagOutput := flag.String("output", "", "Save the optimized model into this new directory")
	flag.Parse()
	defer log.Flush()

	cfg := srv.Config{ModelDir: *flagModel, VocabFile: *flagVocab}
	v := utils.LoadVocabOrDie(cfg.VocabPath())
	m := utils.LoadModelOrDie(*flagModel)
	corpus := utils.LoadCorpusOrDie(*flagCorpus, *flagMinDocLen, *flagMaxDocLen)

	optimizer := gibbs.NewOptimizer(m.NumTopics())
	if *flagAssigned {
		n, e := CollectAssigned(corpus, v, m.NumTopics(), optimizer)
		if e != nil {
			log.Fatalf("Cannot parse assigned corpus %s: %v", *flagCorpus, e)
		}
		log.Infof("Collected statistics of %d documents", n)
	} else {
		sampler := gibbs.NewSparseLDAGibbsSampler(m, v, *flagCache, *flagTotal, *flagBurnIn)
		docs, e := SampleCorpus(sampler, corpus, *flagWorkers)
		if e != nil {
			log.Fatalf("Cannot sample corpus %s: %v", *flagCorpus, e)
		}
		logl, n := Perplexity(gibbs.NewEvaluator(m, sampler.Cache()), docs)
		if n > 0 {
			fmt.Printf("log-likelihood %g, %d words, perplexity %g\n",
				logl, n, math.Exp(-logl/float64(n)))
		} else {
			log.Warningf("No word of %s is in the model", *flagCorpus)
		}
		for _, d := range docs {
			if d.Len() > 0 {
				optimizer.CollectDocumentStatistics(d)
			}
		}
	}

	if *flagOptimIter > 0 {
		optimizer.OptimizeTopicPriors(m, *flagShape, *flagScale, *flagOptimIter)
		optimizer.OptimizeWordPrior(m, *flagOptimIter)
		fmt.Print(m.Hyperparams.String())
		if len(*flagOutput) > 0 {
			if e := m.Save(*flagOutput); e != nil {
				log.Fatalf("Cannot save model: %v", e)
			}
		}
	}
}

// SampleCorpus samples topics of documents concurrently.  Documents
// are returned in the order of corpus.
func SampleCorpus(s *gibbs.SparseLDAGibbsSampler, corpus [][]string,
	workers int) ([]*gibbs.Document, error) {
	docs := make([]*gibbs.Document, len(corpus))
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range corpus {
		i := i
		g.Go(func() error {
			docs[i] = s.Sample(corpus[i])
			return nil
		})
	}
	if e := g.Wait(); e != nil {
		return nil, e
	}
	return docs, nil
}

// Perplexity sums up log-likelihood and length of docs.
func Perplexity(ev *gibbs.Evaluator, docs []*gibbs.Document) (float64, int) {
	logl, n := 0.0, 0
	for _, d := range docs {
		l, w := ev.Perplexity(d)
		logl += l
		n += w
	}
	return logl, n
}

// CollectAssigned feeds documents of word:topic pairs into o.  Words
// out of v are skipped, and so are documents without known words.  It
// returns the number of collected documents.
func CollectAssigned(corpus [][]string, v *gibbs.Vocabulary, numTopics int,
	o *gibbs.Optimizer) (int, error) {
	n := 0
	for l, words := range corpus {
		cells := make([]gibbs.Cell, 0, len(words))
		for _, w := range words {
			i := strings.LastIndexByte(w, ':')
			if i < 0 {
				return n, fmt.Errorf("document %d: %q is not word:topic", l, w)
			}
			topic, e := strconv.Atoi(w[i+1:])
			if e != nil || topic < 0 || topic >= numTopics {
				return n, fmt.Errorf("document %d: bad topic in %q", l, w)
			}
			if id := v.Id(w[:i]); id >= 0 {
				cells = append(cells, gibbs.Cell{Word: id, Topic: int32(topic)})
			}
		}
		if len(cells) == 0 {
			continue
		}
		d := gibbs.NewForeignDocument(cells, hist.NewBuffer(min(len(cells), numTopics)), numTopics)
		d.CalculateTopicHistogram()
		o.CollectDocumentStatistics(d)
		n++
	}
	return n, nil
}
