// interpreter serves a Web page and JSON APIs that interpret text into
// topics of a Peacock LDA model.  The configuration comes from -config,
// which is either JSON or a JSON/YAML file, and can be overridden by
// other flags.
package main

import (
	"flag"
	"net/http"

	log "github.com/golang/glog"
	"github.com/poseidon1214/Neptune-sub002/core/utils"
	"github.com/poseidon1214/Neptune-sub002/srv"
)

func main() {
	cfg := srv.DefaultConfig()
	cfg.RegisterAsFlag(flag.CommandLine)
	flagAddr := flag.String("addr", "", "listening address")
	flagModel := flag.String("model", "", "model directory")
	flagVocab := flag.String("vocab", "", "vocabulary file, defaults to <model>/lda.vocab")
	flagTrans := flag.String("trans", "", "vocabulary translation file")
	flagAlgorithm := flag.String("algorithm", "", "gibbs, hill_climb, multi_chains_gibbs or multi_trials_hill_climb")
	flagCache := flag.Int("cache", -1, "Cache in MB")
	flag.Parse()
	defer log.Flush()

	override(&cfg.Addr, *flagAddr)
	override(&cfg.ModelDir, *flagModel)
	override(&cfg.VocabFile, *flagVocab)
	override(&cfg.Algorithm, *flagAlgorithm)
	if *flagCache >= 0 {
		cfg.CacheMB = *flagCache
	}

	engine, e := srv.NewEngine(cfg)
	if e != nil {
		log.Fatalf("Cannot create engine: %v", e)
	}
	v := engine.Vocabulary()
	if len(*flagTrans) > 0 {
		// Translation only changes the Web page, so describe topics
		// with a translated copy.
		tv := *v
		tv.Tokens = append([]string(nil), v.Tokens...)
		v = utils.TranslatedVocab(&tv, utils.LoadTranslationOrDie(*flagTrans))
	}
	descs, e := utils.DescribeTopics(engine.Model(), v, cfg.MaxWordsPerTopic)
	if e != nil {
		log.Fatalf("Cannot describe topics: %v", e)
	}

	stats := utils.NewRequestStats(100)
	utils.PublishRequestStats(stats)

	log.Infof("Listening on %s", cfg.Addr)
	if e := http.ListenAndServe(cfg.Addr, srv.NewHandler(engine, descs, stats)); e != nil {
		log.Fatalf("ListenAndServe failed: %v", e)
	}
}

func override(field *string, value string) {
	if len(value) > 0 {
		*field = value
	}
}
