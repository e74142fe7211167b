// make_toy_model writes the testing model of core/gibbs and its
// vocabulary into a temporary directory, which can then be used to
// try cmd/interpreter and cmd/print_model.  It prints the name of the
// model directory.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/golang/glog"
	"github.com/poseidon1214/Neptune-sub002/core/gibbs"
	"github.com/poseidon1214/Neptune-sub002/core/utils"
)

func main() {
	flagShards := flag.Int("shards", 0, "also write word stats in this many shards")
	flagVocabExt := flag.String("vocab_ext", "", "vocabulary file extension: \"\", .gz or .zst")
	flag.Parse()
	defer log.Flush()

	dir, e := os.MkdirTemp("", "make_toy_model")
	if e != nil {
		log.Fatalf("Cannot create temp dir: %v", e)
	}
	modelDir := filepath.Join(dir, "model")
	if e := MakeToyModel(modelDir, *flagShards, *flagVocabExt); e != nil {
		log.Fatalf("%v", e)
	}
	fmt.Print(modelDir)
}

// MakeToyModel saves the testing model into modelDir, which must not
// exist, and its vocabulary as modelDir/lda.vocab<vocabExt>.
func MakeToyModel(modelDir string, shards int, vocabExt string) error {
	m := gibbs.CreateTestingModel()
	v := gibbs.CreateTestingVocabulary()

	if e := m.Save(modelDir); e != nil {
		return fmt.Errorf("Cannot save model: %w", e)
	}
	if shards > 0 {
		if e := m.SaveWordStatsShards(modelDir, shards); e != nil {
			return fmt.Errorf("Cannot save word stats shards: %w", e)
		}
	}

	w, e := utils.CreateCompressed(filepath.Join(modelDir, gibbs.VocabFilename+vocabExt))
	if e != nil {
		return fmt.Errorf("Cannot create vocab file: %w", e)
	}
	for i, token := range v.Tokens {
		if _, e := fmt.Fprintf(w, "%s\t%d\n", token, v.Freqs[i]); e != nil {
			w.Close()
			return fmt.Errorf("Cannot write vocab file: %w", e)
		}
	}
	return w.Close()
}
