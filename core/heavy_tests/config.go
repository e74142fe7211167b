package heavy_tests

import (
	"flag"
	"os"
)

var (
	flagRunLongTests = flag.Bool("run_long_tests", false,
		"If to run tests that take a long time to finish")
	flagBigModel = flag.String("big_model", os.Getenv("PEACOCK_BIG_MODEL"),
		"A model directory with a real big model and its lda.vocab, "+
			"suitable for performance benchmark")
)

const (
	kCacheMB   = 100
	kChains    = 5
	kTotal     = 15
	kBurnIn    = 10
	kOptimIter = 5
	kShape     = 0.0
	kScale     = 1e7
)
