package gibbs

import (
	"fmt"
	"path/filepath"

	"github.com/poseidon1214/Neptune-sub002/core/hist"
)

// Sharder defines a sequence of fixed number of buckets, and the
// allocation of a zero-based sequence of integers into these buckets.
// The allocations follows the principle that these buckets have
// similar size.
type Sharder struct {
	Shards int
}

func NewSharder(shards int) Sharder {
	if shards <= 0 {
		panic(fmt.Sprintf("shards (%d) <= 0", shards))
	}
	return Sharder{shards}
}

// Shard returns the bucket of the i-th of n integers.  The first n%b
// buckets hold one more integer than the rest.
func (s Sharder) Shard(i, n int) int {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("i (%d) out of range [0, %d)", i, n))
	}
	b := s.Shards
	if n < b {
		b = n
	}
	bucketSize := n / b
	extendedBuckets := n % b
	if boundary := extendedBuckets * (bucketSize + 1); i >= boundary {
		return extendedBuckets + (i-boundary)/bucketSize
	}
	return i / (bucketSize + 1)
}

// ShardWordStats divides the words of ws, in ascending order of id,
// into Shards word stats of similar numbers of words.  Shards beyond
// the number of words are empty.  Histograms are shared, not copied.
func (s Sharder) ShardWordStats(ws *WordStats) []*WordStats {
	shards := make([]*WordStats, s.Shards)
	for i := range shards {
		shards[i] = NewWordStats(ws.NumTopics())
	}
	i, n := 0, ws.NumWords()
	ws.ForEach(func(word int32, h *hist.OrderedSparse) error {
		shards[s.Shard(i, n)].set(word, h)
		i++
		return nil
	})
	return shards
}

// WordStatsShardFilename returns the name of the i-th of n word stats
// shards in a model directory.
func WordStatsShardFilename(i, n int) string {
	return fmt.Sprintf("%s-%05d-of-%05d", WordStatsFilename, i, n)
}

// wordStatsShards lists word stats shard files in dir, if any.
func wordStatsShards(dir string) []string {
	files, _ := filepath.Glob(filepath.Join(dir, WordStatsFilename+"-*-of-*"))
	return files
}
