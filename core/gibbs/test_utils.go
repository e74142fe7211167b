package gibbs

import (
	"strings"
)

const (
	testingV = 6
	testingK = 2

	testingAlpha = 0.1
	testingBeta  = 0.01

	// Occurrences of every word in its topic.
	testingWordCount = 10000

	testingShape     = 0.0
	testingScale     = 1e7
	testingOptimIter = 5
)

// CreateTestingVocabulary returns a vocabulary of testingV words:
// apple, orange, banana, dog, cat and tiger, with ids 0 to 5.
func CreateTestingVocabulary() *Vocabulary {
	v := NewVocabulary()
	e := v.Load(strings.NewReader(
		"apple\t100\norange\t90\nbanana\t80\ndog\t70\ncat\t60\ntiger\t50\n"))
	if e != nil {
		panic("CreateTestingVocabulary: " + e.Error())
	}
	return v
}

// CreateTestingModel creates a model with:
//
//	symmetric topic prior: 0.1
//	symmetric word prior:  0.01
//	word stats:   topic 0    topic 1
//	     apple:   10000
//	    orange:   10000
//	    banana:   10000
//	       dog:              10000
//	       cat:              10000
//	     tiger:              10000
//	global stats: 30000      30000
func CreateTestingModel() *Model {
	m := NewModel(testingK)
	m.Hyperparams.Set(testingAlpha, testingK, testingBeta, testingV)
	for word := int32(0); word < testingV; word++ {
		topic := int(word / 3)
		m.WordStats.Add(word, topic, testingWordCount)
		m.GlobalStats.Hist.Inc(topic, testingWordCount)
	}
	return m
}
