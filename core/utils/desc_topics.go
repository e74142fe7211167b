package utils

import (
	"html/template"
	"runtime"

	log "github.com/golang/glog"
	"github.com/poseidon1214/Neptune-sub002/core/gibbs"
	"golang.org/x/sync/errgroup"
)

type TopicDesc struct {
	Id     int
	Nt     int64
	Tokens []TokenDesc
}

type TokenDesc struct {
	Word  template.HTML
	Count int64
}

// DescribeTopics lists up to maxWordsPerTopic most frequent words of
// each topic.  Word text is escaped.  A topic whose words are not in
// m, e.g. when m holds a shard of the word stats, has no tokens.
func DescribeTopics(m *gibbs.Model, v *gibbs.Vocabulary,
	maxWordsPerTopic int) ([]*TopicDesc, error) {
	log.Infof("Generating topic descriptions ... ")
	descs := make([]*TopicDesc, m.NumTopics())

	var g errgroup.Group
	g.SetLimit(2 * runtime.NumCPU())
	for topic := 0; topic < m.NumTopics(); topic++ {
		topic := topic
		g.Go(func() error {
			words := m.TopWords(topic)
			if len(words) == 0 && m.GlobalTopicHist()[topic] > 0 {
				log.Warningf("Topic %d has %d occurrences but no word",
					topic, m.GlobalTopicHist()[topic])
			}
			if len(words) > maxWordsPerTopic {
				words = words[:maxWordsPerTopic]
			}
			d := &TopicDesc{
				Id:     topic,
				Nt:     m.GlobalTopicHist()[topic],
				Tokens: make([]TokenDesc, 0, len(words))}
			for _, wc := range words {
				d.Tokens = append(d.Tokens, TokenDesc{
					template.HTML(template.HTMLEscapeString(v.TokenOrUnknown(wc.Word))),
					wc.Count})
			}
			descs[topic] = d
			return nil
		})
	}
	if e := g.Wait(); e != nil {
		return nil, e
	}

	log.Infof("Done generating topic descriptions.")
	return descs, nil
}
