// print_model shows a model in human readable format.  By default it
// dumps the hyperparameters, the global topic histogram and the topic
// histogram of every word.  With -topics, it prints the top words of
// each topic instead; with -html, it serves them as a Web page.  To make
// the printed model readable, you can specify a translation file in
// addition to the vocabulary file.  For more details about
// translation, please refer to core/utils.
package main

import (
	"flag"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"strings"

	log "github.com/golang/glog"
	"github.com/poseidon1214/Neptune-sub002/core/gibbs"
	"github.com/poseidon1214/Neptune-sub002/core/utils"
	"github.com/poseidon1214/Neptune-sub002/srv"
)

func main() {
	flagModel := flag.String("model", "", "The model directory")
	flagVocab := flag.String("vocab", "", "The vocabulary file, defaults to <model>/lda.vocab")
	flagTrans := flag.String("trans", "", "The token translation file")
	flagTopics := flag.Bool("topics", false, "Print top words of topics")
	flagPercentage := flag.Float64("percentage", 1.0, "With -topics, print words that cover this fraction of N(t)")
	flagMaxWordsPerTopic := flag.Int("len", 50, "Max # tokens shown per topic in HTML")
	flagHtml := flag.String("html", "", "Serve HTML at this address instead of printing")
	flag.Parse()
	defer log.Flush()

	cfg := srv.Config{ModelDir: *flagModel, VocabFile: *flagVocab}
	v := utils.LoadVocabOrDie(cfg.VocabPath())
	if len(*flagTrans) > 0 {
		v = utils.TranslatedVocab(v, utils.LoadTranslationOrDie(*flagTrans))
	}
	m := utils.LoadModelOrDie(*flagModel)

	if len(*flagHtml) > 0 {
		descs, e := utils.DescribeTopics(m, v, *flagMaxWordsPerTopic)
		if e != nil {
			log.Fatalf("Cannot describe topics: %v", e)
		}
		http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if e := topicDescTemplate.Execute(w, descs); e != nil {
				http.Error(w, e.Error(), http.StatusInternalServerError)
				log.Errorf("Cannot execute HTML template: %v", e)
			}
		})
		log.Infof("Listening on %s", *flagHtml)
		if e := http.ListenAndServe(*flagHtml, nil); e != nil {
			log.Fatalf("ListenAndServe failed: %v", e)
		}
		return
	}

	if *flagTopics {
		m.PrintTopicsTopNWords(os.Stdout, v, *flagPercentage)
	} else {
		PrintModel(os.Stdout, m, v)
	}
}

// PrintModel writes sections "hyperparams", "global stats" and
// "word stats" of m.
func PrintModel(w io.Writer, m *gibbs.Model, v *gibbs.Vocabulary) error {
	var b strings.Builder
	b.WriteString("# hyperparams\n")
	b.WriteString(m.Hyperparams.String())
	b.WriteString("# global stats\n")
	m.GlobalStats.AppendAsString(&b)
	fmt.Fprintf(&b, "# word stats: %d words, sparse ratio %g\n",
		m.WordStats.NumWords(), m.WordStats.SparseRatio())
	m.WordStats.AppendAsString(&b, v)
	_, e := io.WriteString(w, b.String())
	return e
}

var topicDescTemplate = template.Must(template.New("topics").Parse(`<html>
<body style="background-color: #CFEDFB">
  <table>
    <thead style="background-color: #046293; color: white;">
      <tr>
        <td>ID</td>
        <td>Frequency</td>
        <td colspan=100>Words</td>
      </tr>
    </thead>
    <tbody style="background-color: #046293; color: white;">
    {{range .}}
      <tr>
        <td>{{.Id}}</td>
        <td>{{.Nt}}</td>
        {{range .Tokens}}
          <td style="background-color: #BFEFFF;">{{.Word}}</td>
          <td style="background-color: #00A0DC; color: white;">{{.Count}}</td>
        {{end}}
      </tr>
    {{end}}
    </tbody>
  </body>
</html>
`))
