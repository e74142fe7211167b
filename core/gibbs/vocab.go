package gibbs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	log "github.com/golang/glog"
)

// Vocabulary maintains the bi-directional mapping between strings and
// ids.  The id of a word is the zero-based number of the line it takes
// in the vocabulary file, so ids are in the range of [0, N), where N
// is the number of lines.
type Vocabulary struct {
	Tokens []string
	Freqs  []int64
	ids    map[string]int32
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		Tokens: make([]string, 0),
		Freqs:  make([]int64, 0),
		ids:    make(map[string]int32),
	}
}

// Load reads lines of the form "word" or "word<TAB>frequency".  Every
// line takes the next id.  A blank line or a repeated word keeps its
// slot, but only the first occurrence of a word can be looked up by
// Id.
func (v *Vocabulary) Load(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		word, rest, _ := strings.Cut(strings.TrimSuffix(scanner.Text(), "\r"), "\t")
		var freq int64
		if rest != "" {
			f, e := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
			if e != nil {
				log.Warningf("Vocabulary line %d: bad frequency %q", line, rest)
			}
			freq = f
		}
		if _, exist := v.ids[word]; exist {
			log.Warningf("Vocabulary line %d: duplicated word %q", line, word)
		}
		v.add(word, freq)
	}
	return scanner.Err()
}

func (v *Vocabulary) add(word string, freq int64) int32 {
	if v.ids == nil {
		v.buildIdMap()
	}
	id := int32(len(v.Tokens))
	v.Tokens = append(v.Tokens, word)
	v.Freqs = append(v.Freqs, freq)
	v.index(word, id)
	return id
}

// index maps word to id unless word is blank or already mapped.
func (v *Vocabulary) index(word string, id int32) {
	if word == "" {
		return
	}
	if _, exist := v.ids[word]; !exist {
		v.ids[word] = id
	}
}

// AddWord appends a word.  It is meant for building vocabularies in
// tests and panics if word already exists.
func (v *Vocabulary) AddWord(word string) int32 {
	if v.Id(word) >= 0 {
		panic(fmt.Sprintf("word %q already in vocabulary", word))
	}
	return v.add(word, 0)
}

func (v *Vocabulary) buildIdMap() {
	v.ids = make(map[string]int32)
	for i := range v.Tokens {
		v.index(v.Tokens[i], int32(i))
	}
}

func (v *Vocabulary) Len() int {
	return len(v.Tokens)
}

func (v *Vocabulary) Token(id int32) string {
	if int(id) < 0 || int(id) >= len(v.Tokens) {
		panic(fmt.Sprintf("id=%d out of range [0, %d)", id, len(v.Tokens)))
	}
	return v.Tokens[id]
}

// TokenOrUnknown returns the word of id, or UNKNOWN_<id> if id is not
// in the vocabulary.
func (v *Vocabulary) TokenOrUnknown(id int32) string {
	if v == nil || int(id) < 0 || int(id) >= len(v.Tokens) {
		return fmt.Sprintf("UNKNOWN_%d", id)
	}
	return v.Tokens[id]
}

// Id returns the index of token.  If token is not in the vocabulary,
// it returns a negative value.
func (v *Vocabulary) Id(token string) int32 {
	if v.ids == nil {
		v.buildIdMap()
	}
	if id, ok := v.ids[token]; ok {
		return id
	}
	return int32(-1)
}
