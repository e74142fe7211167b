package srv

import (
	"bytes"
	"expvar"
	"html/template"
	"net/http"
	"strings"

	log "github.com/golang/glog"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/poseidon1214/Neptune-sub002/core/utils"
	"golang.org/x/text/unicode/norm"
)

// Topics shown on the Web page.
const maxTopicsShown = 10

// Requests with larger bodies are rejected.
const maxBodySize = "4M"

var pageTemplate = template.Must(template.New("interpret").Parse(kTemplate))

type pageTopic struct {
	Weight float64
	Desc   *utils.TopicDesc
}

type topicProb struct {
	Topic int32   `json:"topic"`
	Prob  float64 `json:"prob"`
}

type interpretResponse struct {
	Words  []string    `json:"words"`
	Topics []topicProb `json:"topics"`
}

// Tokenize NFC-normalizes q and splits it by white spaces.
func Tokenize(q string) []string {
	return strings.Fields(norm.NFC.String(q))
}

// NewHandler serves the Web page at /, the JSON APIs at /api/interpret
// and /api/explain, and expvar at /debug/vars.  descs, usually from
// utils.DescribeTopics, describes topics on the Web page.  stats may
// be nil.
func NewHandler(engine *Engine, descs []*utils.TopicDesc,
	stats *utils.RequestStats) *echo.Echo {
	if stats == nil {
		stats = utils.NewRequestStats(0)
	}
	h := &handler{engine, descs, stats}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxBodySize))
	e.GET("/", h.page)
	e.GET("/api/interpret", h.interpret)
	e.POST("/api/explain", h.explain)
	e.GET("/debug/vars", echo.WrapHandler(expvar.Handler()))
	return e
}

type handler struct {
	engine *Engine
	descs  []*utils.TopicDesc
	stats  *utils.RequestStats
}

func (h *handler) page(c echo.Context) error {
	var data []pageTopic
	if q := c.QueryParam("q"); len(q) > 0 {
		words := Tokenize(q)
		log.V(1).Infof("query text: %v", words)
		if e := h.engine.CheckLength(len(words)); e != nil {
			return echo.NewHTTPError(http.StatusBadRequest, e.Error())
		}

		r := h.stats.Start(len(words))
		dist := h.engine.Interpret(words)
		h.stats.End(r, len(dist))

		if len(dist) > maxTopicsShown {
			dist = dist[:maxTopicsShown]
		}
		data = make([]pageTopic, len(dist))
		for i, p := range dist {
			data[i].Weight = p.Prob
			if int(p.Topic) < len(h.descs) {
				data[i].Desc = h.descs[p.Topic]
			}
		}
	}

	var buf bytes.Buffer
	if e := pageTemplate.Execute(&buf, data); e != nil {
		log.Errorf("Cannot execute HTML template: %v", e)
		return echo.NewHTTPError(http.StatusInternalServerError, e.Error())
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (h *handler) interpret(c echo.Context) error {
	words := Tokenize(c.QueryParam("q"))
	if e := h.engine.CheckLength(len(words)); e != nil {
		return echo.NewHTTPError(http.StatusBadRequest, e.Error())
	}
	r := h.stats.Start(len(words))
	dist := h.engine.Interpret(words)
	h.stats.End(r, len(dist))

	resp := interpretResponse{Words: words, Topics: make([]topicProb, len(dist))}
	for i, p := range dist {
		resp.Topics[i] = topicProb{p.Topic, p.Prob}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *handler) explain(c echo.Context) error {
	doc := new(BagOfWords)
	if e := c.Bind(doc); e != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot parse document: "+e.Error())
	}
	r := h.stats.Start(len(doc.Tokens))
	x, e := h.engine.InferAndExplain(doc)
	if e != nil {
		h.stats.End(r, -1)
		return echo.NewHTTPError(http.StatusBadRequest, e.Error())
	}
	h.stats.End(r, len(x.Topics))
	return c.JSON(http.StatusOK, x)
}

const kTemplate = `<html>
  <head>
    <style type="text/css">
      td {font-family:Courier 10px;}
    </style>
  </head>
  <body style="background-color: #B0E2FF;">
    <form name="input" action="/" method="get" >
      <input type="textarea" name="q" size=80>
      <input type="submit" value="Interpret"></input>
    </form>
    <table>
      <thead style="border: 1px; background-color: #0198E1; color: yellow;">
        <tr>
          <td>P(topic|input)</td>
          <td>N(topic)</td>
          <td colspan=100>P(word|topic)</td>
        </tr>
      </thead>
      <tbody style="background-color: #BFEFFF; border: 1px;">
        {{range .}}
        <tr>
          <td>{{.Weight}}</td>
          {{with .Desc}}
          <td>{{.Nt}}</td>
          {{range .Tokens}}
          <td>{{.Word}}</td>
          <td>{{.Count}}</td>
          {{end}}
          {{end}}
        </tr>
      {{end}}
      </tbody>
    </table>
  </body>
</html>
`
