package dataset

import (
	"context"
	"github.com/mailru/easyjson/jlexer"
	"github.com/olivere/elastic/v7"
	"github.com/pkg/errors"
	"io"
	"log"
	"sort"
)

// ElasticsearchSource loads a dataset out of an Elasticsearch index. Each document
// holds a feature vector (an array of numbers) and a numeric label.
type ElasticsearchSource struct {
	client       *elastic.Client
	index        string
	featureField string
	labelField   string
	size         int
	keepAlive    string
	err          error
}

type esDocument struct {
	id       string
	features []float64
	label    float64
}

// Load scrolls every document of the index into a dataset. Documents are ordered by
// their identifier so the same index always produces the same example order.
func (es *ElasticsearchSource) Load(ctx context.Context) (*Dataset, error) {
	if es.err != nil {
		return nil, es.err
	}
	if es.client == nil {
		return nil, errors.New("no elasticsearch client configured")
	}

	svc := es.client.Scroll(es.index).
		Size(es.size).
		KeepAlive(es.keepAlive)
	defer svc.Clear(context.Background())

	var docs []esDocument
	for {
		result, err := svc.Do(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "scrolling index %s", es.index)
		}

		for _, hit := range result.Hits.Hits {
			doc, err := es.decode(hit.Source)
			if err != nil {
				return nil, errors.Wrapf(err, "document %s", hit.Id)
			}
			doc.id = hit.Id
			docs = append(docs, doc)
		}
		log.Printf("loaded %d documents from %s", len(docs), es.index)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].id < docs[j].id
	})

	features := make([][]float64, len(docs))
	labels := make([]float64, len(docs))
	for i, doc := range docs {
		features[i] = doc.features
		labels[i] = doc.label
	}
	return New(features, labels)
}

func (es *ElasticsearchSource) decode(source []byte) (esDocument, error) {
	var (
		doc      esDocument
		hasLabel bool
	)
	l := jlexer.Lexer{Data: source}
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeString()
		l.WantColon()
		if l.IsNull() {
			l.Skip()
			l.WantComma()
			continue
		}
		switch key {
		case es.featureField:
			l.Delim('[')
			for !l.IsDelim(']') {
				doc.features = append(doc.features, l.Float64())
				l.WantComma()
			}
			l.Delim(']')
		case es.labelField:
			doc.label = l.Float64()
			hasLabel = true
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
	l.Consumed()
	if err := l.Error(); err != nil {
		return doc, err
	}
	if !hasLabel {
		return doc, errors.Errorf("missing label field %q", es.labelField)
	}
	return doc, nil
}

// ElasticsearchHosts sets the hosts for the Elasticsearch client.
func ElasticsearchHosts(hosts ...string) func(*ElasticsearchSource) {
	return func(es *ElasticsearchSource) {
		if len(hosts) == 0 {
			hosts = []string{"http://localhost:9200"}
		}
		es.client, es.err = elastic.NewClient(elastic.SetURL(hosts...), elastic.SetSniff(false))
	}
}

// ElasticsearchClient uses an existing client.
func ElasticsearchClient(client *elastic.Client) func(*ElasticsearchSource) {
	return func(es *ElasticsearchSource) {
		es.client = client
	}
}

// ElasticsearchIndex sets the index documents are read from.
func ElasticsearchIndex(index string) func(*ElasticsearchSource) {
	return func(es *ElasticsearchSource) {
		es.index = index
	}
}

// ElasticsearchFields sets the names of the feature vector and label fields.
func ElasticsearchFields(features, label string) func(*ElasticsearchSource) {
	return func(es *ElasticsearchSource) {
		es.featureField = features
		es.labelField = label
	}
}

// ElasticsearchScrollSize sets how many documents are fetched per scroll request.
func ElasticsearchScrollSize(size int) func(*ElasticsearchSource) {
	return func(es *ElasticsearchSource) {
		es.size = size
	}
}

// NewElasticsearchSource creates a new ElasticsearchSource using functional options.
func NewElasticsearchSource(options ...func(*ElasticsearchSource)) *ElasticsearchSource {
	es := &ElasticsearchSource{
		featureField: "features",
		labelField:   "label",
		size:         1000,
		keepAlive:    "1m",
	}
	for _, option := range options {
		option(es)
	}
	return es
}
