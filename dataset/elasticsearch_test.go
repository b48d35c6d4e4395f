package dataset

import (
	"context"
	"testing"
)

func TestElasticsearchDecode(t *testing.T) {
	es := NewElasticsearchSource(ElasticsearchFields("vec", "class"))

	doc, err := es.decode([]byte(`{"title":"a","vec":[1,2.5,-3],"meta":{"x":[1,2]},"class":1}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.features) != 3 || doc.features[1] != 2.5 || doc.label != 1 {
		t.Fatalf("got %+v", doc)
	}

	if _, err := es.decode([]byte(`{"vec":[1]}`)); err == nil {
		t.Fatal("expected missing label error")
	}
	if _, err := es.decode([]byte(`{"vec":[1,"x"],"class":0}`)); err == nil {
		t.Fatal("expected malformed vector error")
	}
}

func TestElasticsearchNoClient(t *testing.T) {
	if _, err := NewElasticsearchSource().Load(context.Background()); err == nil {
		t.Fatal("expected error without a client")
	}
}
