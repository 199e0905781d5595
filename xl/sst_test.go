package xl

import (
	"bytes"
	"encoding/xml"
	"sync"
	"testing"
)

func TestSharedStringsIndex(t *testing.T) {
	ss := newSharedStrings()

	words := []string{"alpha", "beta", "Alpha", "alpha ", "beta", "alpha", ""}
	want := []int{0, 1, 2, 3, 1, 0, 4}
	for i, w := range words {
		if got := ss.Index(w); got != want[i] {
			t.Errorf("Index(%q) = %d, want %d", w, got, want[i])
		}
	}
	if ss.Len() != 5 {
		t.Errorf("Len() = %d, want 5", ss.Len())
	}
}

func TestSharedStringsConcurrent(t *testing.T) {
	ss := newSharedStrings()
	words := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				ss.Index(words[i%len(words)])
			}
		}()
	}
	wg.Wait()

	list := ss.Strings()
	if len(list) != len(words) {
		t.Fatalf("got %d strings, want %d", len(list), len(words))
	}
	for i, s := range list {
		if got := ss.Index(s); got != i {
			t.Errorf("Index(%q) = %d, want %d", s, got, i)
		}
	}
}

func TestSharedStringsXML(t *testing.T) {
	ss := newSharedStrings()
	ss.Index("plain")
	ss.Index(" leading")
	ss.Index("trailing ")
	ss.Index("a & b")

	var buf bytes.Buffer
	ss.writeTo(&buf)

	var doc struct {
		Count       int `xml:"count,attr"`
		UniqueCount int `xml:"uniqueCount,attr"`
		Items       []struct {
			T struct {
				Space string `xml:"http://www.w3.org/XML/1998/namespace space,attr"`
				Text  string `xml:",chardata"`
			} `xml:"t"`
		} `xml:"si"`
	}
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if doc.Count != 4 || doc.UniqueCount != 4 {
		t.Errorf("count = %d, uniqueCount = %d, want 4", doc.Count, doc.UniqueCount)
	}
	want := []struct {
		text     string
		preserve bool
	}{
		{"plain", false},
		{" leading", true},
		{"trailing ", true},
		{"a & b", false},
	}
	if len(doc.Items) != len(want) {
		t.Fatalf("got %d items, want %d", len(doc.Items), len(want))
	}
	for i, w := range want {
		it := doc.Items[i].T
		if it.Text != w.text {
			t.Errorf("item %d = %q, want %q", i, it.Text, w.text)
		}
		if (it.Space == "preserve") != w.preserve {
			t.Errorf("item %d xml:space = %q, want preserve=%t", i, it.Space, w.preserve)
		}
	}
}
