package search

import (
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/sirupsen/logrus"
)

// Document is what gets indexed per material: the metadata plus the
// generated note and summary text, so a query can hit any of them.
type Document struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Note    string   `json:"note"`
	Summary string   `json:"summary"`
}

// Result is one search hit.
type Result struct {
	MaterialID string  `json:"material_id"`
	Score      float64 `json:"score"`
	Fragments  string  `json:"fragments,omitempty"`
}

// Index is a full-text index over study materials.
type Index struct {
	idx bleve.Index
	log *logrus.Logger
}

// Open opens the index at path, creating it if it does not exist.
func Open(path string, log *logrus.Logger) (*Index, error) {
	if log == nil {
		log = logrus.New()
	}

	var idx bleve.Index
	var err error
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		mapping := bleve.NewIndexMapping()
		idx, err = bleve.New(path, mapping)
	} else {
		idx, err = bleve.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}

	return &Index{idx: idx, log: log}, nil
}

// IndexMaterial adds or replaces the material in the index.
func (s *Index) IndexMaterial(doc Document) error {
	if doc.ID == "" {
		return fmt.Errorf("cannot index material without id")
	}
	err := s.idx.Index(doc.ID, map[string]interface{}{
		"title":   doc.Title,
		"tags":    strings.Join(doc.Tags, " "),
		"note":    doc.Note,
		"summary": doc.Summary,
	})
	if err != nil {
		return fmt.Errorf("failed to index material %s: %w", doc.ID, err)
	}
	return nil
}

// Remove drops the material from the index. Removing an ID that was never
// indexed is not an error.
func (s *Index) Remove(materialID string) error {
	return s.idx.Delete(materialID)
}

// Search runs a full-text query over titles, tags, notes, and summaries
// and returns up to topK hits, best first.
func (s *Index) Search(query string, topK int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if topK <= 0 {
		topK = 10
	}

	matchQuery := bleve.NewMatchQuery(query)
	searchReq := bleve.NewSearchRequest(matchQuery)
	searchReq.Size = topK
	searchReq.Highlight = bleve.NewHighlight()

	res, err := s.idx.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("search error: %w", err)
	}
	s.log.Debugf("search %q: %d hits in %s", query, len(res.Hits), res.Took)

	var results []Result
	for _, hit := range res.Hits {
		r := Result{MaterialID: hit.ID, Score: hit.Score}
		for _, frags := range hit.Fragments {
			if len(frags) > 0 {
				r.Fragments = frags[0]
				break
			}
		}
		results = append(results, r)
	}
	return results, nil
}

// Count returns the number of indexed materials.
func (s *Index) Count() (uint64, error) {
	return s.idx.DocCount()
}

func (s *Index) Close() error {
	if s.idx != nil {
		return s.idx.Close()
	}
	return nil
}
