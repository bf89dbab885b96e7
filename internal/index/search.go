package index

import (
	"sort"
	"strings"
)

// trigrams returns the set of lowercase three-byte shingles of s.
func trigrams(s string) map[string]struct{} {
	s = strings.ToLower(s)
	grams := make(map[string]struct{})
	for i := 0; i+3 <= len(s); i++ {
		grams[s[i:i+3]] = struct{}{}
	}
	return grams
}

// Result is one search hit: the document id and its display title.
type Result struct {
	Doc   string `json:"doc"`
	Title string `json:"title"`
}

// Search ranks documents against query. Documents whose title or id
// contains the query verbatim come first, in title order; the rest are
// ranked by their best paragraph's trigram overlap with the query, in
// descending order. Documents with no overlap at all are omitted.
func (ix *Index) Search(query string) []Result {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	exact := make(map[string]bool)
	for doc, title := range ix.Docs {
		if strings.Contains(strings.ToLower(title), q) || strings.Contains(strings.ToLower(doc), q) {
			exact[doc] = true
		}
	}

	qgrams := trigrams(q)
	scores := make(map[string]int)
	for _, p := range ix.shards {
		if exact[p.doc] {
			continue
		}
		n := 0
		for g := range qgrams {
			if _, ok := p.grams[g]; ok {
				n++
			}
		}
		if n > scores[p.doc] {
			scores[p.doc] = n
		}
	}

	var head, tail []Result
	for doc := range exact {
		head = append(head, Result{Doc: doc, Title: ix.Docs[doc]})
	}
	sort.Slice(head, func(i, j int) bool { return head[i].Title < head[j].Title })

	for doc, score := range scores {
		if score > 0 {
			tail = append(tail, Result{Doc: doc, Title: ix.Docs[doc]})
		}
	}
	sort.Slice(tail, func(i, j int) bool {
		si, sj := scores[tail[i].Doc], scores[tail[j].Doc]
		if si != sj {
			return si > sj
		}
		return tail[i].Doc < tail[j].Doc
	})

	return append(head, tail...)
}
