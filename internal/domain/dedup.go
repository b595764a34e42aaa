package domain

// UniqueArticles drops every article whose title was already seen earlier in
// the slice. Titles are compared exactly; the first occurrence wins and the
// relative order of survivors is kept. The input is not modified.
func UniqueArticles(articles []Article) []Article {
	out := make([]Article, 0, len(articles))
	seen := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		if _, ok := seen[a.Title]; ok {
			continue
		}
		seen[a.Title] = struct{}{}
		out = append(out, a)
	}
	return out
}
