package catalog

import "time"

// Samples returns a small data set per type name. The "memory" source
// driver serves it so the pipeline can be tried without a database.
// Identifiers are unique across types since they share one index.
func Samples() map[string][]any {
	ada := &Author{ID: 1, Name: "Ada Lovelace", Email: "ada@example.org"}
	alan := &Author{ID: 2, Name: "Alan Turing", Email: "alan@example.org"}
	day := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

	return map[string][]any{
		TypeAuthor: {ada, alan},
		TypeArticle: {
			&Article{ID: 1, Title: "Notes on the Analytical Engine", Body: "The engine weaves algebraic patterns.",
				Keywords: []string{"computing", "history"}, Published: day, Author: ada, Views: 120},
			&Article{ID: 2, Title: "Computing Machinery and Intelligence", Body: "Can machines think?",
				Keywords: []string{"ai"}, Published: day.AddDate(0, 1, 0), Author: alan, Views: 300},
			&Article{ID: 3, Title: "Untitled draft", Draft: true, Published: day.AddDate(0, 2, 0)},
		},
		TypeComment: {
			&Comment{ID: 101, ArticleID: 1, Body: "A classic.", Created: day.Add(time.Hour)},
			&Comment{ID: 102, ArticleID: 2, Body: "Still relevant.", Created: day.AddDate(0, 1, 1)},
		},
	}
}
