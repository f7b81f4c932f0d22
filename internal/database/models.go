package database

// Protein represents a STRING protein record: a species-scoped canonical
// Ensembl identifier. Rows are write-once; there is no update path.
type Protein struct {
	EnsemblID string `json:"ensembl_id"`
	Species   string `json:"species"`
}

// Interaction represents a scored protein-protein link. The ordered pair of
// identifiers is the primary key; directionality in storage does not imply
// biological directionality.
type Interaction struct {
	EnsemblID1    string `json:"ensembl_id_1"`
	EnsemblID2    string `json:"ensembl_id_2"`
	CombinedScore int    `json:"combined_score"`
}

// Alias associates an external-facing symbol and its provenance tag with a
// canonical protein identifier. The same alias string may recur per distinct
// source.
type Alias struct {
	EnsemblID string `json:"ensembl_id"`
	Alias     string `json:"alias"`
	Sources   string `json:"sources"`
}

// Link is an interaction pair with the score already consumed as a filter.
// Network construction uses links as raw undirected edges.
type Link struct {
	EnsemblID1 string `json:"ensembl_id_1"`
	EnsemblID2 string `json:"ensembl_id_2"`
}
