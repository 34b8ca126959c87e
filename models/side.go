package models

// Side identifies one of the two political partitions of the document
// store. Every retrieval and every generated response belongs to exactly
// one side; the two are never merged at the data layer.
type Side string

const (
	SideRed  Side = "Red"
	SideBlue Side = "Blue"
)

// RetrievedDocument is the top similarity match for a query within one
// side's collection, together with the source link it was scraped from.
type RetrievedDocument struct {
	Text   string
	Source string
	Side   Side
}
