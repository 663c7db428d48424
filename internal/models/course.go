package models

// Course is the read-only projection of a course registry entry used for
// display alongside sessions. Course lifecycle lives outside this service.
type Course struct {
	ID    string `db:"id" json:"id"`
	Code  string `db:"code" json:"code"`
	Title string `db:"title" json:"title"`
	Color string `db:"color" json:"color"`
}
