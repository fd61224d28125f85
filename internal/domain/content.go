package domain

type Article struct {
	ID          int64  `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Body        string `json:"body" yaml:"body"`
	Category    string `json:"category" yaml:"category"`
	PublishedAt string `json:"published_at" yaml:"published_at"`
	Author      string `json:"author" yaml:"author"`
}

type Tip struct {
	ID       int64  `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Body     string `json:"body" yaml:"body"`
	Category string `json:"category" yaml:"category"`
}

type MaterialGuide struct {
	Material  string   `json:"material" yaml:"material"`
	Accepted  []string `json:"accepted" yaml:"accepted"`
	Rejected  []string `json:"rejected" yaml:"rejected"`
	Tips      string   `json:"tips" yaml:"tips"`
	BinColour string   `json:"bin_colour" yaml:"bin_colour"`
}

type EducationalContent struct {
	Articles  []Article       `json:"articles" yaml:"articles"`
	Tips      []Tip           `json:"tips" yaml:"tips"`
	Materials []MaterialGuide `json:"materials" yaml:"materials"`
}
