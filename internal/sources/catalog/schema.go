package catalog

// Entry is one catalogued link in the local catalog file.
type Entry struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Link        string   `yaml:"link"`
	Owner       string   `yaml:"owner"`
	Tags        []string `yaml:"tags"`
	Description string   `yaml:"description"`
	UpdatedAt   string   `yaml:"updated_at"`
}

// CategoryBlock groups entries under one category heading.
type CategoryBlock struct {
	Category string  `yaml:"category"`
	Items    []Entry `yaml:"items"`
}

// FileConfig is the root structure of catalog.yaml.
type FileConfig []CategoryBlock
