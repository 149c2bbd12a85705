package stub

import (
	"embed"
	"encoding/json"
	"path"

	"swifthub/internal/core/model"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

// Fixtures is the staging data set
type Fixtures struct {
	User          model.User
	Viewer        model.User
	Repositories  []model.Repository
	Trending      []model.TrendingRepository
	Developers    []model.TrendingDeveloper
	GraphQLViewer map[string]any
}

// LoadFixtures decodes the embedded data set
func LoadFixtures() (*Fixtures, error) {
	var f Fixtures
	files := []struct {
		name string
		out  any
	}{
		{"user.json", &f.User},
		{"viewer.json", &f.Viewer},
		{"repositories.json", &f.Repositories},
		{"trending_repositories.json", &f.Trending},
		{"trending_developers.json", &f.Developers},
		{"graphql_viewer.json", &f.GraphQLViewer},
	}
	for _, file := range files {
		b, err := fixtureFS.ReadFile(path.Join("fixtures", file.name))
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, file.out); err != nil {
			return nil, err
		}
	}
	return &f, nil
}
