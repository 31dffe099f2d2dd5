package api

import (
	"embed"
	"html/template"
	"strconv"

	"github.com/vytor/monkeyapp/internal/models"
)

//go:embed templates
var templateFS embed.FS

func LoadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		// orderLink returns the ord value a column header should link to.
		"orderLink": func(current models.ProfileOrder, key string) string {
			return current.Toggle(models.SortKey(key)).String()
		},
		"derefID": func(id *int64) int64 {
			if id == nil {
				return 0
			}
			return *id
		},
		"age": func(age *int) string {
			if age == nil {
				return "None"
			}
			return strconv.Itoa(*age)
		},
		"derefString": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"isBestFriend": func(p *models.Profile, id int64) bool {
			return p != nil && p.BestFriendID != nil && *p.BestFriendID == id
		},
	}

	return template.New("base").Funcs(funcs).ParseFS(templateFS,
		"templates/layouts/*.html",
		"templates/pages/*.html",
	)
}
