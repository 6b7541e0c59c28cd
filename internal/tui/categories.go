package tui

// Category is one page of the settings editor
type Category struct {
	ID          string
	Name        string
	Description string
}

var Categories = []Category{
	{ID: "remix", Name: "Remix Service", Description: "Patch service endpoint and timeout"},
	{ID: "output", Name: "Output", Description: "Output file and overwrite behavior"},
	{ID: "fetch", Name: "Fetch", Description: "Source PDF download settings"},
	{ID: "cache", Name: "Cache", Description: "Download cache and TTL"},
	{ID: "logging", Name: "Logging", Description: "Log level and format"},
}

func GetCategoryByID(id string) *Category {
	for i := range Categories {
		if Categories[i].ID == id {
			return &Categories[i]
		}
	}
	return nil
}
