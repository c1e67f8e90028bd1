package styleconfig

// Keys of a regional menu style document.
const (
	KeyMenuHeader     = "header"
	KeyMenuCategories = "categories"
	KeyMenuFooter     = "footer"
)

// Regional menus always render three columns; each column lists at most
// MaxMenuItems priced lines.
const (
	MenuColumns  = 3
	MaxMenuItems = 12
)

// MenuItem is one priced line of a regional menu category.
type MenuItem struct {
	Name  string `json:"name"`
	Price string `json:"price,omitempty"`
}

// MenuCategory is one column of a regional menu.
type MenuCategory struct {
	Name     string     `json:"name"`
	ImageURL string     `json:"imageUrl,omitempty"`
	Items    []MenuItem `json:"items"`
}

// RegionalMenuStyle is the typed view of a regional_menu content.
type RegionalMenuStyle struct {
	Header     string         `json:"header"`
	Categories []MenuCategory `json:"categories"`
	Footer     string         `json:"footer"`
}

// DecodeRegionalMenu reads a regional menu document with per-key fallback.
func DecodeRegionalMenu(doc Document) RegionalMenuStyle {
	var m RegionalMenuStyle
	doc.Get(KeyMenuHeader, &m.Header)
	doc.Get(KeyMenuCategories, &m.Categories)
	doc.Get(KeyMenuFooter, &m.Footer)
	m.Sanitize()
	return m
}

// Sanitize trims categories to three and their items to MaxMenuItems.
func (m *RegionalMenuStyle) Sanitize() {
	if len(m.Categories) > MenuColumns {
		m.Categories = m.Categories[:MenuColumns]
	}
	for i := range m.Categories {
		if len(m.Categories[i].Items) > MaxMenuItems {
			m.Categories[i].Items = m.Categories[i].Items[:MaxMenuItems]
		}
		if m.Categories[i].Items == nil {
			m.Categories[i].Items = []MenuItem{}
		}
	}
}

// Padded returns the categories padded with empty placeholders to exactly
// three, as the editor presents them.
func (m *RegionalMenuStyle) Padded() []MenuCategory {
	out := make([]MenuCategory, MenuColumns)
	copy(out, m.Categories)
	for i := range out {
		if out[i].Items == nil {
			out[i].Items = []MenuItem{}
		}
	}
	return out
}

// Document encodes the menu as a full style document.
func (m *RegionalMenuStyle) Document() Document {
	doc := Document{}
	doc.Set(KeyMenuHeader, m.Header)
	doc.Set(KeyMenuCategories, m.Padded())
	doc.Set(KeyMenuFooter, m.Footer)
	return doc
}
