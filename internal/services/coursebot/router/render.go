package router

// View identifies which screen a render shows.
type View int

const (
	ViewNone View = iota
	ViewList
	ViewDetail
)

func (v View) String() string {
	switch v {
	case ViewList:
		return "list"
	case ViewDetail:
		return "detail"
	default:
		return "none"
	}
}

// Button is one inline keyboard button. Exactly one of Payload or URL is set.
type Button struct {
	Label   string
	Payload string
	URL     string
}

// Render is the instruction handed to a transport. Text is HTML when HTML is
// true (bold and strikethrough only). Rows lists one button per row.
type Render struct {
	View     View
	CourseID string
	Text     string
	HTML     bool
	Rows     [][]Button
}

// HandoffURL returns the payment link of a detail render, if any.
func (r Render) HandoffURL() string {
	for _, row := range r.Rows {
		for _, button := range row {
			if button.URL != "" {
				return button.URL
			}
		}
	}
	return ""
}
