package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/catalogscan/catalogscan/internal/config"
	"github.com/catalogscan/catalogscan/internal/model"
)

// extractList returns the non-empty values of every element matching sel,
// read from attr or from the text when attr is empty. Repeats are dropped.
func extractList(doc *goquery.Document, sel, attr string) []string {
	var out []string
	seen := make(map[string]bool)
	doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		v := value(s, attr)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	})
	return out
}

func extractCourse(doc *goquery.Document, ref model.CourseRef, sel config.Selectors) *model.RawCourse {
	course := &model.RawCourse{
		Subject:     ref.Subject,
		Number:      ref.Number,
		Title:       text(doc.Selection, sel.Title),
		Description: text(doc.Selection, sel.Description),
		Credits:     text(doc.Selection, sel.Credits),
	}
	doc.Find(sel.Section).Each(func(_ int, s *goquery.Selection) {
		course.Sections = append(course.Sections, model.RawSection{
			ID:           text(s, sel.SectionID),
			Instructor:   text(s, sel.Instructor),
			Period:       text(s, sel.Period),
			Location:     text(s, sel.Location),
			ScheduleType: text(s, sel.ScheduleType),
		})
	})
	return course
}

// text returns the collapsed text of the first match of sel under s.
func text(s *goquery.Selection, sel string) string {
	if sel == "" {
		return ""
	}
	return collapse(s.Find(sel).First().Text())
}

func value(s *goquery.Selection, attr string) string {
	if attr == "" {
		return collapse(s.Text())
	}
	v, _ := s.Attr(attr)
	return strings.TrimSpace(v)
}

// collapse trims s and folds internal whitespace runs to one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
