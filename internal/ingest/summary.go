package ingest

import (
	"fmt"
	"io"
	"sort"

	"github.com/pageza/dininghall/backend/internal/model"
)

// Summary counts what a snapshot holds, for CLI output.
type Summary struct {
	Days    int
	Items   int
	PerMeal map[model.MealType]int
}

func Summarize(snap *model.MenuSnapshot) Summary {
	s := Summary{PerMeal: make(map[model.MealType]int)}
	for _, day := range snap.Days() {
		s.Days++
		for _, r := range day.Records() {
			s.Items++
			s.PerMeal[r.MealType]++
		}
	}
	return s
}

// Meals lists the counted meal types, standard periods first.
func (s Summary) Meals() []model.MealType {
	var out, extra []model.MealType
	for _, m := range model.TrackedMealTypes {
		if _, ok := s.PerMeal[m]; ok {
			out = append(out, m)
		}
	}
	for m := range s.PerMeal {
		if m != model.Breakfast && m != model.Lunch && m != model.Dinner {
			extra = append(extra, m)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// Write prints the summary and, when given, the load report.
func (s Summary) Write(w io.Writer, report *LoadReport) {
	fmt.Fprintf(w, "days:  %d\n", s.Days)
	fmt.Fprintf(w, "items: %d\n", s.Items)
	for _, m := range s.Meals() {
		fmt.Fprintf(w, "  %-12s %d\n", m, s.PerMeal[m])
	}
	if report != nil {
		fmt.Fprintf(w, "inserted: %d  skipped_duplicate: %d  failed: %d\n",
			report.Inserted, report.SkippedDuplicate, report.Failed)
	}
}
