package view

import "prison-records/internal/models"

// State is the list screen: navigational page, filters, sort and page
// index. Any change that alters the row set moves back to the first page.
// State is not safe for concurrent use.
type State struct {
	Page      models.Page        `json:"page"`
	Filters   models.Filters     `json:"filters"`
	Sort      *models.SortConfig `json:"sort"`
	PageIndex int                `json:"pageIndex"`
	PageSize  int                `json:"pageSize"`
}

// NewState starts on Home with cleared filters.
func NewState(pageSize int) *State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &State{
		Page:     models.PageHome,
		Filters:  models.DefaultFilters(),
		PageSize: pageSize,
	}
}

// SetPage navigates; filters and sort are cleared as well.
func (s *State) SetPage(p models.Page) {
	s.Page = p
	s.Filters = models.DefaultFilters()
	s.Sort = nil
	s.PageIndex = 0
}

func (s *State) SetFilters(f models.Filters) {
	if f.Category == "" {
		f.Category = models.FilterAll
	}
	if f.Status == "" {
		f.Status = models.FilterAll
	}
	s.Filters = f
	s.PageIndex = 0
}

func (s *State) ToggleSort(key string) {
	s.Sort = ToggleSort(s.Sort, key)
	s.PageIndex = 0
}

// GoTo moves to page index i. Negative values clamp to 0.
func (s *State) GoTo(i int) {
	if i < 0 {
		i = 0
	}
	s.PageIndex = i
}

// Result is one rendering of the list.
type Result struct {
	Rows         []models.Prisoner `json:"rows"`
	Matched      []models.Prisoner `json:"-"`
	TotalRecords int               `json:"totalRecords"`
	TotalPages   int               `json:"totalPages"`
	PageIndex    int               `json:"pageIndex"`
	Title        string            `json:"title"`
	Options      Options           `json:"options"`
}

// Apply runs records through filter, sort and pagination. Matched holds the
// full sorted result, which is what export and the summary report work on.
func (s *State) Apply(records []models.Prisoner) Result {
	matched := Sort(Filter(records, s.Page, s.Filters), s.Sort)
	rows, total := Paginate(matched, s.PageIndex, s.PageSize)
	return Result{
		Rows:         rows,
		Matched:      matched,
		TotalRecords: len(matched),
		TotalPages:   total,
		PageIndex:    s.PageIndex,
		Title:        Title(s.Page),
		Options:      FilterOptions(records),
	}
}

// Title is the heading shown for a page.
func Title(p models.Page) string {
	switch p {
	case models.PageGeneral:
		return "Confined General Convicts"
	case models.PageCivil:
		return "Confined Civil Prisoners"
	case models.PageForeigner:
		return "Confined Foreigner Prisoners"
	case models.PageDetainees:
		return "Detainees"
	case models.PageFineRelated:
		return "Fine / Daman / Diyat / Arsh Cases"
	case models.PageReleased:
		return "Released / Expired Sentence"
	}
	return "Malir Prison & C.F Karachi"
}
