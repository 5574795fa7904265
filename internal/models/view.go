package models

// Page is a navigational page; each one scopes the record list.
type Page string

const (
	PageHome        Page = "Home"
	PageGeneral     Page = "General"
	PageCivil       Page = "Civil"
	PageForeigner   Page = "Foreigner"
	PageDetainees   Page = "Detainees"
	PageReleased    Page = "Released"
	PageFineRelated Page = "FineRelated"
)

var Pages = []Page{PageHome, PageGeneral, PageCivil, PageForeigner, PageDetainees, PageReleased, PageFineRelated}

// ParsePage falls back to Home for unknown names.
func ParsePage(s string) Page {
	for _, p := range Pages {
		if string(p) == s {
			return p
		}
	}
	return PageHome
}

// FilterAll is the "no constraint" value of the category and status filters.
const FilterAll = "All"

// Filters 用户筛选条件，空字符串或 All 表示不限
type Filters struct {
	Nationality  string `json:"nationality" form:"nationality"`
	Category     string `json:"category" form:"category"`
	CrimeType    string `json:"crimeType" form:"crimeType"`
	Status       string `json:"status" form:"status"`
	SearchTerm   string `json:"searchTerm" form:"searchTerm"`
	UnderSection string `json:"underSection" form:"underSection"`
}

// DefaultFilters is the cleared filter set.
func DefaultFilters() Filters {
	return Filters{Category: FilterAll, Status: FilterAll}
}

// SortDirection of a SortConfig.
type SortDirection string

const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

// SortConfig names the sort field; a nil *SortConfig means unsorted.
type SortConfig struct {
	Key       string        `json:"key"`
	Direction SortDirection `json:"direction"`
}

// ChatRole of a ChatMessage.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
	RoleError ChatRole = "error"
)

// ChatMessage is one turn of the assistant conversation. Error turns keep
// the user message that failed so it can be resubmitted.
type ChatMessage struct {
	Role                ChatRole `json:"role"`
	Text                string   `json:"text"`
	OriginalUserMessage string   `json:"originalUserMessage,omitempty"`
}
