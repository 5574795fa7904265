package models

import (
	"strconv"
	"time"
)

// Category 在押人员类别
type Category string

const (
	CategoryGeneralConvict Category = "General Convict"
	CategoryCivil          Category = "Civil"
	CategoryDetainee       Category = "Detainee"
	CategoryForeigner      Category = "Foreigner"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryGeneralConvict, CategoryCivil, CategoryDetainee, CategoryForeigner}

// Status 当前状态
type Status string

const (
	StatusConfined        Status = "Confined"
	StatusOnBail          Status = "On Bail"
	StatusReleased        Status = "Released"
	StatusExpiredSentence Status = "Expired Sentence"
	StatusDetainee        Status = "Detainee"
)

var Statuses = []Status{StatusConfined, StatusOnBail, StatusReleased, StatusExpiredSentence, StatusDetainee}

// FineType 罚金类型（runningIn）
type FineType string

const (
	FineTypeFine  FineType = "Fine"
	FineTypeDaman FineType = "Daman"
	FineTypeDiyat FineType = "Diyat"
	FineTypeArsh  FineType = "Arsh"
	FineTypeNA    FineType = "N/A"
)

var FineTypes = []FineType{FineTypeFine, FineTypeDaman, FineTypeDiyat, FineTypeArsh, FineTypeNA}

// Nationalities offered for foreign prisoners; anything else is entered as free text.
const (
	NationalityPakistani   = "Pakistani"
	NationalityIndian      = "Indian"
	NationalityBangladeshi = "Bangladeshi"
	NationalityAfghani     = "Afghani"
)

var ForeignerNationalities = []string{NationalityIndian, NationalityBangladeshi, NationalityAfghani}

// ParseCategory matches the exact wire value only.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func ParseFineType(s string) (FineType, bool) {
	for _, f := range FineTypes {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Prisoner 表示一条在押人员记录
// 字段顺序即导出 CSV 的列顺序
type Prisoner struct {
	ID               string   `gorm:"primaryKey;size:64" json:"id"`
	SNo              int      `gorm:"column:s_no;uniqueIndex;not null" json:"sNo"`
	ConvictNo        string   `gorm:"size:64;index;not null" json:"convictNo"`
	AdmissionDate    string   `gorm:"size:10;index" json:"admissionDate"`
	SentenceDate     string   `gorm:"size:10" json:"sentenceDate"`
	Name             string   `gorm:"size:128;not null" json:"name"`
	FatherName       string   `gorm:"size:128" json:"fatherName"`
	District         string   `gorm:"size:64" json:"district"`
	UnderSection     string   `gorm:"size:128" json:"underSection"`
	CrimeNo          string   `gorm:"size:64" json:"crimeNo"`
	PS               string   `gorm:"size:128" json:"ps"` // police station
	SentencingCourt  string   `gorm:"size:128" json:"sentencingCourt"`
	Sentence         string   `gorm:"size:255" json:"sentence"`
	RunningIn        FineType `gorm:"size:16" json:"runningIn"`
	Amount           float64  `json:"amount"`
	DefaultOfPayment string   `gorm:"size:255" json:"defaultOfPayment"`
	SpecialRemarks   string   `gorm:"type:text" json:"specialRemarks"`
	MedicalReport    string   `gorm:"type:text" json:"medicalReport"`
	HighCourtCaseNo  string   `gorm:"size:64" json:"highCourtCaseNo"`
	HighCourtStatus  string   `gorm:"size:255" json:"highCourtStatus"`
	CrimeType        string   `gorm:"size:64" json:"crimeType"`
	Nationality      string   `gorm:"size:64" json:"nationality"`
	Status           Status   `gorm:"size:32;index" json:"status"`
	Category         Category `gorm:"size:32;index" json:"category"`
	StatusUpdateDate string   `gorm:"size:10" json:"statusUpdateDate"`
}

// FieldNames are the JSON names of Prisoner in declaration order.
var FieldNames = []string{
	"id", "sNo", "convictNo", "admissionDate", "sentenceDate", "name", "fatherName",
	"district", "underSection", "crimeNo", "ps", "sentencingCourt", "sentence",
	"runningIn", "amount", "defaultOfPayment", "specialRemarks", "medicalReport",
	"highCourtCaseNo", "highCourtStatus", "crimeType", "nationality", "status",
	"category", "statusUpdateDate",
}

// Field returns the value stored under a JSON field name. Numeric fields
// come back as float64, everything else as string.
func (p *Prisoner) Field(name string) (any, bool) {
	switch name {
	case "id":
		return p.ID, true
	case "sNo":
		return float64(p.SNo), true
	case "convictNo":
		return p.ConvictNo, true
	case "admissionDate":
		return p.AdmissionDate, true
	case "sentenceDate":
		return p.SentenceDate, true
	case "name":
		return p.Name, true
	case "fatherName":
		return p.FatherName, true
	case "district":
		return p.District, true
	case "underSection":
		return p.UnderSection, true
	case "crimeNo":
		return p.CrimeNo, true
	case "ps":
		return p.PS, true
	case "sentencingCourt":
		return p.SentencingCourt, true
	case "sentence":
		return p.Sentence, true
	case "runningIn":
		return string(p.RunningIn), true
	case "amount":
		return p.Amount, true
	case "defaultOfPayment":
		return p.DefaultOfPayment, true
	case "specialRemarks":
		return p.SpecialRemarks, true
	case "medicalReport":
		return p.MedicalReport, true
	case "highCourtCaseNo":
		return p.HighCourtCaseNo, true
	case "highCourtStatus":
		return p.HighCourtStatus, true
	case "crimeType":
		return p.CrimeType, true
	case "nationality":
		return p.Nationality, true
	case "status":
		return string(p.Status), true
	case "category":
		return string(p.Category), true
	case "statusUpdateDate":
		return p.StatusUpdateDate, true
	}
	return nil, false
}

// Values returns every field as a string, in FieldNames order.
func (p *Prisoner) Values() []string {
	out := make([]string, 0, len(FieldNames))
	for _, name := range FieldNames {
		v, _ := p.Field(name)
		switch x := v.(type) {
		case float64:
			out = append(out, strconv.FormatFloat(x, 'f', -1, 64))
		case string:
			out = append(out, x)
		}
	}
	return out
}

// PrisonerInput is the editable part of a record: everything except id, sNo
// and statusUpdateDate, which the store owns.
type PrisonerInput struct {
	ConvictNo        string   `json:"convictNo" binding:"required,max=64"`
	AdmissionDate    string   `json:"admissionDate" binding:"required,datetime=2006-01-02"`
	SentenceDate     string   `json:"sentenceDate" binding:"omitempty,datetime=2006-01-02"`
	Name             string   `json:"name" binding:"required,max=128"`
	FatherName       string   `json:"fatherName"`
	District         string   `json:"district"`
	UnderSection     string   `json:"underSection"`
	CrimeNo          string   `json:"crimeNo"`
	PS               string   `json:"ps"`
	SentencingCourt  string   `json:"sentencingCourt"`
	Sentence         string   `json:"sentence"`
	RunningIn        FineType `json:"runningIn" binding:"omitempty,finetype"`
	Amount           float64  `json:"amount" binding:"gte=0"`
	DefaultOfPayment string   `json:"defaultOfPayment"`
	SpecialRemarks   string   `json:"specialRemarks"`
	MedicalReport    string   `json:"medicalReport"`
	HighCourtCaseNo  string   `json:"highCourtCaseNo"`
	HighCourtStatus  string   `json:"highCourtStatus"`
	CrimeType        string   `json:"crimeType"`
	Nationality      string   `json:"nationality"`
	Status           Status   `json:"status" binding:"omitempty,status"`
	Category         Category `json:"category" binding:"omitempty,category"`
}

// NewInput returns the blank form defaults.
func NewInput() PrisonerInput {
	return PrisonerInput{
		RunningIn:   FineTypeNA,
		Nationality: NationalityPakistani,
		Status:      StatusConfined,
		Category:    CategoryGeneralConvict,
	}
}

// Input extracts the editable fields of p.
func (p *Prisoner) Input() PrisonerInput {
	return PrisonerInput{
		ConvictNo:        p.ConvictNo,
		AdmissionDate:    p.AdmissionDate,
		SentenceDate:     p.SentenceDate,
		Name:             p.Name,
		FatherName:       p.FatherName,
		District:         p.District,
		UnderSection:     p.UnderSection,
		CrimeNo:          p.CrimeNo,
		PS:               p.PS,
		SentencingCourt:  p.SentencingCourt,
		Sentence:         p.Sentence,
		RunningIn:        p.RunningIn,
		Amount:           p.Amount,
		DefaultOfPayment: p.DefaultOfPayment,
		SpecialRemarks:   p.SpecialRemarks,
		MedicalReport:    p.MedicalReport,
		HighCourtCaseNo:  p.HighCourtCaseNo,
		HighCourtStatus:  p.HighCourtStatus,
		CrimeType:        p.CrimeType,
		Nationality:      p.Nationality,
		Status:           p.Status,
		Category:         p.Category,
	}
}

// Apply copies the editable fields of in onto p. id and sNo are untouched;
// statusUpdateDate is set to today.
func (p *Prisoner) Apply(in PrisonerInput, today string) {
	p.ConvictNo = in.ConvictNo
	p.AdmissionDate = in.AdmissionDate
	p.SentenceDate = in.SentenceDate
	p.Name = in.Name
	p.FatherName = in.FatherName
	p.District = in.District
	p.UnderSection = in.UnderSection
	p.CrimeNo = in.CrimeNo
	p.PS = in.PS
	p.SentencingCourt = in.SentencingCourt
	p.Sentence = in.Sentence
	p.RunningIn = in.RunningIn
	p.Amount = in.Amount
	p.DefaultOfPayment = in.DefaultOfPayment
	p.SpecialRemarks = in.SpecialRemarks
	p.MedicalReport = in.MedicalReport
	p.HighCourtCaseNo = in.HighCourtCaseNo
	p.HighCourtStatus = in.HighCourtStatus
	p.CrimeType = in.CrimeType
	p.Nationality = in.Nationality
	p.Status = in.Status
	p.Category = in.Category
	p.StatusUpdateDate = today
}

// ApplyCategory is the form rule run whenever the category changes.
// Leaving Foreigner (or never being one) forces Pakistani; entering Foreigner
// from Pakistani picks the first listed foreign nationality.
func ApplyCategory(in PrisonerInput, c Category) PrisonerInput {
	in.Category = c
	if c != CategoryForeigner {
		in.Nationality = NationalityPakistani
		return in
	}
	if in.Nationality == NationalityPakistani || in.Nationality == "" {
		in.Nationality = NationalityIndian
	}
	return in
}

// Normalize enforces the nationality invariant and fills enum defaults.
func (in PrisonerInput) Normalize() PrisonerInput {
	if in.RunningIn == "" {
		in.RunningIn = FineTypeNA
	}
	if in.Status == "" {
		in.Status = StatusConfined
	}
	if in.Category == "" {
		in.Category = CategoryGeneralConvict
	}
	if in.Category != CategoryForeigner {
		in.Nationality = NationalityPakistani
	}
	return in
}

// Today formats the current date in loc as YYYY-MM-DD.
func Today(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc).Format("2006-01-02")
}
