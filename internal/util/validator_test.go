package util

import (
	"strings"
	"testing"

	"prison-records/internal/models"
)

func validInput() models.PrisonerInput {
	in := models.NewInput()
	in.ConvictNo = "C-100"
	in.Name = "Ali Raza"
	in.AdmissionDate = "2024-01-15"
	return in
}

// TestValidateRecord_Valid 测试完整表单
func TestValidateRecord_Valid(t *testing.T) {
	if err := ValidateRecord(validInput()); err != nil {
		t.Errorf("ValidateRecord() error = %v, want nil", err)
	}

	in := validInput()
	in.Status = models.StatusExpiredSentence
	in.Category = models.CategoryForeigner
	in.RunningIn = models.FineTypeDiyat
	in.SentenceDate = "2024-02-01"
	in.Amount = 0
	if err := ValidateRecord(in); err != nil {
		t.Errorf("ValidateRecord() error = %v, want nil", err)
	}
}

// TestValidateRecord_EmptyEnumsAllowed 空枚举由 Normalize 填默认值
func TestValidateRecord_EmptyEnumsAllowed(t *testing.T) {
	in := validInput()
	in.Status, in.Category, in.RunningIn = "", "", ""
	if err := ValidateRecord(in); err != nil {
		t.Errorf("ValidateRecord() error = %v, want nil", err)
	}
}

// TestValidateRecord_Required 测试必填字段（异常）
func TestValidateRecord_Required(t *testing.T) {
	err := ValidateRecord(models.NewInput())
	if err == nil {
		t.Fatal("ValidateRecord(blank) error = nil, want error")
	}
	msg := ValidationMessage(err)
	for _, want := range []string{"convictNo is required", "name is required", "admissionDate is required"} {
		if !strings.Contains(msg, want) {
			t.Errorf("ValidationMessage() = %q, missing %q", msg, want)
		}
	}
}

// TestValidateRecord_BadValues 测试非法枚举、日期和金额（异常）
func TestValidateRecord_BadValues(t *testing.T) {
	cases := map[string]func(*models.PrisonerInput){
		"status":        func(in *models.PrisonerInput) { in.Status = "confined" },
		"category":      func(in *models.PrisonerInput) { in.Category = "VIP" },
		"runningIn":     func(in *models.PrisonerInput) { in.RunningIn = "Bond" },
		"amount":        func(in *models.PrisonerInput) { in.Amount = -1 },
		"admissionDate": func(in *models.PrisonerInput) { in.AdmissionDate = "15/01/2024" },
		"sentenceDate":  func(in *models.PrisonerInput) { in.SentenceDate = "2024-13-01" },
	}
	for field, mutate := range cases {
		in := validInput()
		mutate(&in)
		err := ValidateRecord(in)
		if err == nil {
			t.Errorf("%s: ValidateRecord() error = nil, want error", field)
			continue
		}
		if msg := ValidationMessage(err); !strings.HasPrefix(msg, field+" ") {
			t.Errorf("%s: ValidationMessage() = %q", field, msg)
		}
	}
}

// TestValidateDate_Valid 测试有效日期
func TestValidateDate_Valid(t *testing.T) {
	testCases := []string{
		"2024-01-01",
		"2024-12-31",
		"2025-06-15",
	}

	for _, date := range testCases {
		err := ValidateDate(date)
		if err != nil {
			t.Errorf("ValidateDate(%q) error = %v, want nil", date, err)
		}
	}
}

// TestValidateDate_InvalidFormat 测试无效格式（异常）
func TestValidateDate_InvalidFormat(t *testing.T) {
	testCases := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"2024-1-1",
		"not-a-date",
		"2024-13-01", // 月份错误
		"2024-01-32", // 日期错误
	}

	for _, date := range testCases {
		err := ValidateDate(date)
		if err == nil {
			t.Errorf("ValidateDate(%q) error = nil, want error", date)
		}
	}
}

// TestValidateRecord_ForeignerNationality 外籍犯人国籍不能为空（异常）
func TestValidateRecord_ForeignerNationality(t *testing.T) {
	in := validInput()
	in.Category = models.CategoryForeigner
	in.Nationality = "Afghani"
	if err := ValidateRecord(in); err != nil {
		t.Errorf("ValidateRecord(Afghani) error = %v, want nil", err)
	}

	in.Nationality = " "
	err := ValidateRecord(in)
	if err == nil {
		t.Fatal("ValidateRecord(blank nationality) error = nil, want error")
	}
	if msg := ValidationMessage(err); msg != "nationality is required for Foreigner" {
		t.Errorf("ValidationMessage() = %q", msg)
	}
}
