package importer

import (
	"errors"
	"testing"
	"time"

	"prison-records/internal/models"
	"prison-records/internal/sheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNormalizer() *Normalizer {
	return &Normalizer{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func TestFormatDate_Serial(t *testing.T) {
	assert.Equal(t, "2023-03-15", FormatDate(float64(45000), time.UTC))
	assert.Equal(t, "2023-03-15", FormatDate(45000, time.UTC))
	assert.Equal(t, "1970-01-01", FormatDate(float64(25569), time.UTC))
	// time of day does not move the date
	assert.Equal(t, "2023-03-15", FormatDate(45000.75, time.UTC))
}

func TestFormatDate_Native(t *testing.T) {
	karachi := time.FixedZone("PKT", 5*3600)
	midnight := time.Date(2023, 3, 15, 0, 0, 0, 0, karachi)
	assert.Equal(t, "2023-03-15", FormatDate(midnight, time.UTC))
	assert.Equal(t, "", FormatDate(time.Time{}, time.UTC))
}

func TestFormatDate_Strings(t *testing.T) {
	cases := map[string]string{
		"2023-03-15":           "2023-03-15",
		"2023-03-15T10:00:00":  "2023-03-15",
		"2023-03-15T23:00:00Z": "2023-03-15",
		"03/15/2023":           "2023-03-15",
		"3/5/2023":             "2023-03-05",
		"Mar 15, 2023":         "2023-03-15",
		"15 March 2023":        "2023-03-15",
		"2023/03/15":           "2023-03-15",
		"not a date":           "",
		"":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatDate(in, time.UTC), "FormatDate(%q)", in)
	}
}

func TestNormalizeRow_Defaults(t *testing.T) {
	n := testNormalizer()
	p, err := n.NormalizeRow(sheet.Row{
		"convictNo":     float64(1234),
		"name":          "Ali Raza",
		"admissionDate": float64(45000),
		"status":        "confined",
		"category":      "Civil",
		"runningIn":     "Diyat",
		"amount":        "abc",
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, "1234", p.ConvictNo)
	assert.Equal(t, "2023-03-15", p.AdmissionDate)
	assert.Equal(t, "", p.SentenceDate)
	assert.Equal(t, models.StatusConfined, p.Status, "case-sensitive enum falls back to default")
	assert.Equal(t, models.CategoryCivil, p.Category)
	assert.Equal(t, models.FineTypeDiyat, p.RunningIn)
	assert.Equal(t, float64(0), p.Amount)
	assert.Equal(t, "N/A", p.CrimeType)
	assert.Equal(t, "Pakistani", p.Nationality)
	assert.Equal(t, "2024-06-01", p.StatusUpdateDate)
	assert.Empty(t, p.ID)
	assert.Zero(t, p.SNo)
}

func TestNormalizeRow_UnknownEnumsDefault(t *testing.T) {
	p, err := testNormalizer().NormalizeRow(sheet.Row{
		"convictNo": "C-1", "name": "A", "admissionDate": "2023-01-01",
		"status": "In Jail", "category": "VIP", "runningIn": "fine", "amount": float64(-5),
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfined, p.Status)
	assert.Equal(t, models.CategoryGeneralConvict, p.Category)
	assert.Equal(t, models.FineTypeNA, p.RunningIn)
	assert.Equal(t, float64(0), p.Amount)
}

func TestNormalizeRow_ForeignerKeepsNationality(t *testing.T) {
	p, err := testNormalizer().NormalizeRow(sheet.Row{
		"convictNo": "C-1", "name": "A", "admissionDate": "2023-01-01",
		"category": "Foreigner", "nationality": "Bangladeshi", "statusUpdateDate": "2023-02-01",
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Bangladeshi", p.Nationality)
	assert.Equal(t, "2023-02-01", p.StatusUpdateDate)

	p, err = testNormalizer().NormalizeRow(sheet.Row{
		"convictNo": "C-2", "name": "B", "admissionDate": "2023-01-01", "nationality": "Indian",
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Pakistani", p.Nationality)
}

func TestNormalizeRow_HeaderVariants(t *testing.T) {
	p, err := testNormalizer().NormalizeRow(sheet.Row{
		"Convict No": "C-7", "Name": "Imran", "Admission Date": "2022-10-10", "PS": "Malir City",
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "C-7", p.ConvictNo)
	assert.Equal(t, "Imran", p.Name)
	assert.Equal(t, "2022-10-10", p.AdmissionDate)
	assert.Equal(t, "Malir City", p.PS)
}

func TestNormalizeRow_HeaderCollisionIsStable(t *testing.T) {
	row := sheet.Row{
		"convictNo": "C-8", "admissionDate": "2022-10-10",
		"Name": "Title", "NAME": "Upper", "PS": "Plain", "P.S.": "Dotted",
	}
	for i := 0; i < 20; i++ {
		p, err := testNormalizer().NormalizeRow(row, 0)
		require.NoError(t, err)
		assert.Equal(t, "Upper", p.Name)
		assert.Equal(t, "Dotted", p.PS)
	}
}

func TestNormalizeRow_MissingName(t *testing.T) {
	_, err := testNormalizer().NormalizeRow(sheet.Row{
		"convictNo": "C-1", "name": "", "admissionDate": "2023-01-01",
	}, 3)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, 5, ve.Row)
	assert.Equal(t, []string{"name"}, ve.Missing)
	assert.Contains(t, err.Error(), "Row 5")
}

func TestNormalizeRow_UnparseableAdmissionDateIsLenient(t *testing.T) {
	p, err := testNormalizer().NormalizeRow(sheet.Row{
		"convictNo": "C-1", "name": "A", "admissionDate": "sometime",
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "", p.AdmissionDate)
}

func TestNormalizeRows_AbortsOnFirstFailure(t *testing.T) {
	rows := []sheet.Row{
		{"convictNo": "C-1", "name": "A", "admissionDate": "2023-01-01"},
		{"convictNo": "C-2", "admissionDate": "2023-01-01"},
		{"name": "C", "admissionDate": "2023-01-01"},
	}
	recs, err := testNormalizer().NormalizeRows(rows)
	assert.Nil(t, recs)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, 3, ve.Row)
}
