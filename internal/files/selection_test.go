package files

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellerpulse/internal/errors"
)

func TestParseSelectionPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want SelectionPolicy
		ok   bool
	}{
		{"", SelectAll, true},
		{"all", SelectAll, true},
		{" First ", SelectFirst, true},
		{"LATEST", SelectLatest, true},
		{"newest", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSelectionPolicy(tt.in)
			if !tt.ok {
				assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectionPolicy_Select(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	files := []FileInfo{
		{Name: "a.xlsx", ModTime: base.Add(2 * time.Hour)},
		{Name: "b.xlsx", ModTime: base},
		{Name: "c.xlsx", ModTime: base.Add(time.Hour)},
	}

	assert.Equal(t, []string{"a.xlsx", "b.xlsx", "c.xlsx"}, Names(SelectAll.Select(files)))
	assert.Equal(t, []string{"a.xlsx"}, Names(SelectFirst.Select(files)))
	assert.Equal(t, []string{"a.xlsx"}, Names(SelectLatest.Select(files)))
	assert.Nil(t, SelectLatest.Select(nil))
}

func TestGetLatestFile_TieGoesToLaterName(t *testing.T) {
	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	latest, ok := GetLatestFile([]FileInfo{{Name: "a.xlsx", ModTime: at}, {Name: "b.xlsx", ModTime: at}})
	require.True(t, ok)
	assert.Equal(t, "b.xlsx", latest.Name)

	_, ok = GetLatestFile(nil)
	assert.False(t, ok)
}

func TestIsWorkbook(t *testing.T) {
	assert.True(t, IsWorkbook("report.xlsx"))
	assert.True(t, IsWorkbook("REPORT.XLSX"))
	assert.False(t, IsWorkbook("~$report.xlsx"))
	assert.False(t, IsWorkbook("report.xls"))
	assert.False(t, IsWorkbook("report.csv"))
	assert.False(t, IsWorkbook(".upload-1.tmp"))
}
