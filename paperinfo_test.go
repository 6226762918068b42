package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaperInfo(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    PaperInfo
		wantErr bool
	}{
		{
			name: "question paper",
			path: "papers/0620/0620_s21_qp_12.pdf",
			want: PaperInfo{
				SubjectCode: "0620", Year: "2021", Season: "S", Kind: "qp",
				Paper: "1", Variant: "2", Name: "0620_S21_12", Base: "0620_s21_qp_12",
			},
		},
		{
			name: "mark scheme shares the paper name",
			path: "0620_s21_ms_12.pdf",
			want: PaperInfo{
				SubjectCode: "0620", Year: "2021", Season: "S", Kind: "ms",
				Paper: "1", Variant: "2", Name: "0620_S21_12", Base: "0620_s21_ms_12",
			},
		},
		{
			name: "free-form name with a subject code",
			path: "downloads/Chemistry 0620 June qp.pdf",
			want: PaperInfo{
				SubjectCode: "0620", Kind: "qp",
				Name: "Chemistry 0620 June qp", Base: "Chemistry 0620 June qp",
			},
		},
		{
			name:    "no details at all",
			path:    "notes.pdf",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parsePaperInfo(tc.path)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestKindFromPath(t *testing.T) {
	assert.Equal(t, "ms", kindFromPath("x/0610 ms.pdf"))
	assert.Equal(t, "qp", kindFromPath("x/0610 qp.pdf"))
	assert.Equal(t, "", kindFromPath("x/0610.pdf"))
}

func TestPaperLoggerFields(t *testing.T) {
	entry := paperLogger(PaperInfo{SubjectCode: "0610", Kind: "qp", Name: "0610_W19_42"})
	assert.Equal(t, "0610_W19_42", entry.Data["paper"])
	assert.Equal(t, "0610", entry.Data["subject"])
	assert.Equal(t, "qp", entry.Data["variant"])
}
